package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

////////////////////////////////////////////////////////////////////////////////

type prometheusCounter struct {
	counter prometheus.Counter
}

func (c *prometheusCounter) Inc() {
	c.counter.Inc()
}

func (c *prometheusCounter) Add(delta int64) {
	c.counter.Add(float64(delta))
}

type prometheusIntGauge struct {
	gauge prometheus.Gauge
}

func (g *prometheusIntGauge) Set(value int64) {
	g.gauge.Set(float64(value))
}

func (g *prometheusIntGauge) Add(value int64) {
	g.gauge.Add(float64(value))
}

////////////////////////////////////////////////////////////////////////////////

type prometheusRegistry struct {
	registerer prometheus.Registerer

	mutex    sync.Mutex
	counters map[string]*prometheusCounter
	gauges   map[string]*prometheusIntGauge
}

func NewPrometheusRegistry(registerer prometheus.Registerer) Registry {
	return &prometheusRegistry{
		registerer: registerer,
		counters:   make(map[string]*prometheusCounter),
		gauges:     make(map[string]*prometheusIntGauge),
	}
}

func (r *prometheusRegistry) Counter(name string) Counter {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	counter, ok := r.counters[name]
	if !ok {
		counter = &prometheusCounter{
			counter: prometheus.NewCounter(prometheus.CounterOpts{Name: name}),
		}
		r.registerer.MustRegister(counter.counter)
		r.counters[name] = counter
	}

	return counter
}

func (r *prometheusRegistry) IntGauge(name string) IntGauge {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	gauge, ok := r.gauges[name]
	if !ok {
		gauge = &prometheusIntGauge{
			gauge: prometheus.NewGauge(prometheus.GaugeOpts{Name: name}),
		}
		r.registerer.MustRegister(gauge.gauge)
		r.gauges[name] = gauge
	}

	return gauge
}
