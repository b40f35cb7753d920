package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

////////////////////////////////////////////////////////////////////////////////

func counterValue(t *testing.T, gatherer prometheus.Gatherer, name string) float64 {
	families, err := gatherer.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() == name {
			return family.GetMetric()[0].GetCounter().GetValue()
		}
	}

	require.FailNow(t, "metric not found", name)
	return 0
}

func gaugeValue(t *testing.T, gatherer prometheus.Gatherer, name string) float64 {
	families, err := gatherer.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() == name {
			return family.GetMetric()[0].GetGauge().GetValue()
		}
	}

	require.FailNow(t, "metric not found", name)
	return 0
}

////////////////////////////////////////////////////////////////////////////////

func TestEmptyRegistryDoesNothing(t *testing.T) {
	registry := NewEmptyRegistry()

	counter := registry.Counter("some_counter")
	counter.Inc()
	counter.Add(10)

	gauge := registry.IntGauge("some_gauge")
	gauge.Set(5)
	gauge.Add(-1)
}

func TestPrometheusRegistryCounter(t *testing.T) {
	promRegistry := prometheus.NewRegistry()
	registry := NewPrometheusRegistry(promRegistry)

	counter := registry.Counter("test_counter")
	counter.Inc()
	counter.Add(4)

	require.Equal(t, 5.0, counterValue(t, promRegistry, "test_counter"))

	// Same name returns the same underlying counter.
	registry.Counter("test_counter").Inc()
	require.Equal(t, 6.0, counterValue(t, promRegistry, "test_counter"))
}

func TestPrometheusRegistryIntGauge(t *testing.T) {
	promRegistry := prometheus.NewRegistry()
	registry := NewPrometheusRegistry(promRegistry)

	gauge := registry.IntGauge("test_gauge")
	gauge.Set(7)
	gauge.Add(-2)

	require.Equal(t, 5.0, gaugeValue(t, promRegistry, "test_gauge"))
}
