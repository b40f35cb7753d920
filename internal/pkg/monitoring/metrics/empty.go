package metrics

////////////////////////////////////////////////////////////////////////////////

type emptyCounter struct{}

func (emptyCounter) Inc()            {}
func (emptyCounter) Add(delta int64) {}

type emptyIntGauge struct{}

func (emptyIntGauge) Set(value int64) {}
func (emptyIntGauge) Add(value int64) {}

////////////////////////////////////////////////////////////////////////////////

type emptyRegistry struct{}

func (emptyRegistry) Counter(name string) Counter {
	return emptyCounter{}
}

func (emptyRegistry) IntGauge(name string) IntGauge {
	return emptyIntGauge{}
}

func NewEmptyRegistry() Registry {
	return emptyRegistry{}
}
