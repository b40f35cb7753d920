package metrics

////////////////////////////////////////////////////////////////////////////////

// Tracks monotonically increasing value.
type Counter interface {
	// Increments counter by 1.
	Inc()

	// Adds delta to the counter. Delta must be >=0.
	Add(delta int64)
}

// Tracks single int64 value.
type IntGauge interface {
	Set(value int64)
	Add(value int64)
}

////////////////////////////////////////////////////////////////////////////////

type Registry interface {
	Counter(name string) Counter
	IntGauge(name string) IntGauge
}
