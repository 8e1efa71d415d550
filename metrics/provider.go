// Package metrics instruments the job state machine: the broker wires a
// Provider into the Registry's owning goroutine so every status transition,
// error outcome, per-job elapsed time, and queue-depth change is recorded
// without the Registry taking a lock of its own.
//
// Three implementations ship: NewNoopProvider (the default), NewBasicProvider
// (in-memory aggregates, for tests and lightweight runs), and NewOtelProvider
// (OpenTelemetry, for operators who already run a collector).
package metrics

// Provider constructs named instruments. Implementations must be safe for
// concurrent use.
type Provider interface {
	Counter(name string, opts ...InstrumentOption) Counter
	UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter
	Histogram(name string, opts ...InstrumentOption) Histogram
}

// Counter records monotonic counts.
type Counter interface {
	Add(n int64)
}

// UpDownCounter records values that move both ways, e.g. current queue depth.
type UpDownCounter interface {
	Add(n int64)
}

// Histogram records a distribution of float64 measurements, e.g. per-job
// elapsed seconds.
type Histogram interface {
	Record(v float64)
}

// InstrumentConfig carries advisory instrument metadata. Implementations may
// ignore it.
type InstrumentConfig struct {
	Description string
	Unit        string
}

// InstrumentOption mutates InstrumentConfig.
type InstrumentOption func(*InstrumentConfig)

// WithDescription sets an advisory description for the instrument.
func WithDescription(desc string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Description = desc }
}

// WithUnit sets an advisory unit for the instrument, e.g. "s".
func WithUnit(unit string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Unit = unit }
}

func applyOptions(opts []InstrumentOption) InstrumentConfig {
	var cfg InstrumentConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}
