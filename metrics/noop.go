package metrics

// NoopProvider discards every measurement. It is the default when no
// provider is configured.
type NoopProvider struct{}

// NewNoopProvider constructs a Provider that records nothing.
func NewNoopProvider() NoopProvider { return NoopProvider{} }

func (NoopProvider) Counter(string, ...InstrumentOption) Counter             { return noop{} }
func (NoopProvider) UpDownCounter(string, ...InstrumentOption) UpDownCounter { return noop{} }
func (NoopProvider) Histogram(string, ...InstrumentOption) Histogram         { return noop{} }

// noop satisfies Counter, UpDownCounter, and Histogram at once.
type noop struct{}

func (noop) Add(int64)      {}
func (noop) Record(float64) {}
