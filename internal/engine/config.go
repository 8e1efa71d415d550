package engine

// config holds Runner configuration: a defaulted struct plus functional
// options layered on top.
type config struct {
	// MaxWorkers caps concurrently executing units. Zero means a dynamic pool.
	MaxWorkers uint

	// StopOnError cancels remaining units after the first error.
	StopOnError bool
}

func defaultConfig() config {
	return config{MaxWorkers: 0, StopOnError: false}
}

// Option configures a Runner.
type Option func(*config)

// WithMaxWorkers selects a fixed-size executor pool.
func WithMaxWorkers(n uint) Option {
	return func(c *config) { c.MaxWorkers = n }
}

// WithStopOnError cancels the run on the first unit error.
func WithStopOnError() Option {
	return func(c *config) { c.StopOnError = true }
}
