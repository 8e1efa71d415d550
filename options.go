package dispatch

import (
	"time"

	"go.uber.org/zap"

	"github.com/dconrad/dispatch/submit"
)

// Option configures a Map or ImapUnordered run.
type Option func(*config)

// WithNQueue bounds the broker's result queue for backpressure. Only
// meaningful for ImapUnordered; Map rejects a nonzero value since it
// drains the whole run at completion.
func WithNQueue(n int) Option {
	return func(c *config) { c.NQueue = n }
}

// WithAdapter selects the submission adapter responsible for starting
// worker processes (submit.Condor, submit.SGE, or submit.Local). Defaults
// to submit.Local{}.
func WithAdapter(a submit.Adapter) Option {
	return func(c *config) { c.Adapter = a }
}

// WithWorkDir sets the working directory a worker changes into before
// resolving the dispatched work-kind.
func WithWorkDir(dir string) Option {
	return func(c *config) { c.WorkDir = dir }
}

// WithSelfExe overrides the binary path broker.Spawn invokes as the broker
// child. Defaults to os.Executable().
func WithSelfExe(path string) Option {
	return func(c *config) { c.SelfExe = path }
}

// WithPollInterval overrides the ~2s status-poll/drain cadence.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) { c.PollInterval = d }
}

// WithConnectTimeout bounds how long Map/ImapUnordered wait for the
// broker child process to publish its URI.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *config) { c.ConnectTimeout = d }
}

// WithStopTimeout bounds how long a cancelled run waits for in-flight
// transitions to drain before the broker is killed unconditionally.
func WithStopTimeout(d time.Duration) Option {
	return func(c *config) { c.StopTimeout = d }
}

// WithLogger attaches a structured logger. Defaults to zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithNotifyEmail arranges for an end-of-run summary email to be sent
// through cfg once the run terminates, successfully or not.
func WithNotifyEmail(cfg NotifyConfig) Option {
	return func(c *config) { c.Notify = &cfg }
}

func buildConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
