package dispatch

import (
	"time"

	"go.uber.org/zap"

	"github.com/dconrad/dispatch/submit"
)

// config holds Orchestrator configuration: a defaulted struct plus
// functional options layered on top (see options.go).
type config struct {
	// NQueue bounds the broker's result queue; <= 0 means unbounded. Map
	// requires this disabled, since it drains the whole run at once rather
	// than continuously.
	NQueue int

	// Adapter arranges for worker processes to be started. Defaults to
	// submit.Local{}, which runs them in this process, useful for
	// development and the test suite without a real Condor/SGE cluster.
	Adapter submit.Adapter

	// WorkDir is the directory a worker changes into before resolving and
	// running the work-kind.
	WorkDir string

	// SelfExe overrides the path to the binary broker.Spawn invokes as the
	// broker child. Empty means os.Executable() (the running binary
	// re-invoked with a "broker" subcommand, see cmd/dispatchctl). The
	// submission adapters do not read it; Condor and SGE take their worker
	// binary from submit.Config.WorkerExe.
	SelfExe string

	// PollInterval is the cadence of the orchestrator's status poll and
	// imap drain retry, ~2s by default.
	PollInterval time.Duration

	// ConnectTimeout bounds how long Map/ImapUnordered wait for the broker
	// child process to publish its URI.
	ConnectTimeout time.Duration

	// StopTimeout bounds how long a cancelled run waits for in-flight
	// Sending/Storing transitions to drain before the broker is killed
	// unconditionally.
	StopTimeout time.Duration

	// Logger receives structured progress and lifecycle events. Defaults
	// to zap.NewNop().
	Logger *zap.Logger

	// Notify, if non-nil, sends an end-of-run summary email.
	Notify *NotifyConfig
}

func defaultConfig() config {
	return config{
		NQueue:         0,
		Adapter:        submit.Local{},
		PollInterval:   2 * time.Second,
		ConnectTimeout: 30 * time.Second,
		StopTimeout:    30 * time.Second,
		Logger:         zap.NewNop(),
	}
}
