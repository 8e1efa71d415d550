package dispatch

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dconrad/dispatch/broker"
	"github.com/dconrad/dispatch/registry"
)

// runState is the orchestrator-side state machine:
// Idle -> Submitted -> Polling -> (Draining | Interrupted) -> Terminated.
// There is no path back to Idle; each Map/ImapUnordered call builds a new
// session. It exists for logging/observability, not control flow; the
// real state machine lives in the registry, serialized on the broker.
type runState int

const (
	stateIdle runState = iota
	stateSubmitted
	statePolling
	stateDraining
	stateInterrupted
	stateTerminated
)

func (s runState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateSubmitted:
		return "submitted"
	case statePolling:
		return "polling"
	case stateDraining:
		return "draining"
	case stateInterrupted:
		return "interrupted"
	case stateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// session owns one run's broker child process and bookkeeping from spawn
// through teardown. Map and ImapUnordered each construct one, drive it
// through the poll loop in loop.go, and tear it down via finish.
type session struct {
	cfg     config
	handle  *broker.Handle
	kind    string
	total   int
	runID   string
	state   runState
	started time.Time
}

// startSession spawns the broker, registers every job, and invokes the
// submission adapter. Registration must happen strictly before any worker
// can fetch, so it runs before Submit.
func startSession(ctx context.Context, kind string, argSets []registry.Args, cfg config) (*session, error) {
	runID := uuid.New().String()[:8]
	logger := cfg.Logger.With(zap.String("run_id", runID), zap.String("kind", kind))

	selfExe := cfg.SelfExe
	if selfExe == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("dispatch: resolving self executable: %w", err)
		}
		selfExe = exe
	}

	subArgs := []string{
		"broker",
		"--kind", kind,
		"--workdir", cfg.WorkDir,
		"--nqueue", strconv.Itoa(cfg.NQueue),
	}

	logger.Info("spawning broker")
	handle, err := broker.Spawn(ctx, selfExe, subArgs, cfg.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("dispatch: setup failure: spawning broker: %w", err)
	}

	client := handle.Client()
	for _, args := range argSets {
		if _, err := client.Register(args); err != nil {
			_ = handle.Terminate()
			return nil, fmt.Errorf("dispatch: setup failure: registering job: %w", err)
		}
	}
	logger.Info("registered jobs", zap.Int("total", len(argSets)))

	s := &session{
		cfg: cfg, handle: handle, kind: kind, total: len(argSets),
		runID: runID, state: stateSubmitted, started: time.Now(),
	}

	if err := cfg.Adapter.Submit(ctx, handle.URI(), s.total); err != nil {
		_ = handle.Terminate()
		return nil, fmt.Errorf("dispatch: setup failure: submitting: %w", err)
	}
	logger.Info("submitted to scheduler")
	return s, nil
}

// logger returns the run-scoped logger.
func (s *session) logger() *zap.Logger {
	return s.cfg.Logger.With(zap.String("run_id", s.runID), zap.String("kind", s.kind))
}

// cancel stops the registry (blocking until in-flight Sending/Storing
// transitions drain) before the
// caller terminates the broker. Results already computed but dropped
// because of the stopping flag are lost silently, per the documented
// at-most-once semantics.
func (s *session) cancel() {
	s.state = stateInterrupted
	done := make(chan error, 1)
	go func() { done <- s.handle.Client().Stop() }()
	select {
	case err := <-done:
		if err != nil {
			s.logger().Warn("stop call failed", zap.Error(err))
		}
	case <-time.After(s.cfg.StopTimeout):
		s.logger().Warn("stop call timed out, broker will be killed regardless")
	}
}

// finish terminates the broker and emits the end-of-run report. Safe to
// call exactly once, at the end of Map or the ImapUnordered forwarder.
func (s *session) finish() {
	s.state = stateTerminated
	report(s)
	if err := s.handle.Terminate(); err != nil {
		s.logger().Warn("broker termination failed", zap.Error(err))
	}
}
