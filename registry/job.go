// Package registry implements the Jobs Registry: the single source of truth
// for a run's job arguments, per-job status, and results. It is owned
// exclusively by the broker process and mutated through one owning
// goroutine, the same lock-free discipline used for its own task-intake
// channel; see registry.go.
package registry

import (
	"fmt"
	"time"
)

// Status is a job's position in its one-way state machine.
type Status int

const (
	// Waiting is the initial state on registration.
	Waiting Status = iota
	// Sending is entered when a worker requests the job's args.
	Sending
	// Running is entered once args have been returned to the worker.
	Running
	// Storing is entered when the broker has accepted a result but not
	// yet enqueued it.
	Storing
	// Stored is entered once the result is committed to the result queue.
	Stored
	// Done is entered once the orchestrator has dequeued the result.
	Done
)

func (s Status) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Sending:
		return "sending"
	case Running:
		return "running"
	case Storing:
		return "storing"
	case Stored:
		return "stored"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Args is the opaque argument tuple a worker splats into the work-kind
// function. Element types must be registered with encoding/gob if they are
// not one of gob's built-in kinds (see net/rpc's use of gob on the wire).
type Args []interface{}

// FunctionRef identifies the work-kind a run dispatches and the directory a
// worker must run it from. There is no module/aux-symbol payload: a worker
// resolves Kind against its own compiled-in work-kind table.
type FunctionRef struct {
	Kind    string
	WorkDir string
}

// Job is immutable once registered, aside from the status transitions the
// Registry drives.
type Job struct {
	ID          int
	Args        Args
	Status      Status
	SubmittedAt time.Time
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Elapsed reports the time between a job starting and finishing. It is the
// zero duration if the job has not finished.
func (j Job) Elapsed() time.Duration {
	if j.FinishedAt.IsZero() || j.StartedAt.IsZero() {
		return 0
	}
	return j.FinishedAt.Sub(j.StartedAt)
}

// Outcome is the tagged Ok/Err result of running a job. Both variants
// terminate the job normally; Err is a reported failure, not a crash.
type Outcome struct {
	ID      int
	OK      bool
	Value   interface{}
	ErrText string
	Elapsed time.Duration
}

// Error returns the outcome's error description, or "" for an Ok outcome.
func (o Outcome) Error() string { return o.ErrText }
