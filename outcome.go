package dispatch

import (
	"fmt"
	"time"

	"github.com/dconrad/dispatch/registry"
)

// Outcome is a single job's result: exactly one of Value or Err is
// meaningful, discriminated by OK. Both terminate the job normally; Err is a
// reported
// failure (the work-kind function returned an error or panicked, or a
// protocol violation occurred), not a crash of the run.
type Outcome[R any] struct {
	ID      int
	OK      bool
	Value   R
	Err     error
	Elapsed time.Duration
}

// JobError wraps a job's reported failure text with its id, so a caller
// can correlate an Outcome back to the input it came from without relying
// on slice position alone.
type JobError struct {
	ID   int
	Text string
}

func (e *JobError) Error() string { return fmt.Sprintf("job %d: %s", e.ID, e.Text) }

func toOutcome[R any](o registry.Outcome) Outcome[R] {
	out := Outcome[R]{ID: o.ID, OK: o.OK, Elapsed: o.Elapsed}
	if o.OK {
		if v, ok := o.Value.(R); ok {
			out.Value = v
		} else {
			out.OK = false
			out.Err = fmt.Errorf("dispatch: job %d: result type mismatch: %T", o.ID, o.Value)
		}
		return out
	}
	out.Err = &JobError{ID: o.ID, Text: o.ErrText}
	return out
}

func toOutcomes[R any](raw []registry.Outcome) []Outcome[R] {
	out := make([]Outcome[R], len(raw))
	for i, o := range raw {
		out[i] = toOutcome[R](o)
	}
	return out
}
