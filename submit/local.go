package submit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dconrad/dispatch/internal/engine"
	"github.com/dconrad/dispatch/workerrt"
)

// Local runs every job's worker invocation concurrently in this process
// instead of forking real scheduler tasks, backed by internal/engine, for
// development and tests where no real Condor or SGE cluster is available.
type Local struct {
	// Concurrency caps how many job ids run at once. Zero means unbounded
	// (a goroutine per job, same as engine's dynamic pool).
	Concurrency uint
}

// Submit starts an in-process runner over the job ids in the background and
// returns without waiting for it, the way condor_submit and qsub return once
// tasks are queued rather than when they finish. Returning early matters beyond
// fidelity: the orchestrator only starts draining results after Submit
// returns, so a Submit that waited for workers would deadlock any run
// whose workers throttle against an undrained result queue (nqueue).
//
// A job raising is not a submission failure: workerrt.Run has already
// recorded the job's outcome as Err on the broker. Only a setup failure
// (broker unreachable, work-kind unresolved) means a task never ran at
// all; those are reported to stderr, where a real scheduler would surface
// them in its task logs.
func (l Local) Submit(ctx context.Context, brokerURI string, total int) error {
	ids := make([]int, total)
	for i := range ids {
		ids[i] = i
	}

	var opts []engine.Option
	if l.Concurrency > 0 {
		opts = append(opts, engine.WithMaxWorkers(l.Concurrency))
	}

	go func() {
		errs := engine.RunEach(ctx, ids, func(c context.Context, id int) error {
			_, err := workerrt.Run(c, brokerURI, "C", []string{strconv.Itoa(id)}, os.Stdout, os.Stderr)
			return err
		}, opts...)
		for _, e := range errs {
			if errors.Is(e, workerrt.ErrSetup) {
				fmt.Fprintf(os.Stderr, "submit: local task failed to start: %v\n", e)
			}
		}
	}()
	return nil
}
