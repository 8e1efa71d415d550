// Package workerrt implements the worker side of the submission contract:
// the command line a scheduler task actually runs is
// "<dispatchctl> worker <broker-uri> <mode> <mode-args...>", mode being "C"
// (explicit job ids, used by Condor) or "A" (array index plus group size,
// used by SGE). Run resolves the broker's advertised work-kind against
// workkind's compiled-in table, then fetches and executes each assigned
// job id in turn.
package workerrt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/dconrad/dispatch/broker"
	"github.com/dconrad/dispatch/registry"
	"github.com/dconrad/dispatch/workkind"
)

// pollInterval paces the cooperative-backpressure poll against the broker's
// StoredCount, expressed as a rate limiter instead of a bare sleep.
const pollInterval = 2 * time.Second

// ErrSetup tags an error Run returned before it ever reached a job: a
// broker it could not dial, a work-kind it could not resolve, a working
// directory it could not enter, or a malformed mode-args list. These are
// distinct from a job's own failure (already recorded as an Err outcome on
// the broker before Run returns it). submit.Local uses errors.Is against
// this sentinel to tell "this task never ran" from "one of its jobs failed".
var ErrSetup = errors.New("workerrt: setup failed")

// Run executes every job id this task is assigned, against the broker at
// brokerURI. It returns the process exit code the caller should use: 1 when
// setup fails (see ErrSetup) or the backpressure wait fails, 1 when exactly
// one job id was assigned and it failed, matching the original's "raise only
// when not grouped, for better monitoring" rule, and 0 otherwise.
func Run(ctx context.Context, brokerURI, mode string, modeArgs []string, stdout, stderr io.Writer) (int, error) {
	client, err := broker.Dial(brokerURI)
	if err != nil {
		return 1, fmt.Errorf("workerrt: connecting to broker: %w: %w", err, ErrSetup)
	}
	defer client.Close()

	ref, err := client.FunctionRef()
	if err != nil {
		return 1, fmt.Errorf("workerrt: fetching function ref: %w: %w", err, ErrSetup)
	}

	fn, ok := workkind.Lookup(ref.Kind)
	if !ok {
		return 1, fmt.Errorf("workerrt: unregistered work-kind %q: %w", ref.Kind, ErrSetup)
	}

	if ref.WorkDir != "" {
		if err := os.Chdir(ref.WorkDir); err != nil {
			fmt.Fprintf(stderr, "workerrt: current directory is %s\n", mustGetwd())
			return 1, fmt.Errorf("workerrt: chdir to %s: %w: %w", ref.WorkDir, err, ErrSetup)
		}
	}

	ids, err := resolveIDs(mode, modeArgs)
	if err != nil {
		return 1, fmt.Errorf("%w: %w", err, ErrSetup)
	}

	hostname, _ := os.Hostname()
	limiter := rate.NewLimiter(rate.Every(pollInterval), 1)

	var lastErr error
	for _, id := range ids {
		fmt.Fprintf(stdout, "### Output log on %s (job %d) ###\n", hostname, id)
		fmt.Fprintf(stderr, "### Error log on %s (job %d) ###\n", hostname, id)

		if err := waitForQueueSpace(ctx, client, limiter); err != nil {
			return 1, err
		}

		lastErr = runOne(ctx, client, fn, id, stderr)
	}

	if len(ids) == 1 && lastErr != nil {
		return 1, lastErr
	}
	return 0, nil
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "?"
	}
	return wd
}

// waitForQueueSpace blocks until the broker's result queue has room, or
// nqueue is unbounded (<= 0). This is the cooperative half of backpressure:
// the broker's SubmitResult never itself blocks, so a well-behaved worker
// must check first.
func waitForQueueSpace(ctx context.Context, client *broker.Client, limiter *rate.Limiter) error {
	for {
		nqueue, err := client.NQueue()
		if err != nil {
			return fmt.Errorf("workerrt: querying nqueue: %w", err)
		}
		if nqueue <= 0 {
			return nil
		}
		stored, err := client.StoredCount()
		if err != nil {
			return fmt.Errorf("workerrt: querying stored count: %w", err)
		}
		if stored < nqueue {
			return nil
		}
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
	}
}

func runOne(ctx context.Context, client *broker.Client, fn workkind.Func, id int, stderr io.Writer) (runErr error) {
	t0 := time.Now()

	args, err := client.Fetch(id)
	if err != nil {
		_ = client.SubmitResult(registry.Outcome{ID: id, OK: false, ErrText: err.Error(), Elapsed: time.Since(t0)})
		return err
	}

	value, err := callGuarded(fn, args)
	elapsed := time.Since(t0)
	if err != nil {
		fmt.Fprintln(stderr, err)
		_ = client.SubmitResult(registry.Outcome{ID: id, OK: false, ErrText: err.Error(), Elapsed: elapsed})
		return err
	}
	return client.SubmitResult(registry.Outcome{ID: id, OK: true, Value: value, Elapsed: elapsed})
}

// callGuarded recovers a work-kind panic into an error, so one bad job
// cannot take the whole scheduler task down when it's grouped with others.
func callGuarded(fn workkind.Func, args registry.Args) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("workkind panicked: %v", r)
		}
	}()
	return fn(args)
}

// resolveIDs implements the two submission variants' job-id arithmetic.
func resolveIDs(mode string, modeArgs []string) ([]int, error) {
	switch mode {
	case "C":
		ids := make([]int, 0, len(modeArgs))
		for _, a := range modeArgs {
			n, err := strconv.Atoi(a)
			if err != nil {
				return nil, fmt.Errorf("workerrt: bad job id %q: %w", a, err)
			}
			ids = append(ids, n)
		}
		return ids, nil
	case "A":
		if len(modeArgs) != 3 {
			return nil, fmt.Errorf("workerrt: mode A requires group-id, group-size, total")
		}
		groupID, err := strconv.Atoi(modeArgs[0])
		if err != nil {
			return nil, err
		}
		groupSize, err := strconv.Atoi(modeArgs[1])
		if err != nil {
			return nil, err
		}
		total, err := strconv.Atoi(modeArgs[2])
		if err != nil {
			return nil, err
		}
		var ids []int
		for id := groupID * groupSize; id < (groupID+1)*groupSize && id < total; id++ {
			ids = append(ids, id)
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("workerrt: unknown mode %q", mode)
	}
}
