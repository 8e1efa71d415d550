package dispatch

import (
	"context"
	"fmt"

	"github.com/dconrad/dispatch/registry"
)

// Map applies the work-kind named kind to every argument tuple in argSets,
// across a fleet of worker processes started by cfg's submission adapter,
// and returns the results in input order, like Python's map(f, *iterables)
// with a bounded result queue disabled. Build argSets with Zip for the
// common case of one or more parallel slices.
//
// Empty input short-circuits to an empty result with no broker started. On
// cancellation (ctx done), the registry is stopped and the broker
// terminated before ErrCancelled is returned, wrapping ctx.Err().
func Map[R any](ctx context.Context, kind string, argSets []registry.Args, opts ...Option) ([]Outcome[R], error) {
	cfg := buildConfig(opts)
	if cfg.NQueue > 0 {
		return nil, ErrNQueueWithMap
	}
	if len(argSets) == 0 {
		return nil, nil
	}

	s, err := startSession(ctx, kind, argSets, cfg)
	if err != nil {
		return nil, err
	}
	defer s.finish()

	if err := runLoop(ctx, s, "map", func(context.Context, registry.Outcome) error { return nil }); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
		return nil, err
	}

	raw, err := s.handle.Client().Results()
	if err != nil {
		return nil, fmt.Errorf("dispatch: fetching results: %w", err)
	}
	return toOutcomes[R](raw), nil
}
