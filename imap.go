package dispatch

import (
	"context"

	"go.uber.org/zap"

	"github.com/dconrad/dispatch/registry"
)

// ImapUnordered applies the work-kind named kind to every argument tuple
// in argSets and streams each result as soon as it is available, in
// whatever order jobs complete, like Python's imap_unordered(f,
// *iterables). Unlike Map it supports WithNQueue for cooperative
// backpressure on the result queue.
//
// The returned channel is closed once every job has reached Done or the
// run is cancelled. Forwarding errors (not job failures, which arrive as
// Outcome.Err) are logged, not surfaced through the channel, mirroring
// Map's treatment of setup failures versus per-job outcomes.
//
// Empty input yields an already-closed channel with no broker started.
func ImapUnordered[R any](ctx context.Context, kind string, argSets []registry.Args, opts ...Option) (<-chan Outcome[R], error) {
	cfg := buildConfig(opts)
	out := make(chan Outcome[R])
	if len(argSets) == 0 {
		close(out)
		return out, nil
	}

	s, err := startSession(ctx, kind, argSets, cfg)
	if err != nil {
		return nil, err
	}

	go func() {
		defer close(out)
		defer s.finish()

		onStored := func(c context.Context, o registry.Outcome) error {
			select {
			case out <- toOutcome[R](o):
				return nil
			case <-c.Done():
				return c.Err()
			}
		}

		if err := runLoop(ctx, s, "imap", onStored); err != nil && ctx.Err() == nil {
			s.logger().Warn("imap run ended with error", zap.Error(err))
		}
	}()

	return out, nil
}
