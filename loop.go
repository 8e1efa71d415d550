package dispatch

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dconrad/dispatch/registry"
)

// onStoredFunc is invoked once per Stored record drained during a run. Map
// passes a no-op (it only cares about Finished("map")'s ordered vector at
// the end); ImapUnordered passes a function that forwards onto its output
// channel.
type onStoredFunc func(ctx context.Context, o registry.Outcome) error

// runLoop drives the orchestrator's poll loop: two suspension points (the
// status/drain poll, and a cancellation watcher) supervised together by an
// errgroup so a panic or early return in either surfaces as one error.
// mode is "map" or "imap", matching registry.Finished.
func runLoop(ctx context.Context, s *session, mode string, onStored onStoredFunc) error {
	client := s.handle.Client()
	logger := s.logger()

	doneCh := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)

	// Cancellation-signal goroutine: waits for the caller's context to be
	// done and runs the stop protocol, or exits quietly once the poll
	// goroutine finishes normally.
	g.Go(func() error {
		select {
		case <-doneCh:
			return nil
		case <-gctx.Done():
			s.cancel()
			return ctx.Err()
		}
	})

	// Poll goroutine: the orchestrator's single cooperative loop.
	g.Go(func() error {
		defer close(doneCh)
		s.state = statePolling
		limiter := rate.NewLimiter(rate.Every(s.cfg.PollInterval), 1)

		for {
			if mode == "imap" {
				o, ready, err := client.DrainOne(s.cfg.PollInterval)
				if err != nil {
					return err
				}
				if ready {
					s.state = stateDraining
					if err := onStored(gctx, o); err != nil {
						return err
					}
					s.state = statePolling
					continue
				}
			} else {
				if err := limiter.Wait(gctx); err != nil {
					// Wait fails early when the next tick would land past
					// gctx's deadline; sit out the deadline so the run ends
					// as cancelled rather than with the limiter's error.
					<-gctx.Done()
					return gctx.Err()
				}
			}

			summary, done, err := client.Status()
			if err != nil {
				return err
			}
			logger.Info("progress", zap.String("summary", summary), zap.Int("done", done), zap.Int("total", s.total))

			finished, err := client.Finished(mode)
			if err != nil {
				return err
			}
			if finished {
				return nil
			}

			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
		}
	})

	return g.Wait()
}
