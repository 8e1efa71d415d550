package engine

import (
	"context"
	"sync"
)

// Runner executes units concurrently, honoring an optional fixed pool size
// and stop-on-error cancellation. A single dispatch goroutine owns the
// intake channel, executors come from a pool, and shutdown runs through a
// fixed sequence (lifecycle).
type Runner struct {
	cfg config

	mu       sync.Mutex
	started  bool
	units    chan unit
	errs     chan error
	inflight sync.WaitGroup
	cancel   context.CancelFunc
	done     <-chan struct{}
	lc       *lifecycle
}

// NewRunner constructs a Runner. It is not started automatically.
func NewRunner(opts ...Option) *Runner {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Runner{cfg: cfg}
}

// Start begins executing submitted units. Start may be called only once.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = ctx.Done()

	r.units = make(chan unit)
	r.errs = make(chan error, 64)

	var p executorPool
	if r.cfg.MaxWorkers > 0 {
		p = newFixedPool(r.cfg.MaxWorkers)
	} else {
		p = newDynamicPool()
	}

	onError := func(err error) {
		select {
		case r.errs <- err:
		default:
			go func() { r.errs <- err }()
		}
		if r.cfg.StopOnError {
			cancel()
		}
	}

	d := newDispatcher(r.units, &r.inflight, p, onError)
	go d.run(ctx)

	r.lc = newLifecycle(cancel, &r.inflight, func() { close(r.errs) })
}

// ErrSubmitBeforeStart is returned by Submit when the Runner has not started.
var ErrSubmitBeforeStart = ErrClosed

// Submit enqueues u for execution. It blocks until a dispatch goroutine
// accepts it, ctx is done, or the Runner's own context is cancelled (by
// Close or by StopOnError), in which case it returns ErrClosed.
func (r *Runner) Submit(ctx context.Context, u unit) error {
	r.mu.Lock()
	units := r.units
	done := r.done
	r.mu.Unlock()
	if units == nil {
		return ErrSubmitBeforeStart
	}
	// Count this unit as in-flight before handing it off: Close's Wait()
	// runs in the same goroutine as every Submit call, so sequencing Add
	// here (rather than after the dispatcher receives) avoids a WaitGroup
	// race against a Close that follows the last Submit.
	r.inflight.Add(1)
	select {
	case units <- u:
		return nil
	case <-ctx.Done():
		r.inflight.Done()
		return ctx.Err()
	case <-done:
		r.inflight.Done()
		return ErrClosed
	}
}

// Errors returns the channel unit failures are delivered on.
func (r *Runner) Errors() <-chan error { return r.errs }

// Close cancels intake, waits for in-flight units, and closes the errors
// channel. Close is idempotent and safe to call from multiple goroutines.
func (r *Runner) Close() {
	if r.lc != nil {
		r.lc.close()
	}
}

// RunEach runs fn once per item concurrently and returns every non-nil error.
// It owns a Runner's full lifecycle: start, submit, wait, close, drain.
func RunEach[T any](ctx context.Context, items []T, fn func(context.Context, T) error, opts ...Option) []error {
	if len(items) == 0 {
		return nil
	}

	r := NewRunner(opts...)
	r.Start(ctx)

	for i := range items {
		item := items[i]
		u := unitFunc(func(c context.Context) error { return fn(c, item) })
		if err := r.Submit(ctx, u); err != nil {
			break
		}
	}

	r.Close()

	var errs []error
	for e := range r.Errors() {
		if e != nil {
			errs = append(errs, e)
		}
	}
	return errs
}
