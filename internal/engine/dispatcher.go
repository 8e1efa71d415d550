package engine

import (
	"context"
	"sync"
)

// dispatcher reads units from a channel and executes each on an executor
// pulled from the pool. The caller (Runner.Submit) has already counted the
// unit as in-flight; dispatcher only marks it done. One goroutine owns the
// intake channel so no locking is required around dispatch itself.
type dispatcher struct {
	units    <-chan unit
	inflight *sync.WaitGroup
	execPool executorPool
	onError  func(error)
}

func newDispatcher(units <-chan unit, inflight *sync.WaitGroup, p executorPool, onError func(error)) *dispatcher {
	return &dispatcher{units: units, inflight: inflight, execPool: p, onError: onError}
}

// run executes the dispatch loop until ctx is done. It never drains or
// closes the units channel; that is the owner's responsibility.
func (d *dispatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-d.units:
			if !ok {
				return
			}
			go func(u unit) {
				defer d.inflight.Done()
				d.execute(ctx, u)
			}(u)
		}
	}
}

func (d *dispatcher) execute(ctx context.Context, u unit) {
	ex := d.execPool.get()
	err := ex.run(ctx, u)
	d.execPool.put(ex)
	if err != nil {
		d.onError(err)
	}
}
