package engine

import (
	"context"
	"fmt"
)

// unit is a single piece of work the Runner executes. In submit.Local, a unit
// wraps one scheduler task's worker invocation (workerrt.Run for one group of
// job ids).
type unit interface {
	run(ctx context.Context) error
}

// unitFunc adapts a plain function into a unit.
type unitFunc func(ctx context.Context) error

func (f unitFunc) run(ctx context.Context) error { return f(ctx) }

// runGuarded executes u, converting a panic into an error instead of
// crashing the owning goroutine.
func runGuarded(ctx context.Context, u unit) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine: unit panicked: %v", r)
		}
	}()
	return u.run(ctx)
}
