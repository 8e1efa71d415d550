package engine

import "context"

// executor runs units pulled from the pool: a thin, reusable object whose
// only job is to run one unit at a time and never let a panic escape it.
type executor struct{}

func (e *executor) run(ctx context.Context, u unit) error {
	return runGuarded(ctx, u)
}
