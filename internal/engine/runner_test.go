package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunEach_AllSucceed(t *testing.T) {
	t.Parallel()

	var count int32
	items := []int{1, 2, 3, 4, 5}
	errs := RunEach(context.Background(), items, func(_ context.Context, _ int) error {
		atomic.AddInt32(&count, 1)
		return nil
	})

	require.Empty(t, errs)
	require.Equal(t, int32(len(items)), atomic.LoadInt32(&count))
}

func TestRunEach_CollectsErrors(t *testing.T) {
	t.Parallel()

	items := []int{0, 1, 2, 3}
	errs := RunEach(context.Background(), items, func(_ context.Context, i int) error {
		if i == 2 {
			return errors.New("boom")
		}
		return nil
	})

	require.Len(t, errs, 1)
	require.EqualError(t, errs[0], "boom")
}

func TestRunEach_Empty(t *testing.T) {
	t.Parallel()

	errs := RunEach(context.Background(), []int{}, func(_ context.Context, _ int) error {
		t.Fatal("fn must not be called for empty input")
		return nil
	})
	require.Nil(t, errs)
}

func TestRunEach_StopOnError(t *testing.T) {
	t.Parallel()

	var started int32
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	errs := RunEach(context.Background(), items, func(ctx context.Context, i int) error {
		atomic.AddInt32(&started, 1)
		if i == 0 {
			return errors.New("first fails")
		}
		<-ctx.Done()
		return ctx.Err()
	}, WithStopOnError())

	require.NotEmpty(t, errs)
	// Cancellation stops intake so RunEach returns; how many units started
	// before it landed is scheduler-dependent, so only the upper bound (no
	// unit started twice) is checked.
	require.Less(t, int(atomic.LoadInt32(&started)), len(items)+1)
}

func TestRunner_SubmitBeforeStart(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	err := r.Submit(context.Background(), unitFunc(func(context.Context) error { return nil }))
	require.ErrorIs(t, err, ErrSubmitBeforeStart)
}

func TestRunner_FixedPool(t *testing.T) {
	t.Parallel()

	r := NewRunner(WithMaxWorkers(2))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Start(ctx)

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Submit(ctx, unitFunc(func(context.Context) error { return nil })))
	}
	r.Close()

	for e := range r.Errors() {
		require.NoError(t, e)
	}
}
