package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dconrad/dispatch/registry"
	"github.com/dconrad/dispatch/submit"
)

func TestMap_RejectsNQueue(t *testing.T) {
	t.Parallel()
	_, err := Map[int](context.Background(), "square", Zip([]int{1}), WithNQueue(2))
	require.ErrorIs(t, err, ErrNQueueWithMap)
}

func TestMap_EmptyInputShortCircuits(t *testing.T) {
	t.Parallel()
	// No broker is spawned for an empty run, so an unresolvable SelfExe is
	// never exercised.
	results, err := Map[int](context.Background(), "square", nil, WithSelfExe("/nonexistent/binary"))
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestImapUnordered_EmptyInputYieldsClosedChannel(t *testing.T) {
	t.Parallel()
	ch, err := ImapUnordered[int](context.Background(), "square", nil, WithSelfExe("/nonexistent/binary"))
	require.NoError(t, err)

	select {
	case _, open := <-ch:
		require.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel never closed")
	}
}

func TestMap_SetupFailureSurfaces(t *testing.T) {
	t.Parallel()
	_, err := Map[int](context.Background(), "square", []registry.Args{{1}},
		WithSelfExe("/nonexistent/binary"),
		WithConnectTimeout(time.Second),
	)
	require.Error(t, err)
	require.Contains(t, err.Error(), "setup failure")
}

func TestBuildConfig_DefaultsAndOverrides(t *testing.T) {
	t.Parallel()
	cfg := buildConfig(nil)
	require.Equal(t, 0, cfg.NQueue)
	require.IsType(t, submit.Local{}, cfg.Adapter)
	require.Equal(t, 2*time.Second, cfg.PollInterval)
	require.NotNil(t, cfg.Logger)

	cfg = buildConfig([]Option{
		WithNQueue(3),
		WithWorkDir("/data/run"),
		WithPollInterval(250 * time.Millisecond),
		WithAdapter(submit.Condor{}),
	})
	require.Equal(t, 3, cfg.NQueue)
	require.Equal(t, "/data/run", cfg.WorkDir)
	require.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	require.IsType(t, submit.Condor{}, cfg.Adapter)
}
