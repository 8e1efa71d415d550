package dispatch

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/rpc"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dconrad/dispatch/broker"
	"github.com/dconrad/dispatch/registry"
	"github.com/dconrad/dispatch/submit"
	"github.com/dconrad/dispatch/workkind"
)

// TestMain lets the test binary stand in for dispatchctl: broker.Spawn
// re-invokes os.Executable() with a "broker" subcommand, and when this
// binary sees those arguments it serves a broker instead of running the
// test suite. That makes the full production path (spawn, fd-3 URI
// handoff, RPC registration, submission adapter, worker runtime, drain
// loop, teardown) testable without a separately built binary.
func TestMain(m *testing.M) {
	if len(os.Args) > 1 && os.Args[1] == "broker" {
		if err := serveTestBroker(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	}
	os.Exit(m.Run())
}

// serveTestBroker mirrors broker.Serve on 127.0.0.1: the routable-address
// trick needs an external route the test environment may not have, and
// here orchestrator and workers share one host anyway.
func serveTestBroker(args []string) error {
	fs := flag.NewFlagSet("broker", flag.ContinueOnError)
	kind := fs.String("kind", "", "")
	workdir := fs.String("workdir", "", "")
	nqueue := fs.Int("nqueue", 0, "")
	_ = fs.String("metrics", "", "")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg := registry.New(registry.FunctionRef{Kind: *kind, WorkDir: *workdir}, *nqueue, nil)
	server := rpc.NewServer()
	if err := server.Register(broker.NewService(reg)); err != nil {
		return err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	uriPipe := os.NewFile(3, "broker-uri")
	if uriPipe == nil {
		return errors.New("fd 3 not available for URI handoff")
	}
	if _, err := fmt.Fprintln(uriPipe, ln.Addr().String()); err != nil {
		return err
	}
	uriPipe.Close()
	server.Accept(ln)
	return nil
}

func init() {
	workkind.Register("e2e-square", func(args registry.Args) (interface{}, error) {
		return args[0].(int) * args[0].(int), nil
	})
	workkind.Register("e2e-add", func(args registry.Args) (interface{}, error) {
		return args[0].(int) + args[1].(int), nil
	})
	workkind.Register("e2e-fail-on-three", func(args registry.Args) (interface{}, error) {
		x := args[0].(int)
		if x == 3 {
			return nil, fmt.Errorf("refusing to square %d", x)
		}
		return x * x, nil
	})
	workkind.Register("e2e-sleep", func(args registry.Args) (interface{}, error) {
		time.Sleep(3 * time.Second)
		return args[0], nil
	})
}

// fastPoll keeps the e2e runs snappy; the production default of ~2s is a
// cluster cadence, not a loopback one.
func fastPoll() Option { return WithPollInterval(50 * time.Millisecond) }

func TestMap_SquaresEndToEnd(t *testing.T) {
	results, err := Map[int](context.Background(), "e2e-square", Zip([]int{0, 1, 2, 3, 4}), fastPoll())
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, r := range results {
		require.True(t, r.OK)
		require.Equal(t, i, r.ID)
		require.Equal(t, i*i, r.Value)
	}
}

func TestMap_TwoArgEndToEnd(t *testing.T) {
	xs := []int{0, 1, 2, 3, 4}
	ys := []int{5, 6, 7, 8, 9}
	results, err := Map[int](context.Background(), "e2e-add", Zip(xs, ys), fastPoll())
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, r := range results {
		require.True(t, r.OK)
		require.Equal(t, xs[i]+ys[i], r.Value)
	}
}

func TestMap_JobFailureIsAnOutcomeNotAnError(t *testing.T) {
	results, err := Map[int](context.Background(), "e2e-fail-on-three", Zip([]int{0, 1, 2, 3, 4}), fastPoll())
	require.NoError(t, err)
	require.Len(t, results, 5)

	for i, r := range results {
		if i == 3 {
			require.False(t, r.OK)
			require.Contains(t, r.Err.Error(), "refusing to square 3")
			continue
		}
		require.True(t, r.OK)
		require.Equal(t, i*i, r.Value)
	}
}

func TestImapUnordered_BackpressureEndToEnd(t *testing.T) {
	// More jobs than queue slots, with all workers in flight at once:
	// workers must throttle against StoredCount while the drain loop below
	// frees slots, and every result must still arrive exactly once.
	xs := []int{0, 1, 2, 3}
	ch, err := ImapUnordered[int](context.Background(), "e2e-square", Zip(xs),
		WithNQueue(2),
		WithAdapter(submit.Local{Concurrency: 4}),
		fastPoll(),
	)
	require.NoError(t, err)

	seen := make(map[int]bool)
	sum := 0
	for o := range ch {
		require.True(t, o.OK)
		require.False(t, seen[o.ID])
		seen[o.ID] = true
		sum += o.Value
	}
	require.Len(t, seen, len(xs))
	require.Equal(t, 0+1+4+9, sum)
}

func TestMap_CancellationTearsDownRun(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Map[int](ctx, "e2e-sleep", Zip([]int{0, 1, 2, 3}), fastPoll())
	require.ErrorIs(t, err, ErrCancelled)
	// Teardown must not wait for the sleeping workers.
	require.Less(t, time.Since(start), 2*time.Second)
}
