package broker

import (
	"net"
	"net/rpc"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dconrad/dispatch/registry"
)

// startTestServer spins up a real net/rpc server over a loopback listener,
// wrapping a fresh Registry, and returns a connected Client.
func startTestServer(t *testing.T, ref registry.FunctionRef, nqueue int) (*Client, func()) {
	t.Helper()

	reg := registry.New(ref, nqueue, nil)
	svc := NewService(reg)
	server := rpc.NewServer()
	require.NoError(t, server.Register(svc))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go server.Accept(ln)

	client, err := Dial(ln.Addr().String())
	require.NoError(t, err)

	return client, func() {
		client.Close()
		ln.Close()
		reg.Close()
	}
}

func TestService_RegisterFetchSubmitDrain(t *testing.T) {
	t.Parallel()
	client, cleanup := startTestServer(t, registry.FunctionRef{Kind: "square", WorkDir: "/tmp"}, 0)
	defer cleanup()

	ref, err := client.FunctionRef()
	require.NoError(t, err)
	require.Equal(t, "square", ref.Kind)

	id, err := client.Register(registry.Args{4})
	require.NoError(t, err)
	require.Equal(t, 0, id)

	total, err := client.Total()
	require.NoError(t, err)
	require.Equal(t, 1, total)

	args, err := client.Fetch(id)
	require.NoError(t, err)
	require.Equal(t, registry.Args{4}, args)

	require.NoError(t, client.SubmitResult(registry.Outcome{ID: id, OK: true, Value: 16}))

	o, ready, err := client.DrainOne(time.Second)
	require.NoError(t, err)
	require.True(t, ready)
	require.Equal(t, 16, o.Value)
}

func TestService_DrainOneTimesOutWhenEmpty(t *testing.T) {
	t.Parallel()
	client, cleanup := startTestServer(t, registry.FunctionRef{Kind: "square"}, 0)
	defer cleanup()

	_, ready, err := client.DrainOne(50 * time.Millisecond)
	require.NoError(t, err)
	require.False(t, ready)
}

func TestService_FetchUnknownJobReturnsError(t *testing.T) {
	t.Parallel()
	client, cleanup := startTestServer(t, registry.FunctionRef{Kind: "square"}, 0)
	defer cleanup()

	_, err := client.Fetch(99)
	require.Error(t, err)
}

func TestService_StopSuppressesLateResults(t *testing.T) {
	t.Parallel()
	client, cleanup := startTestServer(t, registry.FunctionRef{Kind: "square"}, 0)
	defer cleanup()

	id, err := client.Register(registry.Args{1})
	require.NoError(t, err)
	_, err = client.Fetch(id)
	require.NoError(t, err)

	require.NoError(t, client.Stop())
	require.NoError(t, client.SubmitResult(registry.Outcome{ID: id, OK: true, Value: 1}))

	n, err := client.StoredCount()
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
