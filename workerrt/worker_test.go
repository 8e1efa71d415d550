package workerrt

import (
	"bytes"
	"context"
	"net"
	"net/rpc"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dconrad/dispatch/broker"
	"github.com/dconrad/dispatch/registry"
	"github.com/dconrad/dispatch/workkind"
)

func TestResolveIDs_ModeC(t *testing.T) {
	t.Parallel()
	ids, err := resolveIDs("C", []string{"3", "1", "4"})
	require.NoError(t, err)
	require.Equal(t, []int{3, 1, 4}, ids)
}

func TestResolveIDs_ModeA(t *testing.T) {
	t.Parallel()
	ids, err := resolveIDs("A", []string{"1", "3", "10"})
	require.NoError(t, err)
	require.Equal(t, []int{3, 4, 5}, ids)
}

func TestResolveIDs_ModeATruncatesAtTotal(t *testing.T) {
	t.Parallel()
	ids, err := resolveIDs("A", []string{"2", "3", "7"})
	require.NoError(t, err)
	require.Equal(t, []int{6}, ids)
}

func TestCallGuarded_RecoversPanic(t *testing.T) {
	t.Parallel()
	_, err := callGuarded(func(registry.Args) (interface{}, error) { panic("boom") }, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
}

func startBrokerForTest(t *testing.T) (string, func()) {
	t.Helper()
	reg := registry.New(registry.FunctionRef{Kind: "square-test-kind"}, 0, nil)
	svc := broker.NewService(reg)
	server := rpc.NewServer()
	require.NoError(t, server.Register(svc))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go server.Accept(ln)
	return ln.Addr().String(), func() { ln.Close(); reg.Close() }
}

func TestRun_SingleJobEndToEnd(t *testing.T) {
	workkind.Register("square-test-kind", func(args registry.Args) (interface{}, error) {
		n := args[0].(int)
		return n * n, nil
	})

	uri, cleanup := startBrokerForTest(t)
	defer cleanup()

	client, err := broker.Dial(uri)
	require.NoError(t, err)
	id, err := client.Register(registry.Args{7})
	require.NoError(t, err)
	require.NoError(t, client.Close())

	var stdout, stderr bytes.Buffer
	code, err := Run(context.Background(), uri, "C", []string{strconv.Itoa(id)}, &stdout, &stderr)
	require.NoError(t, err)
	require.Equal(t, 0, code)

	client2, err := broker.Dial(uri)
	require.NoError(t, err)
	defer client2.Close()
	o, ready, err := client2.DrainOne(0)
	require.NoError(t, err)
	require.True(t, ready)
	require.Equal(t, 49, o.Value)
}
