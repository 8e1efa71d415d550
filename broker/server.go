package broker

import (
	"fmt"
	"net"
	"net/rpc"
	"os"

	"go.uber.org/zap"

	"github.com/dconrad/dispatch/metrics"
	"github.com/dconrad/dispatch/registry"
)

// uriFD is the file descriptor the parent process hands the broker child
// for publishing its listen address: a one-shot, one-directional handoff
// from child to parent.
const uriFD = 3

// routableAddr returns a non-loopback IPv4 address for this host by dialing
// a UDP socket at a public address and reading back the local endpoint.
// Nothing is actually sent; the kernel just has to pick a route, which is
// enough to learn which interface would be used.
func routableAddr() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", fmt.Errorf("broker: determining routable address: %w", err)
	}
	defer conn.Close()
	host, _, err := net.SplitHostPort(conn.LocalAddr().String())
	if err != nil {
		return "", err
	}
	if host == "127.0.0.1" || host == "::1" {
		return "", fmt.Errorf("broker: resolved loopback address, refusing to serve")
	}
	return host, nil
}

// Serve starts the broker: it builds a Registry for ref/nqueue, listens on a
// routable TCP address, publishes "host:port" to fd 3, and serves RPC
// requests until the process is killed. Serve does not return under normal
// operation; the orchestrator
// is expected to terminate the process once the run is complete. provider is
// wired into the Registry's owning goroutine, which already serializes every
// mutation, so recording a metric never needs its own lock; pass nil for the
// noop provider.
func Serve(ref registry.FunctionRef, nqueue int, provider metrics.Provider, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	host, err := routableAddr()
	if err != nil {
		return err
	}

	reg := registry.New(ref, nqueue, metrics.NewJobMetrics(provider))
	svc := NewService(reg)

	server := rpc.NewServer()
	if err := server.Register(svc); err != nil {
		return fmt.Errorf("broker: registering service: %w", err)
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return fmt.Errorf("broker: listening: %w", err)
	}
	defer ln.Close()

	uri := ln.Addr().String()
	logger.Info("broker listening", zap.String("uri", uri), zap.String("work_kind", ref.Kind))

	if err := publishURI(uri); err != nil {
		return err
	}

	server.Accept(ln)
	return nil
}

// publishURI writes uri, newline-terminated, to fd 3 and closes it. The
// parent reads exactly one line from the other end of the pipe it created
// before spawning this process (see Spawn).
func publishURI(uri string) error {
	f := os.NewFile(uintptr(uriFD), "broker-uri")
	if f == nil {
		return fmt.Errorf("broker: fd %d not available for URI handoff", uriFD)
	}
	defer f.Close()
	_, err := fmt.Fprintln(f, uri)
	return err
}
