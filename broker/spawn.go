package broker

import (
	"bufio"
	"context"
	"fmt"
	"net/rpc"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/dconrad/dispatch/registry"
)

// Handle owns a broker child process and an RPC connection to it.
type Handle struct {
	cmd    *exec.Cmd
	client *rpc.Client
	uri    string
}

// URI returns the broker's published listen address.
func (h *Handle) URI() string { return h.uri }

// Client returns the broker's RPC client wrapper.
func (h *Handle) Client() *Client { return &Client{rc: h.client} }

// Terminate forcibly kills the broker process and waits for it to exit.
// This is the whole reason the broker runs as a child process rather than
// in-process: a cancelled run must be able to guarantee the broker stops,
// and a goroutine offers no equivalent to SIGKILL.
func (h *Handle) Terminate() error {
	if h.client != nil {
		h.client.Close()
	}
	if h.cmd == nil || h.cmd.Process == nil {
		return nil
	}
	if err := h.cmd.Process.Kill(); err != nil {
		return err
	}
	_ = h.cmd.Wait()
	return nil
}

// Spawn execs selfExe with the given subcommand/args (expected to invoke
// this binary's hidden "broker" command, see cmd/dispatchctl), hands it a
// pipe for the URI handoff on fd 3, and waits for the address to arrive.
func Spawn(ctx context.Context, selfExe string, subArgs []string, connectTimeout time.Duration) (*Handle, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("broker: creating handoff pipe: %w", err)
	}

	cmd := exec.CommandContext(ctx, selfExe, subArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{pw}
	// Detach from ctx cancellation killing it via signal; we terminate
	// explicitly via Handle.Terminate so cancellation semantics stay ours.
	cmd.Cancel = func() error { return nil }

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return nil, fmt.Errorf("broker: starting child: %w", err)
	}
	pw.Close() // parent's copy of the write end; child still holds its own

	uriCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		defer pr.Close()
		scanner := bufio.NewScanner(pr)
		if scanner.Scan() {
			uriCh <- strings.TrimSpace(scanner.Text())
			return
		}
		errCh <- fmt.Errorf("broker: child exited before publishing a URI")
	}()

	var uri string
	select {
	case uri = <-uriCh:
	case err := <-errCh:
		_ = cmd.Process.Kill()
		return nil, err
	case <-time.After(connectTimeout):
		_ = cmd.Process.Kill()
		return nil, fmt.Errorf("broker: timed out waiting for URI")
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		return nil, ctx.Err()
	}

	client, err := rpc.Dial("tcp", uri)
	if err != nil {
		_ = cmd.Process.Kill()
		return nil, fmt.Errorf("broker: dialing %s: %w", uri, err)
	}

	return &Handle{cmd: cmd, client: client, uri: uri}, nil
}

// Client is a typed wrapper around the raw *rpc.Client, used by both the
// orchestrator and the worker runtime to talk to a running broker.
type Client struct {
	rc *rpc.Client
}

// Dial connects to an already-running broker at uri.
func Dial(uri string) (*Client, error) {
	rc, err := rpc.Dial("tcp", uri)
	if err != nil {
		return nil, err
	}
	return &Client{rc: rc}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error { return c.rc.Close() }

func (c *Client) Register(args registry.Args) (int, error) {
	var reply RegisterReply
	err := c.rc.Call("Service.Register", &RegisterArgs{Args: args}, &reply)
	return reply.ID, err
}

func (c *Client) FunctionRef() (registry.FunctionRef, error) {
	var reply FunctionRefReply
	err := c.rc.Call("Service.FunctionRef", &struct{}{}, &reply)
	return reply.Ref, err
}

func (c *Client) Total() (int, error) {
	var reply TotalReply
	err := c.rc.Call("Service.Total", &struct{}{}, &reply)
	return reply.N, err
}

func (c *Client) Fetch(id int) (registry.Args, error) {
	var reply FetchReply
	err := c.rc.Call("Service.Fetch", &FetchArgs{ID: id}, &reply)
	return reply.Args, err
}

func (c *Client) SubmitResult(o registry.Outcome) error {
	args := &SubmitResultArgs{ID: o.ID, OK: o.OK, Value: o.Value, ErrText: o.ErrText, Elapsed: o.Elapsed}
	return c.rc.Call("Service.SubmitResult", args, &struct{}{})
}

func (c *Client) StoredCount() (int, error) {
	var reply StoredCountReply
	err := c.rc.Call("Service.StoredCount", &struct{}{}, &reply)
	return reply.N, err
}

func (c *Client) NQueue() (int, error) {
	var reply NQueueReply
	err := c.rc.Call("Service.NQueue", &struct{}{}, &reply)
	return reply.N, err
}

// DrainOne polls the broker for one Stored result, waiting up to timeout.
// Ready is false if nothing arrived within timeout.
func (c *Client) DrainOne(timeout time.Duration) (registry.Outcome, bool, error) {
	var reply DrainOneReply
	err := c.rc.Call("Service.DrainOne", &DrainOneArgs{TimeoutMS: int(timeout.Milliseconds())}, &reply)
	return reply.Outcome, reply.Ready, err
}

func (c *Client) Status() (summary string, done int, err error) {
	var reply StatusReply
	err = c.rc.Call("Service.Status", &struct{}{}, &reply)
	return reply.Summary, reply.Done, err
}

func (c *Client) Finished(mode string) (bool, error) {
	var reply FinishedReply
	err := c.rc.Call("Service.Finished", &FinishedArgs{Mode: mode}, &reply)
	return reply.Done, err
}

func (c *Client) Results() ([]registry.Outcome, error) {
	var reply ResultsReply
	err := c.rc.Call("Service.Results", &struct{}{}, &reply)
	return reply.Results, err
}

func (c *Client) TotalTime() (time.Duration, error) {
	var reply TotalTimeReply
	err := c.rc.Call("Service.TotalTime", &struct{}{}, &reply)
	return time.Duration(reply.Nanos), err
}

func (c *Client) ResultCounter() (map[string]int, map[string]time.Time, error) {
	var reply ResultCounterReply
	err := c.rc.Call("Service.ResultCounter", &struct{}{}, &reply)
	return reply.Counts, reply.Seen, err
}

func (c *Client) Stop() error {
	return c.rc.Call("Service.Stop", &struct{}{}, &struct{}{})
}
