// Package broker runs the Jobs Registry behind a net/rpc server in its own
// child process. Spawning a real OS process (instead of an in-process
// server or a goroutine-only daemon) is deliberate: the orchestrator must be
// able to forcibly and unconditionally terminate the broker on cancellation,
// and a goroutine cannot be killed out from under itself. See Spawn and
// Handle.
package broker

import (
	"time"

	"github.com/dconrad/dispatch/registry"
)

// Service is the net/rpc-exposed wrapper around a *registry.Registry. Every
// method follows net/rpc's required shape: func(*Args, *Reply) error.
type Service struct {
	reg *registry.Registry
}

// NewService constructs the RPC-facing wrapper around reg.
func NewService(reg *registry.Registry) *Service { return &Service{reg: reg} }

// RegisterArgs carries one job's argument tuple.
type RegisterArgs struct {
	Args registry.Args
}

// RegisterReply carries the newly assigned job id.
type RegisterReply struct {
	ID int
}

// Register appends one job and returns its id.
func (s *Service) Register(args *RegisterArgs, reply *RegisterReply) error {
	reply.ID = s.reg.Register(args.Args)
	return nil
}

// FunctionRefReply carries the work-kind and working directory a worker
// must use to resolve and run the dispatched function.
type FunctionRefReply struct {
	Ref registry.FunctionRef
}

// FunctionRef returns the run's work-kind and working directory.
func (s *Service) FunctionRef(_ *struct{}, reply *FunctionRefReply) error {
	reply.Ref = s.reg.FunctionRef()
	return nil
}

// TotalReply carries the number of registered jobs.
type TotalReply struct {
	N int
}

// Total returns the number of registered jobs.
func (s *Service) Total(_ *struct{}, reply *TotalReply) error {
	reply.N = s.reg.Total()
	return nil
}

// FetchArgs names the job id a worker wants to run.
type FetchArgs struct {
	ID int
}

// FetchReply carries the fetched job's argument tuple.
type FetchReply struct {
	Args registry.Args
}

// Fetch transitions a job Waiting->Sending->Running and returns its args.
func (s *Service) Fetch(args *FetchArgs, reply *FetchReply) error {
	a, err := s.reg.Fetch(args.ID)
	if err != nil {
		return err
	}
	reply.Args = a
	return nil
}

// SubmitResultArgs carries a completed job's outcome.
type SubmitResultArgs struct {
	ID      int
	OK      bool
	Value   interface{}
	ErrText string
	Elapsed time.Duration
}

// SubmitResult stores a worker's outcome for job ID.
func (s *Service) SubmitResult(args *SubmitResultArgs, _ *struct{}) error {
	s.reg.SubmitResult(registry.Outcome{
		ID: args.ID, OK: args.OK, Value: args.Value,
		ErrText: args.ErrText, Elapsed: args.Elapsed,
	})
	return nil
}

// StoredCountReply carries the number of results currently Stored.
type StoredCountReply struct {
	N int
}

// StoredCount returns the number of results currently queued awaiting
// drain. Workers poll this before SubmitResult to throttle cooperatively.
func (s *Service) StoredCount(_ *struct{}, reply *StoredCountReply) error {
	reply.N = s.reg.StoredCount()
	return nil
}

// NQueueReply carries the configured backpressure bound.
type NQueueReply struct {
	N int
}

// NQueue returns the configured backpressure bound, <= 0 meaning unbounded.
func (s *Service) NQueue(_ *struct{}, reply *NQueueReply) error {
	reply.N = s.reg.NQueue()
	return nil
}

// DrainOneArgs bounds how long the call may block waiting for a result.
type DrainOneArgs struct {
	TimeoutMS int
}

// DrainOneReply carries the dequeued outcome, or Ready=false on timeout.
type DrainOneReply struct {
	Ready   bool
	Outcome registry.Outcome
}

// DrainOne blocks up to TimeoutMS milliseconds for a Stored result.
func (s *Service) DrainOne(args *DrainOneArgs, reply *DrainOneReply) error {
	timeout := time.Duration(args.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := timeoutCtx(timeout)
	defer cancel()
	o, err := s.reg.DrainOne(ctx)
	if err != nil {
		reply.Ready = false
		return nil
	}
	reply.Ready = true
	reply.Outcome = o
	return nil
}

// StatusReply carries a run's human-readable progress summary.
type StatusReply struct {
	Summary string
	Done    int
}

// Status returns the current status summary and done count.
func (s *Service) Status(_ *struct{}, reply *StatusReply) error {
	_, summary, done := s.reg.StatusSnapshot()
	reply.Summary = summary
	reply.Done = done
	return nil
}

// FinishedArgs names which run mode ("map" or "imap") is asking.
type FinishedArgs struct {
	Mode string
}

// FinishedReply carries whether every job has reached a terminal state.
type FinishedReply struct {
	Done bool
}

// Finished reports whether the run has completed for the given mode.
func (s *Service) Finished(args *FinishedArgs, reply *FinishedReply) error {
	reply.Done = s.reg.Finished(args.Mode)
	return nil
}

// ResultsReply carries the id-ordered result vector ("map" mode only).
type ResultsReply struct {
	Results []registry.Outcome
}

// Results returns the id-ordered results assembled by Finished("map").
func (s *Service) Results(_ *struct{}, reply *ResultsReply) error {
	reply.Results = s.reg.Results()
	return nil
}

// TotalTimeReply carries the cumulative elapsed time across every result.
type TotalTimeReply struct {
	Nanos int64
}

// TotalTime returns the cumulative elapsed time across every result.
func (s *Service) TotalTime(_ *struct{}, reply *TotalTimeReply) error {
	reply.Nanos = int64(s.reg.TotalTime())
	return nil
}

// ResultCounterReply carries a snapshot of the bounded result-signature
// counter.
type ResultCounterReply struct {
	Counts map[string]int
	Seen   map[string]time.Time
}

// ResultCounter returns a snapshot of the result-signature counter.
func (s *Service) ResultCounter(_ *struct{}, reply *ResultCounterReply) error {
	counts, seen := s.reg.ResultCounterSnapshot()
	reply.Counts = counts
	reply.Seen = seen
	return nil
}

// Stop marks the registry as stopping; once it returns, no in-flight
// transition remains. Used on cancellation, before the broker process is
// killed.
func (s *Service) Stop(_ *struct{}, _ *struct{}) error {
	s.reg.Stop()
	return nil
}
