package registry

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/dconrad/dispatch/metrics"
)

// Registry is the Jobs Registry. It is owned exclusively by the broker
// process. Every mutation (registering a job, fetching args, storing a
// result, draining one) runs inside a single goroutine that owns the
// command channel. This is what eliminates intra-registry locking: every
// command is processed one at a time, in the order it arrives, by one
// goroutine.
type Registry struct {
	cmds chan func()

	ref     FunctionRef
	nqueue  int
	metrics *metrics.JobMetrics

	// Everything below is touched only inside the owning goroutine.
	jobs      []Job
	stopping  bool
	queue     []Outcome
	waiters   []chan Outcome
	totalTime time.Duration
	counter   *resultCounter
	ordered   *orderedSink // populated lazily by Finished("map")
}

// New constructs a Registry for the given work-kind/working-directory pair.
// nqueue <= 0 means no bound is enforced (workers never throttle).
func New(ref FunctionRef, nqueue int, m *metrics.JobMetrics) *Registry {
	if m == nil {
		m = metrics.NewJobMetrics(nil)
	}
	r := &Registry{
		cmds:    make(chan func(), 64),
		ref:     ref,
		nqueue:  nqueue,
		metrics: m,
		counter: newResultCounter(),
	}
	go r.loop()
	return r
}

func (r *Registry) loop() {
	for cmd := range r.cmds {
		cmd()
	}
}

// do runs fn on the owning goroutine and waits for it to finish.
func (r *Registry) do(fn func()) {
	done := make(chan struct{})
	r.cmds <- func() {
		fn()
		close(done)
	}
	<-done
}

// Register appends a new job and returns its dense id. Orchestrator-only;
// must happen strictly before any Fetch.
func (r *Registry) Register(args Args) int {
	var id int
	r.do(func() {
		id = len(r.jobs)
		r.jobs = append(r.jobs, Job{ID: id, Args: args, Status: Waiting, SubmittedAt: time.Now()})
		r.metrics.Transition()
	})
	return id
}

// FunctionRef returns the work-kind and working directory a worker must use.
func (r *Registry) FunctionRef() FunctionRef { return r.ref }

// Total returns the number of registered jobs.
func (r *Registry) Total() int {
	var n int
	r.do(func() { n = len(r.jobs) })
	return n
}

// Fetch transitions id from Waiting through Sending to Running and returns
// its args. Fetching an id that is not Waiting is a protocol violation.
func (r *Registry) Fetch(id int) (Args, error) {
	var (
		args Args
		err  error
	)
	r.do(func() {
		if id < 0 || id >= len(r.jobs) {
			err = ErrUnknownJob
			return
		}
		j := &r.jobs[id]
		if j.Status != Waiting {
			err = newJobError(id, ErrAlreadyFetched)
			return
		}
		j.Status = Sending
		r.metrics.Transition()

		args = j.Args
		j.Status = Running
		j.StartedAt = time.Now()
		r.metrics.Transition()
	})
	return args, err
}

// SubmitResult transitions id through Storing to Stored and enqueues the
// outcome. It is a silent no-op once the registry is stopping, per spec §4.1
// and the open question recorded in DESIGN.md: a dropped result leaves its
// job's status wherever it was (never advanced to Stored/Done).
func (r *Registry) SubmitResult(o Outcome) {
	r.do(func() {
		if r.stopping {
			return
		}
		if o.ID < 0 || o.ID >= len(r.jobs) {
			return
		}
		j := &r.jobs[o.ID]
		j.Status = Storing
		r.metrics.Transition()

		r.totalTime += o.Elapsed
		r.counter.observe(counterValue(o), time.Now())
		if !o.OK {
			r.metrics.Error()
		}
		j.FinishedAt = time.Now()
		r.metrics.Elapsed(j.Elapsed().Seconds())

		if len(r.waiters) > 0 {
			w := r.waiters[0]
			r.waiters = r.waiters[1:]
			w <- o
		} else {
			r.queue = append(r.queue, o)
			r.metrics.QueueGrew()
		}
		j.Status = Stored
		r.metrics.Transition()
	})
}

func counterValue(o Outcome) interface{} {
	if !o.OK {
		return o.ErrText
	}
	return o.Value
}

// DrainOne blocks until a Stored result is available, then transitions its
// job to Done and returns it. Results are returned in the order the
// registry received them (FIFO), not id order.
func (r *Registry) DrainOne(ctx context.Context) (Outcome, error) {
	replyCh := make(chan Outcome, 1)
	var already bool
	var immediate Outcome

	r.do(func() {
		if len(r.queue) > 0 {
			immediate = r.queue[0]
			r.queue = r.queue[1:]
			r.metrics.QueueShrank()
			already = true
			return
		}
		r.waiters = append(r.waiters, replyCh)
	})

	if already {
		r.markDone(immediate.ID)
		return immediate, nil
	}

	select {
	case o := <-replyCh:
		r.markDone(o.ID)
		return o, nil
	case <-ctx.Done():
		// A submit may have handed replyCh an outcome between ctx firing and
		// the waiter being removed; reclaiming it here keeps the result from
		// vanishing into an abandoned channel.
		var reclaimed Outcome
		var delivered bool
		r.do(func() {
			r.removeWaiter(replyCh)
			select {
			case reclaimed = <-replyCh:
				delivered = true
			default:
			}
		})
		if delivered {
			r.markDone(reclaimed.ID)
			return reclaimed, nil
		}
		return Outcome{}, ctx.Err()
	}
}

func (r *Registry) removeWaiter(ch chan Outcome) {
	for i, w := range r.waiters {
		if w == ch {
			r.waiters = append(r.waiters[:i], r.waiters[i+1:]...)
			return
		}
	}
}

func (r *Registry) markDone(id int) {
	r.do(func() {
		if id >= 0 && id < len(r.jobs) {
			r.jobs[id].Status = Done
			r.metrics.Transition()
		}
	})
}

// StoredCount returns the number of results currently Stored (queued but
// not yet drained). Workers poll this before SubmitResult to cooperatively
// throttle against Registry.nqueue.
func (r *Registry) StoredCount() int {
	var n int
	r.do(func() { n = len(r.queue) })
	return n
}

// NQueue returns the configured backpressure bound, or <= 0 if unbounded.
func (r *Registry) NQueue() int { return r.nqueue }

// StatusSnapshot returns counts by state, a human summary, and the
// "done" count (Stored + Done).
func (r *Registry) StatusSnapshot() (counts map[Status]int, summary string, done int) {
	r.do(func() {
		counts = make(map[Status]int, 6)
		for _, j := range r.jobs {
			counts[j.Status]++
		}
		summary = formatSummary(counts)
		done = counts[Stored] + counts[Done]
	})
	return
}

func formatSummary(counts map[Status]int) string {
	order := []Status{Waiting, Sending, Running, Storing, Stored, Done}
	var b strings.Builder
	b.WriteString("[")
	first := true
	for _, s := range order {
		if counts[s] == 0 {
			continue
		}
		if !first {
			b.WriteString("|")
		}
		first = false
		b.WriteString(strconv.Itoa(counts[s]))
		b.WriteString(" ")
		b.WriteString(s.String())
	}
	b.WriteString("] ")
	return b.String()
}

// Finished reports whether every job has reached a terminal state for the
// given mode. In "map" mode it first drains every currently Stored result
// into id order via an orderedSink, so Results() can return them in input
// order once Finished("map") returns true.
func (r *Registry) Finished(mode string) bool {
	var done bool
	r.do(func() {
		if mode == "map" {
			if r.ordered == nil {
				r.ordered = newOrderedSink(len(r.jobs))
			}
			for len(r.queue) > 0 {
				o := r.queue[0]
				r.queue = r.queue[1:]
				r.metrics.QueueShrank()
				r.jobs[o.ID].Status = Done
				r.metrics.Transition()
				r.ordered.insert(o)
			}
		}
		total := len(r.jobs)
		doneCount := 0
		for _, j := range r.jobs {
			if j.Status == Done {
				doneCount++
			}
		}
		done = total > 0 && doneCount == total
	})
	return done
}

// Results returns the id-ordered result vector assembled by Finished("map").
// Valid only after Finished("map") has returned true.
func (r *Registry) Results() []Outcome {
	var out []Outcome
	r.do(func() {
		if r.ordered != nil {
			out = r.ordered.ordered()
		}
	})
	return out
}

// TotalTime returns the cumulative elapsed time summed across every result.
func (r *Registry) TotalTime() time.Duration {
	var d time.Duration
	r.do(func() { d = r.totalTime })
	return d
}

// ResultCounterSnapshot returns a copy of the bounded result-signature
// counter and its last-seen times.
func (r *Registry) ResultCounterSnapshot() (map[string]int, map[string]time.Time) {
	var counts map[string]int
	var seen map[string]time.Time
	r.do(func() { counts, seen = r.counter.snapshot() })
	return counts, seen
}

// Stop marks the registry as stopping: every subsequent SubmitResult is a
// silent no-op. The owning goroutine applies each Sending or Storing
// transition as one indivisible command, and commands drain FIFO, so by the
// time Stop's own command has run there is no transition in flight, which
// is the quiescence the cancellation protocol requires before the broker
// process is killed.
func (r *Registry) Stop() {
	r.do(func() { r.stopping = true })
}

// Close stops the owning goroutine. Only the broker calls this, once a run
// has fully ended.
func (r *Registry) Close() {
	close(r.cmds)
}
