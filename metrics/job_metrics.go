package metrics

// JobMetrics records the counters and histogram the Jobs Registry keeps as
// it drives jobs through their state machine. It is a thin, named wrapper
// around a Provider so call sites (registry.Registry) don't repeat
// instrument names.
type JobMetrics struct {
	transitions Counter // count of status transitions, one Add per transition
	errors      Counter // count of jobs that finished with an Err outcome
	elapsed     Histogram
	queueDepth  UpDownCounter // current Stored-but-not-Done count
}

// NewJobMetrics builds the instrument set from p. Pass metrics.NewNoopProvider()
// to disable recording entirely.
func NewJobMetrics(p Provider) *JobMetrics {
	if p == nil {
		p = NewNoopProvider()
	}
	return &JobMetrics{
		transitions: p.Counter("dispatch_job_transitions_total", WithDescription("job status transitions")),
		errors:      p.Counter("dispatch_job_errors_total", WithDescription("jobs that finished with an error outcome")),
		elapsed:     p.Histogram("dispatch_job_elapsed_seconds", WithUnit("s"), WithDescription("per-job wall time from fetch to result")),
		queueDepth:  p.UpDownCounter("dispatch_job_queue_depth", WithDescription("results stored but not yet drained")),
	}
}

func (m *JobMetrics) Transition()             { m.transitions.Add(1) }
func (m *JobMetrics) Error()                  { m.errors.Add(1) }
func (m *JobMetrics) Elapsed(seconds float64) { m.elapsed.Record(seconds) }
func (m *JobMetrics) QueueGrew()              { m.queueDepth.Add(1) }
func (m *JobMetrics) QueueShrank()            { m.queueDepth.Add(-1) }
