package metrics

import "testing"

func TestJobMetrics_BasicProvider(t *testing.T) {
	p := NewBasicProvider()
	m := NewJobMetrics(p)

	m.Transition()
	m.Transition()
	m.Error()
	m.Elapsed(1.5)
	m.QueueGrew()
	m.QueueGrew()
	m.QueueShrank()

	if c, ok := p.Counter("dispatch_job_transitions_total").(*BasicCounter); ok {
		if got := c.Snapshot(); got != 2 {
			t.Fatalf("transitions = %d; want 2", got)
		}
	} else {
		t.Fatal("expected *BasicCounter")
	}

	if c, ok := p.Counter("dispatch_job_errors_total").(*BasicCounter); ok {
		if got := c.Snapshot(); got != 1 {
			t.Fatalf("errors = %d; want 1", got)
		}
	} else {
		t.Fatal("expected *BasicCounter")
	}

	if u, ok := p.UpDownCounter("dispatch_job_queue_depth").(*BasicUpDownCounter); ok {
		if got := u.Snapshot(); got != 1 {
			t.Fatalf("queue depth = %d; want 1", got)
		}
	} else {
		t.Fatal("expected *BasicUpDownCounter")
	}
}

func TestJobMetrics_NilProviderDoesNotPanic(t *testing.T) {
	m := NewJobMetrics(nil)
	m.Transition()
	m.Error()
	m.Elapsed(0.1)
	m.QueueGrew()
	m.QueueShrank()
}
