package dispatch

import "errors"

const namespace = "dispatch"

var (
	// ErrNQueueWithMap is returned by Map when WithNQueue was set: Map
	// drains the entire run at once via Finished("map"), so a bounded
	// result queue would deadlock a worker waiting for drain progress that
	// never comes until the run is already complete. Use ImapUnordered for
	// backpressure.
	ErrNQueueWithMap = errors.New(namespace + ": nqueue is not supported with Map, use ImapUnordered")

	// ErrCancelled is returned when the caller's context is done mid-run.
	// The broker has already been stopped and terminated by the time this
	// is returned.
	ErrCancelled = errors.New(namespace + ": run cancelled")
)
