package registry

import (
	"errors"
	"fmt"
)

const namespace = "registry"

var (
	// ErrUnknownJob is returned when an operation names a job id outside
	// the dense 0..N-1 range established at registration.
	ErrUnknownJob = errors.New(namespace + ": unknown job id")

	// ErrAlreadyFetched is a protocol violation: a worker fetched an id
	// whose status has already advanced past Waiting.
	ErrAlreadyFetched = errors.New(namespace + ": job already fetched")
)

// JobError carries the job id alongside an underlying error, so a protocol
// violation or worker-side failure can be correlated back to the job that
// produced it.
type JobError struct {
	ID  int
	err error
}

func newJobError(id int, err error) *JobError {
	if err == nil {
		return nil
	}
	return &JobError{ID: id, err: err}
}

func (e *JobError) Error() string { return fmt.Sprintf("job %d: %v", e.ID, e.err) }
func (e *JobError) Unwrap() error { return e.err }
