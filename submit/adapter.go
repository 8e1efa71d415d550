package submit

import "context"

// Adapter arranges for workers to be started against a running broker.
// Submit returns once the tasks have been handed to the scheduler (for
// Local, once the in-process runner has been started); it does not wait for
// the run to finish.
type Adapter interface {
	Submit(ctx context.Context, brokerURI string, total int) error
}
