package engine

import "sync"

// lifecycle runs the Runner shutdown sequence exactly once: cancel intake,
// wait for in-flight units, then close the errors channel. Adapted from the
// teacher's lifecycle.go shutdown coordinator.
type lifecycle struct {
	cancel    func()
	inflight  *sync.WaitGroup
	closeErrs func()
	once      sync.Once
}

func newLifecycle(cancel func(), inflight *sync.WaitGroup, closeErrs func()) *lifecycle {
	return &lifecycle{cancel: cancel, inflight: inflight, closeErrs: closeErrs}
}

func (l *lifecycle) close() {
	l.once.Do(func() {
		if l.cancel != nil {
			l.cancel()
		}
		if l.inflight != nil {
			l.inflight.Wait()
		}
		if l.closeErrs != nil {
			l.closeErrs()
		}
	})
}
