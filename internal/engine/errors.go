package engine

import "errors"

const namespace = "engine"

var (
	// ErrClosed is returned by Submit once the Runner has been closed.
	ErrClosed = errors.New(namespace + ": runner is closed")
)
