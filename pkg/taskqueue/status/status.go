// Package status declares error constants returned by the taskqueue package.
package status

import "github.com/oneconcern/vcsmigrate/pkg/errors"

var (
	// ErrCancelled signals that a task stopped because the queue was aborted.
	// This is a normal terminal state, not a failure.
	ErrCancelled = errors.New("task cancelled")

	// ErrQueueClosed is returned when submitting to a closed queue
	ErrQueueClosed = errors.New("queue is closed")

	// ErrAborting is returned when submitting while an abort is still draining the queue
	ErrAborting = errors.New("queue is aborting")

	// ErrPanic wraps a panic captured while running a task
	ErrPanic = errors.New("task panicked")
)
