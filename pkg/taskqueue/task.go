package taskqueue

import "context"

// Reporter is handed to a running task to publish progress
type Reporter interface {
	// SetStatus updates the free-text status of the queue
	SetStatus(string)
}

// Task is a unit of work executed by a Queue.
//
// Run must return promptly once ctx is done: the queue cancels ctx on Abort.
// A task interrupted this way may return nil, context.Canceled or status.ErrCancelled:
// none of these is recorded as a failure.
type Task interface {
	Name() string
	Run(ctx context.Context, reporter Reporter) error
}

type funcTask struct {
	name string
	fn   func(context.Context, Reporter) error
}

func (t funcTask) Name() string { return t.name }

func (t funcTask) Run(ctx context.Context, reporter Reporter) error { return t.fn(ctx, reporter) }

// NewTask builds a task from a function
func NewTask(name string, fn func(context.Context, Reporter) error) Task {
	return funcTask{name: name, fn: fn}
}
