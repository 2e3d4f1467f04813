// Package taskqueue provides a single-worker sequential executor.
//
// Tasks submitted to a Queue run one at a time, in submission order, on a
// dedicated goroutine. The caller is never blocked, except through WaitIdle.
//
// A failing task (returned error or panic) is captured: the remainder of the
// queue is discarded and the failure is kept until FetchExceptions drains it.
package taskqueue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/oneconcern/vcsmigrate/pkg/errors"
	"github.com/oneconcern/vcsmigrate/pkg/taskqueue/status"
)

// Queue is a FIFO of tasks served by a single worker
type Queue struct {
	name   string
	l      *zap.Logger
	onIdle func()

	mu        sync.Mutex
	idle      *sync.Cond
	pending   []Task
	busy      bool
	closed    bool
	busySince time.Time
	active    time.Duration
	status    string
	failures  []error
	cancel    context.CancelFunc

	aborting *atomic.Bool
	done     chan struct{}
}

// Option for a Queue
type Option func(*Queue)

// Logger for this queue
func Logger(l *zap.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.l = l
		}
	}
}

// OnIdle registers a notification fired once per busy to empty transition.
//
// The callback runs on the worker goroutine, or on the caller of Abort when
// no task is in flight. It must not call WaitIdle.
func OnIdle(fn func()) Option {
	return func(q *Queue) {
		q.onIdle = fn
	}
}

// New queue, with its worker started
func New(name string, opts ...Option) *Queue {
	q := &Queue{
		name:     name,
		l:        zap.NewNop(),
		aborting: atomic.NewBool(false),
		done:     make(chan struct{}),
	}
	for _, apply := range opts {
		apply(q)
	}
	q.l = q.l.With(zap.String("queue", name))
	q.idle = sync.NewCond(&q.mu)

	go q.work()

	return q
}

// Name of this queue
func (q *Queue) Name() string {
	return q.name
}

// Submit appends tasks to the tail of the queue.
//
// Several tasks submitted at once are queued together: the queue does not turn idle in between.
func (q *Queue) Submit(tasks ...Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return status.ErrQueueClosed
	}
	if q.aborting.Load() {
		return status.ErrAborting
	}
	if len(tasks) == 0 {
		return nil
	}
	q.pending = append(q.pending, tasks...)
	if !q.busy {
		q.busy = true
		q.busySince = time.Now()
	}
	for _, task := range tasks {
		q.l.Debug("task submitted", zap.String("task", task.Name()), zap.Int("pending", len(q.pending)))
	}
	q.idle.Broadcast()

	return nil
}

// Abort stops the running task at its next safe point and discards all queued tasks.
//
// Abort is monotonic: it is only lifted once the queue has become idle.
func (q *Queue) Abort() {
	q.mu.Lock()

	if !q.busy {
		q.mu.Unlock()
		return
	}
	q.aborting.Store(true)
	if len(q.pending) > 0 {
		q.l.Info("discarding queued tasks", zap.Int("discarded", len(q.pending)))
	}
	q.pending = nil

	if q.cancel != nil {
		// in-flight task: the worker turns idle when it returns
		q.cancel()
		q.mu.Unlock()
		return
	}

	q.becomeIdle()
	q.mu.Unlock()
	q.notifyIdle()
}

// IsAborting tells if an abort has been requested and the queue is not idle yet
func (q *Queue) IsAborting() bool {
	return q.aborting.Load()
}

// WaitIdle blocks until the worker has no in-flight or queued work
func (q *Queue) WaitIdle() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.busy {
		q.idle.Wait()
	}
}

// IsIdle tells if the queue has no in-flight or queued work
func (q *Queue) IsIdle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return !q.busy
}

// LastStatus yields the last status string published by a task
func (q *Queue) LastStatus() string {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.status
}

// ActiveTime is the cumulated wall time spent executing tasks, excluding idle gaps
func (q *Queue) ActiveTime() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.busy {
		return q.active + time.Since(q.busySince)
	}
	return q.active
}

// FetchExceptions drains captured failures
func (q *Queue) FetchExceptions() []error {
	q.mu.Lock()
	defer q.mu.Unlock()

	failures := q.failures
	q.failures = nil

	return failures
}

// Close aborts any ongoing work and stops the worker
func (q *Queue) Close() {
	q.Abort()

	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.idle.Broadcast()
	}
	q.mu.Unlock()

	<-q.done
}

// SetStatus implements Reporter
func (q *Queue) SetStatus(msg string) {
	q.mu.Lock()
	q.status = msg
	q.mu.Unlock()
}

func (q *Queue) work() {
	defer close(q.done)

	for {
		task, ctx, ok := q.next()
		if !ok {
			return
		}

		start := time.Now()
		q.l.Debug("task started", zap.String("task", task.Name()))
		err := q.run(ctx, task)
		q.l.Debug("task done", zap.String("task", task.Name()), zap.Duration("elapsed", time.Since(start)))

		q.finish(task, err)
	}
}

// next blocks until some task is available, or the queue is closed
func (q *Queue) next() (Task, context.Context, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.pending) == 0 && !q.closed {
		q.idle.Wait()
	}
	if len(q.pending) == 0 {
		return nil, nil, false
	}

	task := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]

	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel

	return task, ctx, true
}

func (q *Queue) finish(task Task, err error) {
	q.mu.Lock()

	q.cancel()
	q.cancel = nil

	if err != nil && !isCancellation(err) {
		q.l.Error("task failed, discarding queue", zap.String("task", task.Name()), zap.Int("discarded", len(q.pending)), zap.Error(err))
		q.failures = append(q.failures, err)
		q.pending = nil
	}

	var becameIdle bool
	if len(q.pending) == 0 && q.busy {
		q.becomeIdle()
		becameIdle = true
	}
	q.mu.Unlock()

	if becameIdle {
		q.notifyIdle()
	}
}

// becomeIdle must be called with the lock held
func (q *Queue) becomeIdle() {
	q.busy = false
	q.active += time.Since(q.busySince)
	q.aborting.Store(false)
	q.idle.Broadcast()
}

func (q *Queue) notifyIdle() {
	if q.onIdle != nil {
		q.onIdle()
	}
}

func (q *Queue) run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = status.ErrPanic.Wrap(fmt.Errorf("%s: %v", task.Name(), r))
		}
	}()

	return task.Run(ctx, q)
}

func isCancellation(err error) bool {
	return errors.Is(err, status.ErrCancelled) || errors.Is(err, context.Canceled)
}
