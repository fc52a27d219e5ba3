// Package loop provides the presentation context: a single goroutine that
// executes posted functions one at a time, in the order they were posted.
//
// Every model mutation and every render delivery runs on the loop, so none of
// them ever runs concurrently with another. Background workers never touch
// shared state directly; they Post a closure and return.
package loop

import (
	"context"
	"errors"
	"sync"

	"github.com/specialistvlad/graphvisgo/internal/ctxlog"
)

// ErrStopped is returned by Do when the loop is no longer running.
var ErrStopped = errors.New("loop: stopped")

// DefaultBuffer is the queue length used when New is given a non-positive size.
const DefaultBuffer = 64

// Loop is a serial task queue.
type Loop struct {
	tasks    chan func()
	stopped  chan struct{}
	stopOnce sync.Once
}

// New creates a loop with the given queue length.
func New(buffer int) *Loop {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Loop{
		tasks:   make(chan func(), buffer),
		stopped: make(chan struct{}),
	}
}

// Post enqueues fn. It blocks only while the queue is full and reports false
// if the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.stopped:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes posted functions until ctx is done. Functions still queued at
// that point are dropped.
func (l *Loop) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Presentation loop started.")
	defer l.stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Presentation loop stopped.", "dropped", len(l.tasks))
			return nil
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Stopped is closed once Run has returned.
func (l *Loop) Stopped() <-chan struct{} { return l.stopped }

func (l *Loop) stop() {
	l.stopOnce.Do(func() { close(l.stopped) })
}
