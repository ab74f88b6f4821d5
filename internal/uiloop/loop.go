// Package uiloop provides the single goroutine that owns all view state.
// Background workers never touch that state directly; they post closures
// here and the loop runs them one at a time in the order received.
package uiloop

import (
	"context"
	"errors"
	"sync"

	"github.com/rflorenc/distribution-workbench/internal/logging"
)

// ErrLoopStopped is returned by Do once the loop no longer accepts work.
var ErrLoopStopped = errors.New("ui loop stopped")

const defaultQueueSize = 256

// Loop is a single-consumer task queue.
type Loop struct {
	queue chan func()

	// stopReq wakes posters blocked on a full queue. Once mu is held for
	// writing and stopped is set, no further send can happen, so drain
	// sees every accepted closure.
	stopReq  chan struct{}
	mu       sync.RWMutex
	stopped  bool
	stopping chan struct{}

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a loop with the given queue capacity.
func New(size int) *Loop {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Loop{
		queue:    make(chan func(), size),
		stopReq:  make(chan struct{}),
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run consumes posted closures until ctx is cancelled or Stop is called,
// then runs whatever is still queued. It must be called exactly once.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.signalStop()
			l.drain()
			return
		case <-l.stopping:
			l.drain()
			return
		case fn := <-l.queue:
			l.invoke(fn)
		}
	}
}

// Post enqueues fn to run on the loop. It blocks while the queue is full and
// reports false once the loop is stopping, in which case fn is dropped.
// A closure accepted with true always runs, even during shutdown.
func (l *Loop) Post(fn func()) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopped {
		return false
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.stopReq:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrLoopStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopStopped
		}
	}
}

// Stop refuses further work, runs whatever is already queued and waits for
// Run to return. Run must have been started.
func (l *Loop) Stop() {
	l.signalStop()
	<-l.done
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) signalStop() {
	l.stopOnce.Do(func() {
		close(l.stopReq)
		l.mu.Lock()
		l.stopped = true
		l.mu.Unlock()
		close(l.stopping)
	})
}

func (l *Loop) drain() {
	for {
		select {
		case fn := <-l.queue:
			l.invoke(fn)
		default:
			return
		}
	}
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Warn("UILoop", "recovered panic in posted function: %v", r)
		}
	}()
	fn()
}
