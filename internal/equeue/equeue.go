// Package equeue implements the unbounded FIFO between the capture callback
// and the dispatcher. The producer side never blocks: the capture callback
// runs inside the platform's hook invocation and stalling it would stall the
// whole system input path. The consumer side offers blocking, timed and
// non-blocking receives.
package equeue

import (
	"sync"
	"time"

	"github.com/gymore-io/winput/pkg/events"
)

// Queue is a single-producer FIFO of captured events with an unbounded
// buffer. The zero value is not usable; create queues with New.
type Queue struct {
	mu     sync.Mutex
	items  []events.Event
	closed bool

	// signal wakes at most one waiting consumer. Capacity 1 so Push never
	// blocks even when nobody is receiving.
	signal chan struct{}
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		signal: make(chan struct{}, 1),
	}
}

// Push appends an event. It never blocks. Pushing to a closed queue is a
// no-op: the capture backend may still be tearing down while the dispatcher
// has already gone away.
func (q *Queue) Push(e events.Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, e)
	q.mu.Unlock()

	q.wake()
}

// Pop removes and returns the oldest event, blocking until one is available.
// It returns ok=false once the queue is closed and drained.
func (q *Queue) Pop() (events.Event, bool) {
	for {
		if e, ok, done := q.take(); ok || done {
			return e, ok
		}
		<-q.signal
	}
}

// PopTimeout is Pop with an upper bound on the wait. It returns ok=false on
// timeout or once the queue is closed and drained; Closed distinguishes the
// two when it matters.
func (q *Queue) PopTimeout(d time.Duration) (events.Event, bool) {
	deadline := time.NewTimer(d)
	defer deadline.Stop()

	for {
		if e, ok, done := q.take(); ok || done {
			return e, ok
		}
		select {
		case <-q.signal:
		case <-deadline.C:
			return nil, false
		}
	}
}

// TryPop removes and returns the oldest event without blocking.
func (q *Queue) TryPop() (events.Event, bool) {
	e, ok, _ := q.take()
	return e, ok
}

// Drain discards all pending events and returns how many were dropped.
func (q *Queue) Drain() int {
	q.mu.Lock()
	n := len(q.items)
	q.items = nil
	q.mu.Unlock()
	return n
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close marks the queue closed. Pending events remain receivable; consumers
// see ok=false after the backlog drains. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.wake()
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// take pops the head if present. done reports closed-and-drained.
func (q *Queue) take() (e events.Event, ok bool, done bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) > 0 {
		e = q.items[0]
		q.items = q.items[1:]
		if len(q.items) == 0 {
			// Release the backing array so a burst doesn't pin memory.
			q.items = nil
		}
		return e, true, false
	}
	return nil, false, q.closed
}

// wake nudges one waiting consumer without ever blocking the producer.
func (q *Queue) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}
