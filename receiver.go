package winput

import (
	"sync/atomic"
	"time"

	"github.com/gymore-io/winput/internal/equeue"
	"github.com/gymore-io/winput/pkg/errors"
	"github.com/gymore-io/winput/pkg/events"
)

// Receiver is the pull-style consumption surface returned by Start. It is
// a subscriber that buffers every delivered event into its own unbounded
// queue for the caller to pop at leisure, and it owns the whole session:
// stopping the receiver tears the capture session down.
type Receiver struct {
	queue   *equeue.Queue
	handle  *Handle
	stopped atomic.Bool
}

func newReceiver() *Receiver {
	return &Receiver{queue: equeue.New()}
}

// HandleEvent implements events.Handler. It runs on the dispatch goroutine
// and never blocks.
func (r *Receiver) HandleEvent(e events.Event) {
	r.queue.Push(e)
}

// Next blocks until an event is available and returns it. It panics if the
// receiver has been stopped; use NextTimeout or TryNext when the session
// may end underneath you.
func (r *Receiver) Next() events.Event {
	if r.stopped.Load() {
		panic("winput: Next called on a stopped Receiver")
	}
	e, ok := r.queue.Pop()
	if !ok {
		panic("winput: Next called on a stopped Receiver")
	}
	return e
}

// NextTimeout waits up to d for an event. The second return value is false
// when the timeout elapsed or the receiver was stopped.
func (r *Receiver) NextTimeout(d time.Duration) (events.Event, bool) {
	return r.queue.PopTimeout(d)
}

// TryNext returns a buffered event without blocking. The second return
// value is false when none is pending.
func (r *Receiver) TryNext() (events.Event, bool) {
	return r.queue.TryPop()
}

// Clear discards every buffered event and returns how many were dropped.
func (r *Receiver) Clear() int {
	return r.queue.Drain()
}

// Stop ends the capture session this receiver owns. It blocks until the
// hooks are uninstalled and the dispatcher has exited. Stopping twice
// returns errors.ErrHandleReleased.
func (r *Receiver) Stop() error {
	if !r.stopped.CompareAndSwap(false, true) {
		return errors.ErrHandleReleased
	}
	err := r.handle.Close()
	r.queue.Close()
	return err
}
