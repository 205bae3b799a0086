package winput

import (
	"sync/atomic"

	"github.com/gymore-io/winput/pkg/errors"
)

// Handle represents a single subscription to the capture stream. It is
// a single-use capability: Close detaches the handler exactly once, and
// any later call reports errors.ErrHandleReleased.
type Handle struct {
	c        *client
	id       uint64
	released atomic.Bool
}

// ID returns the subscription identifier, mainly useful in logs.
func (h *Handle) ID() uint64 {
	return h.id
}

// Close detaches the handler from the capture stream. If this was the
// last subscription, Close blocks until the hooks are uninstalled and
// the dispatcher has exited. Closing an already released handle returns
// errors.ErrHandleReleased.
func (h *Handle) Close() error {
	if !h.released.CompareAndSwap(false, true) {
		return errors.ErrHandleReleased
	}
	return h.c.unsubscribe(h.id)
}
