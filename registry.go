package winput

import (
	"sync"

	"github.com/gymore-io/winput/pkg/events"
)

// registry maps subscriber ids to their handlers. Ids increase monotonically
// within an episode, and iteration follows insertion order, so every
// dispatch sees the handlers in the same sequence.
//
// Mutations take the write lock and are additionally serialized by the
// coordinator's mutation window; dispatch iterates under the read lock.
// Concurrent dispatches may overlap each other but never a mutation.
type registry struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[uint64]events.Handler
	order    []uint64
}

func newRegistry() *registry {
	return &registry{
		handlers: make(map[uint64]events.Handler),
	}
}

// insert registers a handler and returns its id.
func (r *registry) insert(h events.Handler) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.handlers[id] = h
	r.order = append(r.order, id)
	return id
}

// remove deletes a handler by id and reports whether it was present.
func (r *registry) remove(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[id]; !ok {
		return false
	}
	delete(r.handlers, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// isEmpty reports whether no handlers remain.
func (r *registry) isEmpty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers) == 0
}

// len returns the number of registered handlers.
func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// forEach invokes fn for every handler in insertion order under the read
// lock.
func (r *registry) forEach(fn func(id uint64, h events.Handler)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		fn(id, r.handlers[id])
	}
}
