package winput

import (
	"sync"
	"sync/atomic"
)

// sessionState is the coordinator's state word. Transitions form a total
// order per capture episode:
//
//	idle → starting → active → {mutating → active | mutating → stopping → idle}
//
// While the state is anything but idle, no second episode can begin: the
// only way in is winning the idle-to-starting compare-and-swap.
type sessionState uint32

const (
	// stateIdle means no capture session exists.
	stateIdle sessionState = iota
	// stateStarting means a winner of the begin race is installing hooks.
	stateStarting
	// stateActive means the session is capturing and dispatching.
	stateActive
	// stateMutating is the exclusive registry-mutation window used by
	// joins and unsubscriptions while active.
	stateMutating
	// stateStopping means the last subscriber left and the dispatcher and
	// capture threads are shutting down.
	stateStopping
)

// String implements fmt.Stringer.
func (s sessionState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateStarting:
		return "starting"
	case stateActive:
		return "active"
	case stateMutating:
		return "mutating"
	case stateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// coordinator is the lifecycle state machine gating session start and stop.
// The state word is read and CASed atomically; waiters block on a condition
// variable instead of spinning. Every transition broadcasts, and the
// broadcast takes the condition's mutex, so a waiter either observes the
// new state or is parked when the broadcast arrives. Nothing is lost.
type coordinator struct {
	state atomic.Uint32

	mu   sync.Mutex
	cond *sync.Cond
}

func newCoordinator() *coordinator {
	c := &coordinator{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// current returns the state word.
func (c *coordinator) current() sessionState {
	return sessionState(c.state.Load())
}

// cas attempts a single transition. Exactly one concurrent caller can win
// any given transition. On success all waiters are woken to re-evaluate.
func (c *coordinator) cas(from, to sessionState) bool {
	if !c.state.CompareAndSwap(uint32(from), uint32(to)) {
		return false
	}
	c.broadcast()
	return true
}

// set performs an unconditional transition. Only the thread that owns the
// current phase of the episode may call it (the begin-race winner while
// starting, the last unsubscriber while stopping).
func (c *coordinator) set(to sessionState) {
	c.state.Store(uint32(to))
	c.broadcast()
}

// await blocks until the state satisfies pred and returns the state that
// did. The returned state may be stale by the time the caller acts on it;
// callers follow up with a cas and retry on failure.
func (c *coordinator) await(pred func(sessionState) bool) sessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		s := c.current()
		if pred(s) {
			return s
		}
		c.cond.Wait()
	}
}

func (c *coordinator) broadcast() {
	c.mu.Lock()
	c.cond.Broadcast()
	c.mu.Unlock()
}
