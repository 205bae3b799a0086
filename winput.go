// Package winput captures operating-system level keyboard and mouse input
// and fans it out to any number of independent subscribers.
//
// Installing OS input hooks is expensive and exclusive: one capture session
// exists per Client no matter how many subscribers arrive. The first
// subscriber starts the session (installing the hooks on a dedicated
// thread), later subscribers join it, and the last subscriber to leave
// tears it down deterministically. All of that coordination is safe under
// concurrent, racing calls from arbitrary goroutines.
//
// Two consumption styles are offered. Handler style:
//
//	handle, err := winput.Subscribe(events.HandlerFunc(func(e events.Event) {
//	    fmt.Printf("%s\n", e.Type())
//	}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer handle.Close()
//
// Receiver style, which owns the whole session:
//
//	receiver, err := winput.Start()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer receiver.Stop()
//
//	for {
//	    if kb, ok := receiver.Next().(events.Keyboard); ok && kb.Key == keys.Escape {
//	        break
//	    }
//	}
//
// Handlers run synchronously on the dispatch goroutine in OS production
// order; a slow handler delays everyone behind it, so handlers must be fast
// or hand work off themselves.
package winput

import (
	"sync"

	"github.com/gymore-io/winput/pkg/events"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Subscriber registers event handlers against the capture session.
type Subscriber interface {
	// Subscribe registers a handler. The first subscriber starts the
	// capture session and blocks until hook installation succeeds or
	// fails; later subscribers join the running session immediately.
	Subscribe(handler events.Handler) (*Handle, error)

	// Unsubscribe releases a subscription handle. Equivalent to
	// handle.Close.
	Unsubscribe(handle *Handle) error
}

// Starter begins an exclusive receiver-style capture session.
type Starter interface {
	// Start begins a capture session owned by a single Receiver. Unlike
	// Subscribe it never joins an existing session: it returns
	// ErrAlreadyActive when one exists.
	Start() (*Receiver, error)
}

// Client captures OS input and fans it out to subscribers.
type Client interface {

	// Subscriber registers and releases event handlers
	Subscriber

	// Starter begins exclusive receiver-style sessions
	Starter

	// IsActive reports whether a capture session currently exists.
	IsActive() bool
}

// Default client for the package-level convenience functions.
var (
	defaultClient     Client
	defaultClientOnce sync.Once
)

// Default returns the shared package-level client, creating it on first use
// with the platform capture backend.
func Default() Client {
	defaultClientOnce.Do(func() {
		c, err := New()
		if err != nil {
			// New only fails through options; there are none here.
			panic("winput: creating default client: " + err.Error())
		}
		defaultClient = c
	})
	return defaultClient
}

// Subscribe registers a handler with the default client.
func Subscribe(handler events.Handler) (*Handle, error) {
	return Default().Subscribe(handler)
}

// Unsubscribe releases a subscription handle obtained from the default
// client.
func Unsubscribe(handle *Handle) error {
	return Default().Unsubscribe(handle)
}

// Start begins a receiver-style session on the default client.
func Start() (*Receiver, error) {
	return Default().Start()
}

// IsActive reports whether the default client has a capture session.
func IsActive() bool {
	return Default().IsActive()
}
