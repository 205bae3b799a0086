package winput

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gymore-io/winput/internal/capture"
	"github.com/gymore-io/winput/pkg/errors"
	"github.com/gymore-io/winput/pkg/events"
	"github.com/gymore-io/winput/pkg/logging"
)

// client is the concrete Client implementation. One client owns at most one
// capture episode at a time; the coordinator's state machine decides which
// caller starts it, who may mutate the subscriber registry, and who tears
// it down.
type client struct {
	config *config
	coord  *coordinator

	// mu guards the per-episode fields below. They are written only inside
	// the starting and stopping windows, when the writer holds the
	// exclusive state.
	mu      sync.Mutex
	reg     *registry
	session *capture.Session
	disp    *dispatcher
	logger  zerolog.Logger
}

// New creates a capture client.
func New(opts ...Option) (Client, error) {
	c := &client{
		config: defaultConfig(),
		coord:  newCoordinator(),
	}

	if err := c.options(opts...); err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	return c, nil
}

// Subscribe registers a handler with the capture session, starting one if
// none exists. Exactly one of any set of racing first subscribers installs
// the hooks; the rest join the session it started. The call blocks until
// the handler is attached to a live session or installation fails.
func (c *client) Subscribe(handler events.Handler) (*Handle, error) {
	if handler == nil {
		return nil, errors.New("handler must not be nil")
	}

	for {
		switch c.coord.current() {
		case stateIdle:
			if !c.coord.cas(stateIdle, stateStarting) {
				continue
			}
			id, err := c.beginEpisode(handler)
			if err != nil {
				c.coord.set(stateIdle)
				return nil, err
			}
			c.coord.set(stateActive)
			return &Handle{c: c, id: id}, nil

		case stateActive:
			if !c.coord.cas(stateActive, stateMutating) {
				continue
			}
			c.mu.Lock()
			id := c.reg.insert(handler)
			logger := c.logger
			c.mu.Unlock()
			c.coord.set(stateActive)

			logger.Debug().Uint64("subscriber", id).Msg("Handler subscribed")
			return &Handle{c: c, id: id}, nil

		default:
			// Someone else is starting, mutating or stopping the session.
			// Wait for the machine to settle and take another run.
			c.coord.await(func(s sessionState) bool {
				return s == stateIdle || s == stateActive
			})
		}
	}
}

// Unsubscribe releases a subscription handle. Equivalent to handle.Close.
func (c *client) Unsubscribe(handle *Handle) error {
	if handle == nil {
		return errors.New("handle must not be nil")
	}
	return handle.Close()
}

// Start begins a receiver-owned capture session. Unlike Subscribe it never
// joins: if a session already exists the call fails with ErrAlreadyActive.
// A session mid-teardown is waited out first, so stopping a receiver and
// immediately starting another never spuriously fails.
func (c *client) Start() (*Receiver, error) {
	for {
		switch c.coord.current() {
		case stateIdle:
			if !c.coord.cas(stateIdle, stateStarting) {
				continue
			}
			r := newReceiver()
			id, err := c.beginEpisode(r)
			if err != nil {
				c.coord.set(stateIdle)
				return nil, err
			}
			r.handle = &Handle{c: c, id: id}
			c.coord.set(stateActive)
			return r, nil

		case stateActive, stateMutating:
			return nil, errors.ErrAlreadyActive

		default:
			c.coord.await(func(s sessionState) bool {
				return s != stateStarting && s != stateStopping
			})
		}
	}
}

// IsActive reports whether a capture session currently exists, including
// one that is still starting or tearing down.
func (c *client) IsActive() bool {
	return c.coord.current() != stateIdle
}

// beginEpisode installs the hooks, registers the first handler and spawns
// the dispatcher. The caller holds the starting state and is responsible
// for the transition out of it.
func (c *client) beginEpisode(handler events.Handler) (uint64, error) {
	logger := logging.WithEpisode(c.config.logger, uuid.NewString())

	session, err := capture.Start(c.config.installer, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Capture session failed to start")
		return 0, err
	}

	reg := newRegistry()
	id := reg.insert(handler)

	disp := newDispatcher(session.Events(), reg, c.coord, logger, c.config.pollInterval)
	go disp.run()

	c.mu.Lock()
	c.reg = reg
	c.session = session
	c.disp = disp
	c.logger = logger
	c.mu.Unlock()

	logger.Info().Uint64("subscriber", id).Msg("Capture session started")
	return id, nil
}

// unsubscribe detaches the handler with the given id. The last handler to
// leave tears the episode down: stop the dispatcher, uninstall the hooks,
// drop the registry, and only then return. On return the client is ready
// for a fresh episode.
func (c *client) unsubscribe(id uint64) error {
	for {
		s := c.coord.current()
		if s == stateIdle {
			return errors.ErrNotSubscribed
		}
		if s == stateActive && c.coord.cas(stateActive, stateMutating) {
			break
		}
		c.coord.await(func(s sessionState) bool {
			return s == stateIdle || s == stateActive
		})
	}

	c.mu.Lock()
	reg, session, disp, logger := c.reg, c.session, c.disp, c.logger
	c.mu.Unlock()

	if !reg.remove(id) {
		c.coord.set(stateActive)
		return errors.ErrNotSubscribed
	}
	logger.Debug().Uint64("subscriber", id).Msg("Handler unsubscribed")

	if !reg.isEmpty() {
		c.coord.set(stateActive)
		return nil
	}

	// Last one out. The dispatcher observes the stopping state within one
	// poll interval and exits; the hooks come out after it is gone so no
	// handler invocation can race the teardown.
	c.coord.set(stateStopping)
	<-disp.done
	err := session.Stop()

	c.mu.Lock()
	c.reg, c.session, c.disp = nil, nil, nil
	c.mu.Unlock()

	c.coord.set(stateIdle)
	logger.Info().Msg("Capture session stopped")
	return err
}
