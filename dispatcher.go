package winput

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/gymore-io/winput/internal/equeue"
	"github.com/gymore-io/winput/pkg/events"
)

// dispatcher drains the capture queue on its own goroutine and invokes
// every registered handler for each event, in production order. Between
// events (and at least once per poll interval) it checks whether the
// coordinator asked it to stop.
type dispatcher struct {
	queue  *equeue.Queue
	reg    *registry
	coord  *coordinator
	logger zerolog.Logger
	poll   time.Duration

	// done closes when the loop has fully exited.
	done chan struct{}

	delivered uint64
}

func newDispatcher(queue *equeue.Queue, reg *registry, coord *coordinator, logger zerolog.Logger, poll time.Duration) *dispatcher {
	return &dispatcher{
		queue:  queue,
		reg:    reg,
		coord:  coord,
		logger: logger,
		poll:   poll,
		done:   make(chan struct{}),
	}
}

// run is the dispatch loop. Handler invocation is synchronous: a slow
// handler delays delivery to every other handler and to later events.
func (d *dispatcher) run() {
	defer close(d.done)

	for {
		e, ok := d.queue.PopTimeout(d.poll)
		if ok {
			d.reg.forEach(func(_ uint64, h events.Handler) {
				h.HandleEvent(e)
			})
			d.delivered++
		}

		if d.coord.current() == stateStopping {
			d.logger.Debug().Uint64("delivered", d.delivered).Msg("Dispatcher stopping")
			return
		}

		if !ok && d.queue.Closed() {
			// The capture side closed the stream while the session still
			// claims to be live. Continuing would hand subscribers a
			// desynchronized view of input, so stop here, loudly.
			d.logger.Error().Msg("Event stream closed while session active; dispatcher aborting")
			return
		}
	}
}
