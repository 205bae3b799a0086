// Package capture owns one capture session: the installation of the
// keyboard and mouse hooks through a platform backend, the translation of
// raw payloads into domain events on the callback path, and the exactly-once
// removal of both hooks on stop.
package capture

import (
	stderrors "errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gymore-io/winput/internal/equeue"
	"github.com/gymore-io/winput/internal/hook"
	"github.com/gymore-io/winput/pkg/errors"
)

// Session is a running capture session. Events flow from the backend's
// callback thread through the translator into the queue; the dispatcher
// drains the other end.
type Session struct {
	queue  *equeue.Queue
	hooks  []installedHook
	logger zerolog.Logger

	// translator runs only on the backend's callback thread.
	translator hook.Translator

	stopOnce sync.Once

	mu      sync.Mutex
	defect  error
	stopErr error
}

type installedHook struct {
	kind hook.Kind
	h    hook.Hook
}

// Start installs every hook kind through the installer and begins capture.
// If a later hook fails to install, every hook installed earlier in the same
// attempt is uninstalled before the error is returned: a half-installed
// session never leaks.
func Start(installer hook.Installer, logger zerolog.Logger) (*Session, error) {
	s := &Session{
		queue:  equeue.New(),
		logger: logger,
	}

	for _, kind := range hook.Kinds {
		h, err := installer.Install(kind, s.consume)
		if err != nil {
			s.rollback()
			if errors.IsHookInstall(err) || errors.IsUnsupportedPlatform(err) {
				return nil, err
			}
			return nil, errors.WrapHookInstall(kind.String(), err)
		}
		s.hooks = append(s.hooks, installedHook{kind: kind, h: h})
		logger.Debug().Str("hook", kind.String()).Msg("Hook installed")
	}

	return s, nil
}

// Events returns the queue the session produces into.
func (s *Session) Events() *equeue.Queue {
	return s.queue
}

// Err returns the defect that aborted the session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defect
}

// Stop uninstalls both hooks exactly once and closes the queue. Pending
// events stay receivable until drained. Stop is idempotent.
func (s *Session) Stop() error {
	s.stopOnce.Do(func() {
		var errs []error
		for _, ih := range s.hooks {
			if err := ih.h.Uninstall(); err != nil {
				s.logger.Warn().Err(err).Str("hook", ih.kind.String()).Msg("Hook uninstall failed")
				errs = append(errs, err)
			} else {
				s.logger.Debug().Str("hook", ih.kind.String()).Msg("Hook uninstalled")
			}
		}
		s.queue.Close()

		s.mu.Lock()
		s.stopErr = stderrors.Join(errs...)
		s.mu.Unlock()
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopErr
}

// consume is the callback path: translate the raw payload and enqueue the
// resulting events. It runs on the backend's dedicated callback thread and
// never blocks.
//
// A translation failure is a defect in the capture backend, not input. The
// session records it, logs loudly and closes the queue so the consuming side
// stops rather than carrying on with a desynchronized stream.
func (s *Session) consume(raw hook.RawEvent) {
	evs, err := s.translator.Translate(raw)
	if err != nil {
		s.mu.Lock()
		if s.defect == nil {
			s.defect = err
		}
		s.mu.Unlock()

		s.logger.Error().Err(err).Msg("Untranslatable raw payload; aborting capture stream")
		s.queue.Close()
		return
	}

	for _, e := range evs {
		s.queue.Push(e)
	}
}

// rollback uninstalls whatever this attempt managed to install.
func (s *Session) rollback() {
	for _, ih := range s.hooks {
		if err := ih.h.Uninstall(); err != nil {
			s.logger.Warn().Err(err).Str("hook", ih.kind.String()).Msg("Rollback uninstall failed")
		}
	}
	s.hooks = nil
}
