package winput

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/gymore-io/winput/internal/hook"
	"github.com/gymore-io/winput/pkg/errors"
	"github.com/gymore-io/winput/pkg/logging"
)

// Option is a function that configures a Client instance
type Option func(*config) error

// config holds the runtime configuration for a client.
type config struct {
	logger       *zerolog.Logger
	installer    hook.Installer
	pollInterval time.Duration
}

// defaultConfig returns the configuration used when no options are given.
func defaultConfig() *config {
	return &config{
		logger:       logging.Default(),
		installer:    hook.Default(),
		pollInterval: 10 * time.Millisecond,
	}
}

// WithLogger configures the logger used for lifecycle and dispatch events.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithInstaller configures the low-level hook installer. The default
// installer captures real OS input; tests supply their own.
func WithInstaller(installer hook.Installer) Option {
	return func(c *config) error {
		if installer == nil {
			return errors.New("installer must not be nil")
		}
		c.installer = installer
		return nil
	}
}

// WithPollInterval configures how often the dispatcher wakes to check
// for shutdown while waiting for events.
func WithPollInterval(interval time.Duration) Option {
	return func(c *config) error {
		if interval <= 0 {
			return errors.New("poll interval must be positive")
		}
		c.pollInterval = interval
		return nil
	}
}

// options applies the given options to the client's configuration.
func (c *client) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c.config); err != nil {
			return err
		}
	}
	return nil
}
