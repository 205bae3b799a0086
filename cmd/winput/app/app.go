// Package app provides the application context and dependency management
// for the winput CLI. It centralizes configuration, logging, and the capture
// client behind one lazily initialized instance.
package app

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gymore-io/winput"
)

// App represents the winput CLI application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Capture client (lazy-initialized, singleton)
	mu     sync.Mutex
	client winput.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Client returns the capture client, creating it lazily if needed.
func (a *App) Client() (winput.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	c, err := winput.New(winput.WithLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("creating capture client: %w", err)
	}
	a.client = c
	return c, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom capture client (useful for testing).
func WithClient(c winput.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
