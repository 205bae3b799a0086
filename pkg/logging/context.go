package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

// loggerKey is the context key for the logger.
const loggerKey contextKey = iota

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}

	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}

	return Default()
}

// WithEpisode returns a child logger carrying the capture-episode id.
func WithEpisode(logger *zerolog.Logger, episode string) zerolog.Logger {
	return logger.With().Str("episode", episode).Logger()
}

// WithSubscriber returns a child logger carrying a subscriber id.
func WithSubscriber(logger *zerolog.Logger, id uint64) zerolog.Logger {
	return logger.With().Uint64("subscriber", id).Logger()
}

// WithHook returns a child logger carrying a hook kind ("keyboard", "mouse").
func WithHook(logger *zerolog.Logger, hook string) zerolog.Logger {
	return logger.With().Str("hook", hook).Logger()
}
