package logging

import (
	"context"

	"github.com/charmbracelet/log"
)

// ctxKey keeps the logger entry private to this package.
type ctxKey struct{}

// WithLogger attaches a logger to the context handed down to the
// runner's workers.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger attached by WithLogger, or the
// process-wide default when none is attached.
func FromContext(ctx context.Context) *log.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(ctxKey{}).(*log.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}
