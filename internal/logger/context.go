package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// WithContext stores a request-scoped logger in the context.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts the request-scoped logger from the context.
// Returns zap.NewNop() if no logger was attached.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
