package runtime

import (
	"context"

	"github.com/rpclog/rpclog/internal/runtime/logging"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	userIDKey
	requestIDKey
)

// NewLoggerContext merges a logger handle into the context visible to
// downstream stages and the final handler.
func NewLoggerContext(ctx context.Context, handle *logging.Handle) context.Context {
	return context.WithValue(ctx, loggerKey, handle)
}

// LoggerFromContext returns the bound handle, or nil when the procedure has
// no logging configured. A nil handle is safe to call; middleware treats its
// absence as "logging disabled", never as an error.
func LoggerFromContext(ctx context.Context) *logging.Handle {
	if h, ok := ctx.Value(loggerKey).(*logging.Handle); ok {
		return h
	}
	return nil
}

// WithUserID records the authenticated caller for auth logging and rate-limit
// key derivation.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the caller identity, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithRequestID attaches a request identifier.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request identifier, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}
