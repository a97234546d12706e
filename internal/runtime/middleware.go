package runtime

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rpclog/rpclog/internal/runtime/config"
	rlerrors "github.com/rpclog/rpclog/internal/runtime/errors"
	"github.com/rpclog/rpclog/internal/runtime/ids"
	"github.com/rpclog/rpclog/pipeline"
)

// Every middleware factory below is fail-open: when the context carries no
// logger handle, the stage proceeds straight to next, so the chain is safe
// to attach to procedures without logging configured.

// LoggingMiddleware logs the call at info on entry and its completion at
// debug (or the failure at error), with input/output/duration gated by cfg.
func LoggingMiddleware(cfg config.LoggingConfig) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, call *Call) (any, error) {
			log := LoggerFromContext(ctx)
			if log == nil {
				return next(ctx, call)
			}

			fields := pipeline.Fields{"path": call.Path, "type": string(call.Type)}
			if cfg.LogInput {
				fields["input"] = call.Input
			}
			log.Info("procedure call", fields)

			start := time.Now()
			out, err := next(ctx, call)

			done := pipeline.Fields{"path": call.Path, "type": string(call.Type)}
			if cfg.LogDuration {
				done["duration_ms"] = time.Since(start).Milliseconds()
			}
			if err != nil {
				done["error"] = err.Error()
				log.Error("procedure error", done)
				return out, err
			}
			if cfg.LogOutput {
				done["output"] = out
			}
			log.Debug("procedure completed", done)
			return out, err
		}
	}
}

// ErrorHandlingMiddleware classifies handler failures and logs the
// categories cfg enables. The original error is always re-returned
// unchanged; this stage never suppresses business-logic failures.
func ErrorHandlingMiddleware(cfg config.ErrorLoggingConfig) Middleware {
	classify := cfg.Classifier
	if classify == nil {
		classify = rlerrors.Classify
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, call *Call) (any, error) {
			log := LoggerFromContext(ctx)
			if log == nil {
				return next(ctx, call)
			}

			out, err := next(ctx, call)
			if err == nil {
				return out, nil
			}

			category := classify(err)
			shouldLog := false
			switch category {
			case rlerrors.CategoryValidation:
				shouldLog = cfg.LogValidationErrors
			case rlerrors.CategoryAuth:
				shouldLog = cfg.LogAuthErrors
			default:
				shouldLog = cfg.LogGenericErrors
			}
			if shouldLog {
				log.Error("procedure error", pipeline.Fields{
					"path":     call.Path,
					"type":     string(call.Type),
					"category": category.String(),
					"error":    err.Error(),
				})
			}
			return out, err
		}
	}
}

// RateLimitMiddleware enforces a fixed request window per client key. The
// counter table belongs to this middleware instance alone; two instances
// never share state. Exceeding the allowance logs a warning and fails the
// call with a RateLimitError.
func RateLimitMiddleware(cfg config.RateLimitConfig) Middleware {
	limiter := newRateLimiter(cfg)
	return func(next Handler) Handler {
		return func(ctx context.Context, call *Call) (any, error) {
			log := LoggerFromContext(ctx)
			if log == nil {
				return next(ctx, call)
			}
			if err := limiter.allow(ctx); err != nil {
				log.Warn("rate limit exceeded", pipeline.Fields{
					"path":  call.Path,
					"key":   limiter.key(ctx),
					"limit": limiter.cfg.MaxRequests,
				})
				return nil, err
			}
			return next(ctx, call)
		}
	}
}

// PerformanceMiddleware times each call through the monitor, rebinding the
// monitor to the request's logger handle so its output lands in the same
// scope as everything else.
func PerformanceMiddleware(monitor *Monitor) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, call *Call) (any, error) {
			log := LoggerFromContext(ctx)
			if log == nil {
				return next(ctx, call)
			}
			m := monitor.WithLogger(log)
			metrics := m.Start(call.Path, call.Input)
			out, err := next(ctx, call)
			m.End(metrics, out, err)
			return out, err
		}
	}
}

// AuthLoggingMiddleware records who invoked the procedure: authenticated
// callers at info, anonymous ones at debug.
func AuthLoggingMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, call *Call) (any, error) {
			log := LoggerFromContext(ctx)
			if log == nil {
				return next(ctx, call)
			}
			if userID, ok := UserIDFromContext(ctx); ok {
				log.Info("authenticated call", pipeline.Fields{"path": call.Path, "user_id": userID})
			} else {
				log.Debug("anonymous call", pipeline.Fields{"path": call.Path})
			}
			return next(ctx, call)
		}
	}
}

// RequestIDMiddleware assigns a ULID request identifier when the context
// does not already carry one.
func RequestIDMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, call *Call) (any, error) {
			if _, ok := RequestIDFromContext(ctx); !ok {
				ctx = WithRequestID(ctx, ids.NewRequestID())
			}
			return next(ctx, call)
		}
	}
}

// TracerMiddleware wraps each call in an OpenTelemetry span carrying the
// procedure path and type.
func TracerMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, call *Call) (any, error) {
			tracer := otel.Tracer("rpclog")
			ctx, span := tracer.Start(ctx, call.Path)
			defer span.End()

			span.SetAttributes(
				attribute.String("rpc.procedure", call.Path),
				attribute.String("rpc.type", string(call.Type)),
			)
			out, err := next(ctx, call)
			if err != nil {
				span.RecordError(err)
			}
			return out, err
		}
	}
}

// RecovererMiddleware converts handler panics into errors so downstream
// observers (and the caller) see a failure instead of a crashed goroutine.
func RecovererMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, call *Call) (out any, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("rpclog: panic in %s: %v", call.Path, r)
				}
			}()
			return next(ctx, call)
		}
	}
}

// DefaultMiddlewares assembles the comprehensive chain in its documented
// fixed order (logging, error handling, rate limiting, performance, auth
// logging), including only the stages cfg enables. Construction fails fast
// on invalid configuration.
func DefaultMiddlewares(cfg *config.MiddlewareConfig) ([]Middleware, error) {
	if err := config.ValidateMiddleware(cfg); err != nil {
		return nil, err
	}

	var middlewares []Middleware
	if cfg.EnableLogging {
		middlewares = append(middlewares, LoggingMiddleware(cfg.Logging))
	}
	if cfg.EnableErrorHandling {
		middlewares = append(middlewares, ErrorHandlingMiddleware(cfg.ErrorLogging))
	}
	if cfg.EnableRateLimit {
		middlewares = append(middlewares, RateLimitMiddleware(cfg.RateLimit))
	}
	if cfg.EnablePerformance {
		perf := cfg.Performance
		perf.Enabled = true
		middlewares = append(middlewares, PerformanceMiddleware(NewMonitor(perf, nil)))
	}
	if cfg.EnableAuthLogging {
		middlewares = append(middlewares, AuthLoggingMiddleware())
	}
	return middlewares, nil
}

// CombinedMiddleware is DefaultMiddlewares folded into a single stage.
func CombinedMiddleware(cfg *config.MiddlewareConfig) (Middleware, error) {
	middlewares, err := DefaultMiddlewares(cfg)
	if err != nil {
		return nil, err
	}
	return Chain(middlewares...), nil
}
