// Package config groups the configuration surfaces consumed once at
// construction time: pipeline, performance monitoring, and the middleware
// chain. Validation returns structured field errors so callers can fix
// configuration without guesswork.
package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	rlerrors "github.com/rpclog/rpclog/internal/runtime/errors"
	"github.com/rpclog/rpclog/pipeline"
)

// PerformanceConfig tunes the performance monitor. A disabled monitor hands
// out degenerate metrics objects and End becomes a no-op.
type PerformanceConfig struct {
	Enabled bool

	// LogSlowQueries promotes completions slower than SlowQueryThreshold
	// from debug to warn.
	LogSlowQueries     bool
	SlowQueryThreshold time.Duration

	// LogInputOutput captures the procedure input at Start and output at End.
	LogInputOutput bool

	// LogMemoryUsage snapshots runtime memory at Start and logs the delta at End.
	LogMemoryUsage bool

	// MetricsEnabled registers Prometheus collectors (duration histogram,
	// slow-call and error counters) with Registerer.
	MetricsEnabled bool
	// Registerer defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// WithDefaults fills zero values the way the monitor expects them.
func (c PerformanceConfig) WithDefaults() PerformanceConfig {
	if c.SlowQueryThreshold <= 0 {
		c.SlowQueryThreshold = 500 * time.Millisecond
	}
	if c.Registerer == nil {
		c.Registerer = prometheus.DefaultRegisterer
	}
	return c
}

// KeyFunc derives a rate-limit key from the request context.
type KeyFunc func(ctx context.Context) string

// RateLimitConfig tunes the fixed-window rate limiter. State is
// process-local and best-effort; it is not a hard quota.
type RateLimitConfig struct {
	// MaxRequests is the allowance per key per window.
	MaxRequests int `validate:"min=1"`
	// Window is the fixed window length.
	Window time.Duration
	// Key overrides the default key derivation (user ID, then request ID,
	// then the "anonymous" sentinel).
	Key KeyFunc
}

// WithDefaults fills zero values.
func (c RateLimitConfig) WithDefaults() RateLimitConfig {
	if c.MaxRequests <= 0 {
		c.MaxRequests = 100
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	return c
}

// ErrorLoggingConfig controls which error categories the error-handling
// middleware logs. The original error is always re-returned regardless.
type ErrorLoggingConfig struct {
	LogValidationErrors bool
	LogAuthErrors       bool
	LogGenericErrors    bool
	// Classifier defaults to errors.Classify.
	Classifier rlerrors.Classifier
}

// LoggingConfig controls what the logging middleware records around a call.
type LoggingConfig struct {
	LogInput    bool
	LogOutput   bool
	LogDuration bool
}

// MiddlewareConfig gates and tunes the comprehensive middleware chain. The
// chain order is fixed: logging, error handling, rate limiting, performance,
// auth logging.
type MiddlewareConfig struct {
	EnableLogging bool
	Logging       LoggingConfig

	EnableErrorHandling bool
	ErrorLogging        ErrorLoggingConfig

	EnableRateLimit bool
	RateLimit       RateLimitConfig

	EnablePerformance bool
	Performance       PerformanceConfig

	EnableAuthLogging bool
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidatePipeline checks a pipeline config and smoke-tests every formatter
// and transport against synthetic arguments, so broken adapters surface at
// construction time instead of on the first real log call. Returns a
// *errors.ConfigValidationError aggregating every failure, or nil.
func ValidatePipeline(cfg *pipeline.Config) error {
	if cfg == nil {
		return rlerrors.ErrConfigRequired
	}

	var fields []rlerrors.FieldError
	if len(cfg.Entries) == 0 {
		fields = append(fields, rlerrors.FieldError{
			Field: "Entries", Message: "at least one pipeline entry is required", Value: cfg.Entries,
		})
	}
	if cfg.DefaultLevel != "" && !cfg.DefaultLevel.Valid() {
		fields = append(fields, rlerrors.FieldError{
			Field: "DefaultLevel", Message: "unknown level", Value: string(cfg.DefaultLevel),
		})
	}

	for i, e := range cfg.Entries {
		prefix := fmt.Sprintf("Entries[%d]", i)
		if e.Name == "" {
			fields = append(fields, rlerrors.FieldError{
				Field: prefix + ".Name", Message: "is required", Value: e.Name,
			})
		}
		if e.Level != "" && !e.Level.Valid() {
			fields = append(fields, rlerrors.FieldError{
				Field: prefix + ".Level", Message: "unknown level", Value: string(e.Level),
			})
		}
		if e.Transport == nil {
			fields = append(fields, rlerrors.FieldError{
				Field: prefix + ".Transport", Message: "is required", Value: nil,
			})
			continue
		}
		fields = append(fields, smokeTest(prefix, e)...)
	}

	return rlerrors.NewConfigValidationError(fields)
}

// smokeTest exercises the entry's formatter and transport with synthetic
// arguments, converting panics into field errors. This is a liveness probe,
// not an exhaustive test; transports will observe one synthetic line.
func smokeTest(prefix string, e pipeline.Entry) (fields []rlerrors.FieldError) {
	synthetic := pipeline.Fields{"smoke_test": true}

	text := pipeline.FallbackFormat(e.EffectiveLevel(pipeline.DefaultLevel), "config.validate", "smoke test")
	if e.Format != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					fields = append(fields, rlerrors.FieldError{
						Field: prefix + ".Format", Message: fmt.Sprintf("formatter panicked: %v", r), Value: e.Name,
					})
				}
			}()
			text = e.Format("config.validate", "smoke test", synthetic)
		}()
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				fields = append(fields, rlerrors.FieldError{
					Field: prefix + ".Transport", Message: fmt.Sprintf("transport panicked: %v", r), Value: e.Name,
				})
			}
		}()
		e.Transport("config.validate", text, synthetic)
	}()

	return fields
}

// ValidatePerformance checks a performance config.
func ValidatePerformance(cfg *PerformanceConfig) error {
	if cfg == nil {
		return rlerrors.ErrConfigRequired
	}
	var fields []rlerrors.FieldError
	if cfg.SlowQueryThreshold < 0 {
		fields = append(fields, rlerrors.FieldError{
			Field: "SlowQueryThreshold", Message: "cannot be negative", Value: cfg.SlowQueryThreshold,
		})
	}
	return rlerrors.NewConfigValidationError(fields)
}

// ValidateMiddleware checks a middleware config, descending only into the
// sections that are enabled.
func ValidateMiddleware(cfg *MiddlewareConfig) error {
	if cfg == nil {
		return rlerrors.ErrConfigRequired
	}
	var fields []rlerrors.FieldError

	if cfg.EnableRateLimit {
		if err := structValidator().Struct(cfg.RateLimit); err != nil {
			if verrs, ok := err.(validator.ValidationErrors); ok {
				for _, v := range verrs {
					fields = append(fields, rlerrors.FieldError{
						Field:   "RateLimit." + v.StructField(),
						Message: fmt.Sprintf("failed %q validation", v.Tag()),
						Value:   v.Value(),
					})
				}
			} else {
				return err
			}
		}
		if cfg.RateLimit.Window < 0 {
			fields = append(fields, rlerrors.FieldError{
				Field: "RateLimit.Window", Message: "cannot be negative", Value: cfg.RateLimit.Window,
			})
		}
	}

	if cfg.EnablePerformance {
		if cfg.Performance.SlowQueryThreshold < 0 {
			fields = append(fields, rlerrors.FieldError{
				Field: "Performance.SlowQueryThreshold", Message: "cannot be negative", Value: cfg.Performance.SlowQueryThreshold,
			})
		}
	}

	return rlerrors.NewConfigValidationError(fields)
}
