package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpclog/rpclog/internal/runtime/config"
	rlerrors "github.com/rpclog/rpclog/internal/runtime/errors"
	"github.com/rpclog/rpclog/internal/runtime/logging"
	"github.com/rpclog/rpclog/pipeline"
)

type logged struct {
	level pipeline.Level
	text  string
	scope string
}

// allLevels returns a handle whose router records every call at every level.
func allLevels(t *testing.T, got *[]logged) *logging.Handle {
	t.Helper()
	var entries []pipeline.Entry
	for _, level := range pipeline.Levels {
		level := level
		entries = append(entries, pipeline.Entry{
			Name:  string(level),
			Level: level,
			Transport: func(scope, message string, fields pipeline.Fields) {
				*got = append(*got, logged{level: level, text: message, scope: scope})
			},
		})
	}
	router, err := pipeline.NewRouter(&pipeline.Config{Entries: entries})
	require.NoError(t, err)
	return logging.NewHandle(router, "test.scope")
}

func loggedCtx(t *testing.T, got *[]logged) context.Context {
	t.Helper()
	return NewLoggerContext(context.Background(), allLevels(t, got))
}

func okHandler(out any) Handler {
	return func(ctx context.Context, call *Call) (any, error) { return out, nil }
}

func failHandler(err error) Handler {
	return func(ctx context.Context, call *Call) (any, error) { return nil, err }
}

func TestLoggingMiddleware(t *testing.T) {
	var got []logged
	mw := LoggingMiddleware(config.LoggingConfig{LogInput: true, LogOutput: true, LogDuration: true})

	out, err := mw(okHandler("result"))(loggedCtx(t, &got), &Call{Path: "users.get", Type: CallTypeQuery, Input: 7})
	require.NoError(t, err)
	assert.Equal(t, "result", out)

	require.Len(t, got, 2)
	assert.Equal(t, pipeline.LevelInfo, got[0].level)
	assert.Equal(t, pipeline.LevelDebug, got[1].level)
}

func TestLoggingMiddlewareLogsErrorAtError(t *testing.T) {
	var got []logged
	mw := LoggingMiddleware(config.LoggingConfig{})
	boom := errors.New("boom")

	_, err := mw(failHandler(boom))(loggedCtx(t, &got), &Call{Path: "users.get"})
	assert.Same(t, boom, err)

	require.Len(t, got, 2)
	assert.Equal(t, pipeline.LevelError, got[1].level)
}

func TestMiddlewaresFailOpenWithoutLogger(t *testing.T) {
	monitor := NewMonitor(config.PerformanceConfig{Enabled: true}, nil)
	middlewares := map[string]Middleware{
		"logging":     LoggingMiddleware(config.LoggingConfig{}),
		"errors":      ErrorHandlingMiddleware(config.ErrorLoggingConfig{LogGenericErrors: true}),
		"ratelimit":   RateLimitMiddleware(config.RateLimitConfig{MaxRequests: 1, Window: time.Minute}),
		"performance": PerformanceMiddleware(monitor),
		"auth":        AuthLoggingMiddleware(),
	}
	for name, mw := range middlewares {
		t.Run(name, func(t *testing.T) {
			reached := false
			h := mw(func(ctx context.Context, call *Call) (any, error) {
				reached = true
				return "ok", nil
			})
			// No logger in context: straight to next, even repeatedly for
			// the rate limiter.
			for i := 0; i < 3; i++ {
				out, err := h(context.Background(), &Call{Path: "p"})
				require.NoError(t, err)
				assert.Equal(t, "ok", out)
			}
			assert.True(t, reached)
		})
	}
}

func TestErrorHandlingMiddlewareCategories(t *testing.T) {
	authErr := &codedError{code: "UNAUTHORIZED"}
	validate := validator.New(validator.WithRequiredStructEnabled())
	validationErr := validate.Struct(struct {
		Name string `validate:"required"`
	}{})
	require.Error(t, validationErr)

	tests := []struct {
		name    string
		cfg     config.ErrorLoggingConfig
		err     error
		wantLog bool
	}{
		{"generic logged", config.ErrorLoggingConfig{LogGenericErrors: true}, errors.New("x"), true},
		{"generic muted", config.ErrorLoggingConfig{LogValidationErrors: true, LogAuthErrors: true}, errors.New("x"), false},
		{"auth logged", config.ErrorLoggingConfig{LogAuthErrors: true}, authErr, true},
		{"auth muted", config.ErrorLoggingConfig{LogGenericErrors: true}, authErr, false},
		{"validation logged", config.ErrorLoggingConfig{LogValidationErrors: true}, validationErr, true},
		{"validation muted", config.ErrorLoggingConfig{LogGenericErrors: true}, validationErr, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []logged
			mw := ErrorHandlingMiddleware(tt.cfg)
			_, err := mw(failHandler(tt.err))(loggedCtx(t, &got), &Call{Path: "p"})
			assert.Equal(t, tt.err, err, "original error is always re-returned")
			if tt.wantLog {
				require.Len(t, got, 1)
				assert.Equal(t, pipeline.LevelError, got[0].level)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

type codedError struct{ code string }

func (e *codedError) Error() string     { return e.code }
func (e *codedError) ErrorCode() string { return e.code }

func TestRateLimitMiddlewareWindow(t *testing.T) {
	var got []logged
	ctx := WithUserID(loggedCtx(t, &got), "user-1")

	mw := RateLimitMiddleware(config.RateLimitConfig{MaxRequests: 2, Window: 50 * time.Millisecond})
	h := mw(okHandler("ok"))

	for i := 0; i < 2; i++ {
		_, err := h(ctx, &Call{Path: "p"})
		require.NoError(t, err)
	}

	// Third call within the window fails terminally.
	_, err := h(ctx, &Call{Path: "p"})
	require.Error(t, err)
	var rl *rlerrors.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, "user-1", rl.Key)
	require.NotEmpty(t, got)
	assert.Equal(t, pipeline.LevelWarn, got[len(got)-1].level)

	// A call after the window expires starts a fresh count.
	time.Sleep(60 * time.Millisecond)
	_, err = h(ctx, &Call{Path: "p"})
	assert.NoError(t, err)
}

func TestRateLimitMiddlewareIndependentKeys(t *testing.T) {
	var got []logged
	mw := RateLimitMiddleware(config.RateLimitConfig{MaxRequests: 1, Window: time.Minute})
	h := mw(okHandler(nil))

	_, err := h(WithUserID(loggedCtx(t, &got), "a"), &Call{})
	require.NoError(t, err)
	_, err = h(WithUserID(loggedCtx(t, &got), "b"), &Call{})
	require.NoError(t, err)
	_, err = h(WithUserID(loggedCtx(t, &got), "a"), &Call{})
	assert.True(t, rlerrors.IsRateLimit(err))
}

func TestRateLimitInstancesDoNotShareState(t *testing.T) {
	var got []logged
	ctx := WithUserID(loggedCtx(t, &got), "u")
	cfg := config.RateLimitConfig{MaxRequests: 1, Window: time.Minute}

	h1 := RateLimitMiddleware(cfg)(okHandler(nil))
	h2 := RateLimitMiddleware(cfg)(okHandler(nil))

	_, err := h1(ctx, &Call{})
	require.NoError(t, err)
	_, err = h2(ctx, &Call{})
	assert.NoError(t, err, "separate middleware instances own separate tables")
}

func TestAuthLoggingMiddleware(t *testing.T) {
	var got []logged
	mw := AuthLoggingMiddleware()
	h := mw(okHandler(nil))

	_, err := h(WithUserID(loggedCtx(t, &got), "user-9"), &Call{Path: "p"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, pipeline.LevelInfo, got[0].level)

	got = nil
	_, err = h(loggedCtx(t, &got), &Call{Path: "p"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, pipeline.LevelDebug, got[0].level)
}

func TestRequestIDMiddleware(t *testing.T) {
	h := RequestIDMiddleware()(func(ctx context.Context, call *Call) (any, error) {
		id, ok := RequestIDFromContext(ctx)
		if !ok {
			return nil, errors.New("missing id")
		}
		return id, nil
	})

	out, err := h(context.Background(), &Call{})
	require.NoError(t, err)
	assert.Len(t, out, 26)

	out, err = h(WithRequestID(context.Background(), "fixed"), &Call{})
	require.NoError(t, err)
	assert.Equal(t, "fixed", out, "existing request id is preserved")
}

func TestRecovererMiddleware(t *testing.T) {
	h := RecovererMiddleware()(func(ctx context.Context, call *Call) (any, error) {
		panic("kaboom")
	})
	_, err := h(context.Background(), &Call{Path: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestTracerMiddlewarePassesThrough(t *testing.T) {
	boom := errors.New("boom")
	h := TracerMiddleware()(failHandler(boom))
	_, err := h(context.Background(), &Call{Path: "p", Type: CallTypeMutation})
	assert.Same(t, boom, err)
}

func TestDefaultMiddlewaresGating(t *testing.T) {
	middlewares, err := DefaultMiddlewares(&config.MiddlewareConfig{})
	require.NoError(t, err)
	assert.Empty(t, middlewares)

	middlewares, err = DefaultMiddlewares(&config.MiddlewareConfig{
		EnableLogging:       true,
		EnableErrorHandling: true,
		EnableRateLimit:     true,
		RateLimit:           config.RateLimitConfig{MaxRequests: 10, Window: time.Minute},
		EnablePerformance:   true,
		EnableAuthLogging:   true,
	})
	require.NoError(t, err)
	assert.Len(t, middlewares, 5)
}

func TestDefaultMiddlewaresValidatesConfig(t *testing.T) {
	_, err := DefaultMiddlewares(nil)
	assert.ErrorIs(t, err, rlerrors.ErrConfigRequired)

	_, err = DefaultMiddlewares(&config.MiddlewareConfig{
		EnableRateLimit: true,
		RateLimit:       config.RateLimitConfig{MaxRequests: -1, Window: time.Minute},
	})
	var cfgErr *rlerrors.ConfigValidationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestCombinedMiddlewareRunsInOrder(t *testing.T) {
	var got []logged
	combined, err := CombinedMiddleware(&config.MiddlewareConfig{
		EnableLogging:     true,
		EnableAuthLogging: true,
	})
	require.NoError(t, err)

	ctx := WithUserID(loggedCtx(t, &got), "u")
	_, err = combined(okHandler(nil))(ctx, &Call{Path: "p"})
	require.NoError(t, err)

	// logging (info), auth (info), logging completion (debug)
	require.Len(t, got, 3)
	assert.Equal(t, "procedure call", trimPrefix(got[0].text))
	assert.Equal(t, "authenticated call", trimPrefix(got[1].text))
	assert.Equal(t, "procedure completed", trimPrefix(got[2].text))
}

// trimPrefix strips the "[LEVEL] [scope] " fallback prefix.
func trimPrefix(text string) string {
	for i := 0; i+1 < len(text); i++ {
		if text[i] == ']' && text[i+1] == ' ' {
			rest := text[i+2:]
			if len(rest) > 0 && rest[0] == '[' {
				continue
			}
			return rest
		}
	}
	return text
}
