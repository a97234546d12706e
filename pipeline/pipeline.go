// Package pipeline defines the log pipeline registry and the level router
// that dispatches leveled log calls to configured sinks. Each sink backend
// (console, file, kafka, etc.) lives in its own sub-package of sink/ and
// produces a Sink function satisfying the narrow contract defined here.
package pipeline

import (
	"fmt"
	"strings"
)

// Level is a routing tag for log calls. Levels are exact-match categories,
// not a severity threshold: an entry pinned to LevelError never receives
// info calls, and an entry pinned to LevelInfo never receives error calls.
type Level string

const (
	LevelError Level = "error"
	LevelWarn  Level = "warn"
	LevelInfo  Level = "info"
	LevelDebug Level = "debug"
)

// DefaultLevel is the effective level of entries that do not pin one,
// unless the pipeline config overrides it.
const DefaultLevel = LevelInfo

// Levels lists every valid level in severity order. The order is for
// display only; the router never cascades across levels.
var Levels = []Level{LevelError, LevelWarn, LevelInfo, LevelDebug}

// Valid reports whether l is one of the four known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelError, LevelWarn, LevelInfo, LevelDebug:
		return true
	}
	return false
}

// Fields carries structured key/value metadata attached to a log call.
type Fields map[string]any

// Sink consumes a formatted log line. Sinks may perform I/O and may be
// fire-and-forget; they must contain their own failures. The router does
// not wrap sink invocations in protective error handling.
type Sink func(scope string, message string, fields Fields)

// Formatter turns a log call into display text. Formatters must be pure.
type Formatter func(scope string, message string, fields Fields) string

// Entry binds a named formatter/sink pair to a routing level.
type Entry struct {
	// Name identifies the entry in configuration errors. Required.
	Name string `validate:"required"`

	// Level pins the entry to a routing tag. Empty adopts the config's
	// DefaultLevel at dispatch time; the entry itself is never rewritten.
	Level Level

	// Format overrides the fallback "[LEVEL] [name] message" text.
	Format Formatter

	// Transport receives every formatted line routed to this entry. Required.
	Transport Sink
}

// EffectiveLevel resolves the entry's routing tag against the given default.
func (e Entry) EffectiveLevel(def Level) Level {
	if e.Level != "" {
		return e.Level
	}
	if def != "" {
		return def
	}
	return DefaultLevel
}

// Config describes an ordered set of pipeline entries. It is consumed once
// at router construction and never mutated afterwards; handles bound to
// different scopes share the same Config by reference.
type Config struct {
	Entries      []Entry `validate:"required,min=1"`
	DefaultLevel Level
}

// Router dispatches leveled log calls to the subset of entries whose
// effective level exactly matches the call's level.
type Router struct {
	cfg *Config
}

// NewRouter constructs a router over an already-validated config. It checks
// only the invariants it cannot operate without; use config.ValidatePipeline
// for the full structured validation pass.
func NewRouter(cfg *Config) (*Router, error) {
	if cfg == nil || len(cfg.Entries) == 0 {
		return nil, fmt.Errorf("pipeline: config with at least one entry is required")
	}
	for i, e := range cfg.Entries {
		if e.Transport == nil {
			return nil, fmt.Errorf("pipeline: entry %d (%q) has no transport", i, e.Name)
		}
	}
	return &Router{cfg: cfg}, nil
}

// Config returns the shared configuration the router was built from.
func (r *Router) Config() *Config {
	return r.cfg
}

// Dispatch routes one log call. Matching entries fire in registry order.
// Sink completion is neither awaited nor observed: a sink that spawns its
// own goroutine has no delivery guarantee by the time Dispatch returns.
func (r *Router) Dispatch(level Level, scope, message string, fields Fields) {
	if r == nil {
		return
	}
	def := r.cfg.DefaultLevel
	for _, e := range r.cfg.Entries {
		if e.EffectiveLevel(def) != level {
			continue
		}
		text := FallbackFormat(level, scope, message)
		if e.Format != nil {
			text = e.Format(scope, message, fields)
		}
		e.Transport(scope, text, fields)
	}
}

// FallbackFormat renders the default "[LEVEL] [name] message" line used when
// an entry carries no formatter.
func FallbackFormat(level Level, scope, message string) string {
	return fmt.Sprintf("[%s] [%s] %s", strings.ToUpper(string(level)), scope, message)
}
