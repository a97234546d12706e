// Package logging provides the per-call-site logger handle. A handle closes
// over a pipeline router and a scope name; it is created when a scope is
// bound and never mutated afterwards.
package logging

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/rpclog/rpclog/pipeline"
)

// Handle exposes one leveled logging method per routing tag. All methods are
// safe on a nil receiver: middleware running against a procedure without
// logging configured simply no-ops.
type Handle struct {
	scope  string
	router *pipeline.Router
}

// NewHandle binds a scope name to a router. The router (and the config
// behind it) is shared by reference; only the scope differs between handles.
func NewHandle(router *pipeline.Router, scope string) *Handle {
	return &Handle{scope: scope, router: router}
}

// Scope returns the call-site name this handle was bound to.
func (h *Handle) Scope() string {
	if h == nil {
		return ""
	}
	return h.scope
}

func (h *Handle) Error(msg string, fields pipeline.Fields) {
	h.dispatch(pipeline.LevelError, msg, fields)
}

func (h *Handle) Warn(msg string, fields pipeline.Fields) {
	h.dispatch(pipeline.LevelWarn, msg, fields)
}

func (h *Handle) Info(msg string, fields pipeline.Fields) {
	h.dispatch(pipeline.LevelInfo, msg, fields)
}

func (h *Handle) Debug(msg string, fields pipeline.Fields) {
	h.dispatch(pipeline.LevelDebug, msg, fields)
}

func (h *Handle) dispatch(level pipeline.Level, msg string, fields pipeline.Fields) {
	if h == nil || h.router == nil {
		return
	}
	h.router.Dispatch(level, h.scope, msg, fields)
}

type watermillAdapter struct {
	handle *Handle
	fields pipeline.Fields
}

// NewWatermillAdapter bridges a Handle into a watermill.LoggerAdapter so the
// watermill-backed sink publishers log through the same pipeline as
// everything else. Trace calls map to the debug tag.
func NewWatermillAdapter(handle *Handle) watermill.LoggerAdapter {
	return &watermillAdapter{handle: handle}
}

func (a *watermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	merged := a.merge(fields)
	if err != nil {
		if merged == nil {
			merged = pipeline.Fields{}
		}
		merged["error"] = err.Error()
	}
	a.handle.Error(msg, merged)
}

func (a *watermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.handle.Info(msg, a.merge(fields))
}

func (a *watermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.handle.Debug(msg, a.merge(fields))
}

func (a *watermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.handle.Debug(msg, a.merge(fields))
}

func (a *watermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillAdapter{handle: a.handle, fields: a.merge(fields)}
}

func (a *watermillAdapter) merge(fields watermill.LogFields) pipeline.Fields {
	if len(a.fields) == 0 && len(fields) == 0 {
		return nil
	}
	merged := make(pipeline.Fields, len(a.fields)+len(fields))
	for k, v := range a.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}
