// Package zerolog adapts a zerolog logger into a sink. Pipeline entries are
// pinned to a single routing tag, so each adapter emits at one fixed zerolog
// level chosen at construction.
package zerolog

import (
	"github.com/rs/zerolog"

	"github.com/rpclog/rpclog/pipeline"
)

// New returns a sink writing through zl at the zerolog level matching the
// given routing tag. Fields are attached as structured key/value pairs; the
// scope lands in the "scope" field.
func New(zl zerolog.Logger, level pipeline.Level) pipeline.Sink {
	return func(scope, message string, fields pipeline.Fields) {
		event := eventFor(zl, level)
		if event == nil {
			return
		}
		if scope != "" {
			event = event.Str("scope", scope)
		}
		for k, v := range fields {
			event = event.Interface(k, v)
		}
		event.Msg(message)
	}
}

func eventFor(zl zerolog.Logger, level pipeline.Level) *zerolog.Event {
	switch level {
	case pipeline.LevelError:
		return zl.Error()
	case pipeline.LevelWarn:
		return zl.Warn()
	case pipeline.LevelDebug:
		return zl.Debug()
	default:
		return zl.Info()
	}
}
