// Package slog adapts a log/slog logger into a sink, for applications that
// already own an slog pipeline and want rpclog lines to join it.
package slog

import (
	"context"
	"log/slog"

	"github.com/rpclog/rpclog/pipeline"
)

var levelMapping = map[pipeline.Level]slog.Level{
	pipeline.LevelError: slog.LevelError,
	pipeline.LevelWarn:  slog.LevelWarn,
	pipeline.LevelInfo:  slog.LevelInfo,
	pipeline.LevelDebug: slog.LevelDebug,
}

// New returns a sink logging through l at the slog level matching the given
// routing tag.
func New(l *slog.Logger, level pipeline.Level) pipeline.Sink {
	slogLevel, ok := levelMapping[level]
	if !ok {
		slogLevel = slog.LevelInfo
	}
	return func(scope, message string, fields pipeline.Fields) {
		attrs := make([]slog.Attr, 0, len(fields)+1)
		if scope != "" {
			attrs = append(attrs, slog.String("scope", scope))
		}
		for k, v := range fields {
			attrs = append(attrs, slog.Any(k, v))
		}
		l.LogAttrs(context.Background(), slogLevel, message, attrs...)
	}
}
