// Package file provides a rotating-file sink backed by lumberjack.
package file

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rpclog/rpclog/pipeline"
	"github.com/rpclog/rpclog/sink"
)

// SinkName is the name used to register this backend.
const SinkName = "file"

func init() {
	sink.Register(SinkName, Build)
}

// Build creates a rotating file sink from the config's file settings.
func Build(ctx context.Context, cfg sink.Config, logger watermill.LoggerAdapter) (pipeline.Sink, error) {
	if cfg.GetFilePath() == "" {
		return nil, fmt.Errorf("file: path is required")
	}
	return New(cfg.GetFilePath(), cfg.GetFileMaxSizeMB(), cfg.GetFileMaxBackups(), cfg.GetFileMaxAgeDays()), nil
}

// New appends one line per log call to path, rotating by size, backup count
// and age. Zero values keep lumberjack's defaults. Write errors are dropped.
func New(path string, maxSizeMB, maxBackups, maxAgeDays int) pipeline.Sink {
	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	var mu sync.Mutex
	return func(scope, message string, fields pipeline.Fields) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = fmt.Fprintln(writer, message)
	}
}
