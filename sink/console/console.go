// Package console provides a sink writing one line per log call to stdout
// or stderr.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/rpclog/rpclog/pipeline"
	"github.com/rpclog/rpclog/sink"
)

// SinkName is the name used to register this backend.
const SinkName = "console"

func init() {
	sink.Register(SinkName, Build)
}

// Build creates a console sink. The config's ConsoleTarget selects "stdout"
// (default) or "stderr".
func Build(ctx context.Context, cfg sink.Config, logger watermill.LoggerAdapter) (pipeline.Sink, error) {
	switch cfg.GetConsoleTarget() {
	case "", "stdout":
		return New(os.Stdout), nil
	case "stderr":
		return New(os.Stderr), nil
	default:
		return nil, fmt.Errorf("console: unknown target %q", cfg.GetConsoleTarget())
	}
}

// New writes each formatted line to w, serialised so concurrent fire-and-
// forget dispatches do not interleave. Write errors are dropped.
func New(w io.Writer) pipeline.Sink {
	var mu sync.Mutex
	return func(scope, message string, fields pipeline.Fields) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = fmt.Fprintln(w, message)
	}
}
