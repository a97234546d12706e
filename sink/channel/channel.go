// Package channel provides an in-memory sink backed by watermill's
// gochannel pub/sub. Useful for testing and local development: subscribe to
// the returned pub/sub to observe published log payloads.
package channel

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/rpclog/rpclog/pipeline"
	"github.com/rpclog/rpclog/sink"
)

// SinkName is the name used to register this backend.
const SinkName = "channel"

func init() {
	sink.Register(SinkName, Build)
}

// Build creates an in-memory sink. The underlying pub/sub is not reachable
// through the registry path; use New when the subscriber side matters.
func Build(ctx context.Context, cfg sink.Config, logger watermill.LoggerAdapter) (pipeline.Sink, error) {
	s, _ := New(cfg.GetTopic(), logger)
	return s, nil
}

// New creates an in-memory sink and returns the gochannel pub/sub it
// publishes to, so tests can subscribe to the topic.
func New(topic string, logger watermill.LoggerAdapter) (pipeline.Sink, *gochannel.GoChannel) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, logger)
	return sink.NewPublisher(pubSub, topic), pubSub
}
