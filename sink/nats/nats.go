// Package nats provides a sink publishing log payloads to a NATS subject.
package nats

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/rpclog/rpclog/pipeline"
	"github.com/rpclog/rpclog/sink"
)

// SinkName is the name used to register this backend.
const SinkName = "nats"

// PublisherFactory allows overriding publisher creation for testing.
var PublisherFactory = func(cfg nats.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return nats.NewPublisher(cfg, logger)
}

func init() {
	sink.Register(SinkName, Build)
}

// Build creates a NATS sink from the config's URL and topic.
func Build(ctx context.Context, cfg sink.Config, logger watermill.LoggerAdapter) (pipeline.Sink, error) {
	url := cfg.GetNATSURL()
	if url == "" {
		return nil, fmt.Errorf("nats: URL is required")
	}

	publisher, err := PublisherFactory(
		nats.PublisherConfig{
			URL:       url,
			Marshaler: &nats.NATSMarshaler{},
			NatsOptions: []natsgo.Option{
				natsgo.Name("rpclog"),
				natsgo.RetryOnFailedConnect(true),
			},
		},
		logger,
	)
	if err != nil {
		return nil, err
	}

	return sink.NewPublisher(publisher, cfg.GetTopic()), nil
}
