// Package kafka provides a sink publishing log payloads to a Kafka topic.
package kafka

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/rpclog/rpclog/pipeline"
	"github.com/rpclog/rpclog/sink"
)

// SinkName is the name used to register this backend.
const SinkName = "kafka"

// PublisherFactory allows overriding publisher creation for testing.
var PublisherFactory = func(cfg kafka.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return kafka.NewPublisher(cfg, logger)
}

func init() {
	sink.Register(SinkName, Build)
}

// Build creates a Kafka sink from the config's brokers and topic.
func Build(ctx context.Context, cfg sink.Config, logger watermill.LoggerAdapter) (pipeline.Sink, error) {
	brokers := cfg.GetKafkaBrokers()
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: brokers are required")
	}

	publisher, err := PublisherFactory(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		logger,
	)
	if err != nil {
		return nil, err
	}

	return sink.NewPublisher(publisher, cfg.GetTopic()), nil
}
