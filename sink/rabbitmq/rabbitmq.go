// Package rabbitmq provides a sink publishing log payloads over AMQP.
package rabbitmq

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/v3/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/rpclog/rpclog/pipeline"
	"github.com/rpclog/rpclog/sink"
)

// SinkName is the name used to register this backend.
const SinkName = "rabbitmq"

// PublisherFactory allows overriding publisher creation for testing.
var PublisherFactory = func(cfg amqp.Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return amqp.NewPublisher(cfg, logger)
}

func init() {
	sink.Register(SinkName, Build)
}

// Build creates a RabbitMQ sink using a durable pub/sub topology keyed by
// topic name.
func Build(ctx context.Context, cfg sink.Config, logger watermill.LoggerAdapter) (pipeline.Sink, error) {
	url := cfg.GetRabbitMQURL()
	if url == "" {
		return nil, fmt.Errorf("rabbitmq: URL is required")
	}

	amqpConfig := amqp.NewDurablePubSubConfig(url, amqp.GenerateQueueNameTopicName)
	publisher, err := PublisherFactory(amqpConfig, logger)
	if err != nil {
		return nil, err
	}

	return sink.NewPublisher(publisher, cfg.GetTopic()), nil
}
