// Package http provides a sink that POSTs log payloads as JSON to a remote
// collector, built on the watermill HTTP publisher.
package http

import (
	"context"
	"fmt"
	nethttp "net/http"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-http/v2/pkg/http"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/rpclog/rpclog/pipeline"
	"github.com/rpclog/rpclog/sink"
)

// SinkName is the name used to register this backend.
const SinkName = "http"

// PublisherFactory allows overriding publisher creation for testing.
var PublisherFactory = func(cfg http.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return http.NewPublisher(cfg, logger)
}

func init() {
	sink.Register(SinkName, Build)
}

// Build creates an HTTP sink. Payloads are POSTed to publisherURL + topic.
func Build(ctx context.Context, cfg sink.Config, logger watermill.LoggerAdapter) (pipeline.Sink, error) {
	publisherURL := cfg.GetHTTPPublisherURL()
	if publisherURL == "" {
		return nil, fmt.Errorf("http: publisher URL is required")
	}

	publisher, err := PublisherFactory(
		http.PublisherConfig{
			MarshalMessageFunc: func(topic string, msg *message.Message) (*nethttp.Request, error) {
				return http.DefaultMarshalMessageFunc(publisherURL+topic, msg)
			},
		},
		logger,
	)
	if err != nil {
		return nil, err
	}

	return sink.NewPublisher(publisher, cfg.GetTopic()), nil
}
