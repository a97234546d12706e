// Package sink defines the contract for log sink backends and common sink
// combinators. Each backend (console, file, kafka, etc.) lives in its own
// sub-package and registers itself with the sink registry, following the
// import-what-you-use pattern:
//
//	import _ "github.com/rpclog/rpclog/sink/console"
package sink

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/time/rate"

	"github.com/rpclog/rpclog/internal/runtime/jsoncodec"
	"github.com/rpclog/rpclog/pipeline"
)

// Builder constructs a sink from configuration. Builders that wrap watermill
// publishers receive a logger adapter so broker-level events flow through
// the caller's pipeline.
type Builder func(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (pipeline.Sink, error)

// Config provides the values backends need. The interface keeps backends
// decoupled from any one configuration struct; Options is the stock
// implementation.
type Config interface {
	// GetSinkSystem returns the backend name to build ("console", "file",
	// "http", "kafka", "nats", "rabbitmq", "channel").
	GetSinkSystem() string

	// GetTopic returns the topic or subject published to by broker-backed sinks.
	GetTopic() string

	// Console.
	GetConsoleTarget() string

	// File.
	GetFilePath() string
	GetFileMaxSizeMB() int
	GetFileMaxBackups() int
	GetFileMaxAgeDays() int

	// HTTP.
	GetHTTPPublisherURL() string

	// Kafka.
	GetKafkaBrokers() []string

	// NATS.
	GetNATSURL() string

	// RabbitMQ.
	GetRabbitMQURL() string
}

// Options is a plain-struct Config.
type Options struct {
	SinkSystem string
	Topic      string

	ConsoleTarget string

	FilePath       string
	FileMaxSizeMB  int
	FileMaxBackups int
	FileMaxAgeDays int

	HTTPPublisherURL string

	KafkaBrokers []string

	NATSURL string

	RabbitMQURL string
}

func (o *Options) GetSinkSystem() string       { return o.SinkSystem }
func (o *Options) GetTopic() string            { return o.Topic }
func (o *Options) GetConsoleTarget() string    { return o.ConsoleTarget }
func (o *Options) GetFilePath() string         { return o.FilePath }
func (o *Options) GetFileMaxSizeMB() int       { return o.FileMaxSizeMB }
func (o *Options) GetFileMaxBackups() int      { return o.FileMaxBackups }
func (o *Options) GetFileMaxAgeDays() int      { return o.FileMaxAgeDays }
func (o *Options) GetHTTPPublisherURL() string { return o.HTTPPublisherURL }
func (o *Options) GetKafkaBrokers() []string   { return o.KafkaBrokers }
func (o *Options) GetNATSURL() string          { return o.NATSURL }
func (o *Options) GetRabbitMQURL() string      { return o.RabbitMQURL }

// Payload is the JSON body published by broker-backed sinks.
type Payload struct {
	Scope   string          `json:"scope,omitempty"`
	Message string          `json:"message"`
	Fields  pipeline.Fields `json:"fields,omitempty"`
	Time    time.Time       `json:"time"`
}

// NewPublisher adapts any watermill publisher into a sink. Publish errors
// are swallowed: delivery is fire-and-forget and sinks own their failures.
func NewPublisher(pub message.Publisher, topic string) pipeline.Sink {
	return func(scope, msg string, fields pipeline.Fields) {
		payload, err := jsoncodec.Marshal(Payload{
			Scope:   scope,
			Message: msg,
			Fields:  fields,
			Time:    time.Now().UTC(),
		})
		if err != nil {
			return
		}
		m := message.NewMessage(watermill.NewUUID(), payload)
		if scope != "" {
			m.Metadata.Set("scope", scope)
		}
		_ = pub.Publish(topic, m)
	}
}

// Async dispatches to the wrapped sink on a detached goroutine, containing
// panics. There is no delivery guarantee by the time the caller returns.
func Async(s pipeline.Sink) pipeline.Sink {
	return func(scope, msg string, fields pipeline.Fields) {
		go func() {
			defer func() {
				_ = recover()
			}()
			s(scope, msg, fields)
		}()
	}
}

// Throttled drops lines beyond the given sustained rate and burst. Dropping
// is silent; the wrapped sink never observes discarded lines.
func Throttled(s pipeline.Sink, perSecond float64, burst int) pipeline.Sink {
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(scope, msg string, fields pipeline.Fields) {
		if !limiter.Allow() {
			return
		}
		s(scope, msg, fields)
	}
}
