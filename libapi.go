package rpclog

import (
	runtimepkg "github.com/rpclog/rpclog/internal/runtime"
	configpkg "github.com/rpclog/rpclog/internal/runtime/config"
	errspkg "github.com/rpclog/rpclog/internal/runtime/errors"
	jsoncodec "github.com/rpclog/rpclog/internal/runtime/jsoncodec"
	loggingpkg "github.com/rpclog/rpclog/internal/runtime/logging"
	"github.com/rpclog/rpclog/pipeline"
	sinkpkg "github.com/rpclog/rpclog/sink"
)

type (
	// Pipeline configuration and routing
	Level     = pipeline.Level
	Fields    = pipeline.Fields
	Sink      = pipeline.Sink
	Formatter = pipeline.Formatter
	Entry     = pipeline.Entry
	Config    = pipeline.Config
	Router    = pipeline.Router

	// Call-site loggers and functional rebinding
	LoggerHandle = loggingpkg.Handle
	Binder       = runtimepkg.Binder

	// Middleware plumbing
	Call       = runtimepkg.Call
	CallType   = runtimepkg.CallType
	Handler    = runtimepkg.Handler
	Middleware = runtimepkg.Middleware

	// Performance monitoring
	Monitor        = runtimepkg.Monitor
	Metrics        = runtimepkg.Metrics
	MemorySnapshot = runtimepkg.MemorySnapshot

	// Middleware configuration
	MiddlewareConfig   = configpkg.MiddlewareConfig
	LoggingConfig      = configpkg.LoggingConfig
	ErrorLoggingConfig = configpkg.ErrorLoggingConfig
	RateLimitConfig    = configpkg.RateLimitConfig
	PerformanceConfig  = configpkg.PerformanceConfig
	KeyFunc            = configpkg.KeyFunc

	// Errors and classification
	FieldError            = errspkg.FieldError
	ConfigValidationError = errspkg.ConfigValidationError
	RateLimitError        = errspkg.RateLimitError
	ErrorCategory         = errspkg.ErrorCategory
	ErrorClassifier       = errspkg.Classifier
	CodedError            = errspkg.Coded

	// Modular sink backends
	SinkBuilder  = sinkpkg.Builder
	SinkConfig   = sinkpkg.Config
	SinkOptions  = sinkpkg.Options
	SinkRegistry = sinkpkg.Registry
	SinkPayload  = sinkpkg.Payload
)

// Routing levels.
const (
	LevelError = pipeline.LevelError
	LevelWarn  = pipeline.LevelWarn
	LevelInfo  = pipeline.LevelInfo
	LevelDebug = pipeline.LevelDebug

	DefaultLevel = pipeline.DefaultLevel
)

// Call types.
const (
	CallTypeQuery        = runtimepkg.CallTypeQuery
	CallTypeMutation     = runtimepkg.CallTypeMutation
	CallTypeSubscription = runtimepkg.CallTypeSubscription
)

// Error categories.
const (
	CategoryGeneric    = errspkg.CategoryGeneric
	CategoryValidation = errspkg.CategoryValidation
	CategoryAuth       = errspkg.CategoryAuth
)

var (
	// Levels lists every valid routing level.
	Levels = pipeline.Levels

	// Pipeline construction
	NewRouter      = pipeline.NewRouter
	FallbackFormat = pipeline.FallbackFormat

	// Binder construction
	NewBinder           = runtimepkg.NewBinder
	NewBinderFromRouter = runtimepkg.NewBinderFromRouter

	// Call-site loggers
	NewLoggerHandle     = loggingpkg.NewHandle
	NewWatermillAdapter = loggingpkg.NewWatermillAdapter

	// Configuration validation
	ValidatePipeline    = configpkg.ValidatePipeline
	ValidatePerformance = configpkg.ValidatePerformance
	ValidateMiddleware  = configpkg.ValidateMiddleware

	// Middleware composition
	Chain              = runtimepkg.Chain
	DefaultMiddlewares = runtimepkg.DefaultMiddlewares
	CombinedMiddleware = runtimepkg.CombinedMiddleware

	LoggingMiddleware       = runtimepkg.LoggingMiddleware
	ErrorHandlingMiddleware = runtimepkg.ErrorHandlingMiddleware
	RateLimitMiddleware     = runtimepkg.RateLimitMiddleware
	PerformanceMiddleware   = runtimepkg.PerformanceMiddleware
	AuthLoggingMiddleware   = runtimepkg.AuthLoggingMiddleware
	RequestIDMiddleware     = runtimepkg.RequestIDMiddleware
	TracerMiddleware        = runtimepkg.TracerMiddleware
	RecovererMiddleware     = runtimepkg.RecovererMiddleware

	// Performance monitoring
	NewMonitor = runtimepkg.NewMonitor

	// Context plumbing
	NewLoggerContext     = runtimepkg.NewLoggerContext
	LoggerFromContext    = runtimepkg.LoggerFromContext
	WithUserID           = runtimepkg.WithUserID
	UserIDFromContext    = runtimepkg.UserIDFromContext
	WithRequestID        = runtimepkg.WithRequestID
	RequestIDFromContext = runtimepkg.RequestIDFromContext

	// Error helpers
	NewConfigValidationError = errspkg.NewConfigValidationError
	ClassifyError            = errspkg.Classify
	IsRateLimit              = errspkg.IsRateLimit

	ErrConfigRequired    = errspkg.ErrConfigRequired
	ErrRouterRequired    = errspkg.ErrRouterRequired
	ErrHandlerRequired   = errspkg.ErrHandlerRequired
	ErrScopeRequired     = errspkg.ErrScopeRequired
	ErrTransportRequired = errspkg.ErrTransportRequired

	// Modular sink registry
	// Use RegisterSink and BuildSink to work with the modular sink packages.
	// Import individual backends via: _ "github.com/rpclog/rpclog/sink/console"
	DefaultSinkRegistry = sinkpkg.DefaultRegistry
	RegisterSink        = sinkpkg.Register
	BuildSink           = sinkpkg.Build

	// Sink combinators
	NewPublisherSink = sinkpkg.NewPublisher
	AsyncSink        = sinkpkg.Async
	ThrottledSink    = sinkpkg.Throttled

	Marshal       = jsoncodec.Marshal
	MarshalIndent = jsoncodec.MarshalIndent
	Unmarshal     = jsoncodec.Unmarshal
	Encode        = jsoncodec.Encode
	Decode        = jsoncodec.Decode

	// NewRequestID generates a unique request ID using ULID.
	NewRequestID = runtimepkg.NewRequestID
)
