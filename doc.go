// Package rpclog is a structured logging pipeline and middleware layer for
// RPC-style procedure frameworks. It routes log calls to destination sinks by
// exact level match, hands each procedure a call-site logger through
// functional rebinding, and composes cross-cutting middleware for logging,
// error classification, rate limiting, performance monitoring, and auth
// visibility.
//
// A pipeline Config holds destination entries; each entry pins a routing
// level, an optional formatter, and a transport sink. NewBinder validates the
// config, builds the router, and returns a Binder. Bind derives a scoped
// LoggerHandle per call site along with a fresh Binder whose middleware
// injects that handle into the request context:
//
//	logger, binder := binder.Bind("user.create")
//	handler, _ := binder.Handler(createUser)
//
// # Levels
//
// Levels are routing tags, not a severity threshold. An entry pinned to
// "error" receives only error calls; an entry pinned to "info" receives only
// info calls. Fan-out to multiple entries on the same level follows registry
// order.
//
// # Sinks
//
// Sink delivery is fire-and-forget: the router never awaits or guards sink
// execution. Seven backends register themselves with the sink registry
// (console, file, http, kafka, nats, rabbitmq, channel); import the ones you
// use, or the sinks package for all of them:
//
//	import _ "github.com/rpclog/rpclog/sink/sinks"
//
// The Async and Throttled combinators add detached dispatch and rate capping
// around any sink, and the zerolog and slog sub-packages adapt existing
// application loggers.
//
// # Middleware
//
// Middleware is a plain func(next Handler) Handler. Every built-in
// middleware fails open: when the request context carries no LoggerHandle it
// passes straight to next, so procedures outside the pipeline run
// unobserved and unrestricted. DefaultMiddlewares assembles the standard
// chain (logging, error classification, rate limiting, performance, auth)
// from a MiddlewareConfig.
package rpclog
