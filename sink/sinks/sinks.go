// Package sinks imports all built-in sink backends for auto-registration.
// Import this package to have all backends registered with the default registry.
package sinks

import (
	// Import all backends for side-effect registration
	_ "github.com/rpclog/rpclog/sink/channel"
	_ "github.com/rpclog/rpclog/sink/console"
	_ "github.com/rpclog/rpclog/sink/file"
	_ "github.com/rpclog/rpclog/sink/http"
	_ "github.com/rpclog/rpclog/sink/kafka"
	_ "github.com/rpclog/rpclog/sink/nats"
	_ "github.com/rpclog/rpclog/sink/rabbitmq"
)
