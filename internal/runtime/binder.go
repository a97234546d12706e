package runtime

import (
	"context"

	"github.com/rpclog/rpclog/internal/runtime/config"
	rlerrors "github.com/rpclog/rpclog/internal/runtime/errors"
	"github.com/rpclog/rpclog/internal/runtime/logging"
	"github.com/rpclog/rpclog/pipeline"
)

// Binder attaches logger handles to procedure chains. Binders are immutable:
// Bind and Use return new binders sharing the same router, so configuring a
// nested scope never leaks into outer scopes or other requests.
type Binder struct {
	router      *pipeline.Router
	middlewares []Middleware
}

// NewBinder validates the pipeline config (including the sink/formatter
// smoke test) and constructs a binder over it. The config is treated as
// immutable from here on.
func NewBinder(cfg *pipeline.Config) (*Binder, error) {
	if err := config.ValidatePipeline(cfg); err != nil {
		return nil, err
	}
	router, err := pipeline.NewRouter(cfg)
	if err != nil {
		return nil, err
	}
	return &Binder{router: router}, nil
}

// NewBinderFromRouter wraps an existing router without re-validating its
// config.
func NewBinderFromRouter(router *pipeline.Router) (*Binder, error) {
	if router == nil {
		return nil, rlerrors.ErrRouterRequired
	}
	return &Binder{router: router}, nil
}

// Router exposes the underlying level router, shared by every handle this
// binder produces.
func (b *Binder) Router() *pipeline.Router {
	return b.router
}

// Bind names a logging scope. It returns a fresh handle closing over the
// scope and a new binder whose chain injects that handle into the context of
// downstream stages. Rebinding the same scope yields an independent handle
// with identical output; rebinding a different scope deeper in a chain
// shadows the outer handle for that subtree only.
func (b *Binder) Bind(scope string) (*logging.Handle, *Binder) {
	handle := logging.NewHandle(b.router, scope)
	next := b.Use(func(next Handler) Handler {
		return func(ctx context.Context, call *Call) (any, error) {
			return next(NewLoggerContext(ctx, handle), call)
		}
	})
	return handle, next
}

// Use appends middlewares, returning a new binder. The receiver's chain is
// value-copied, never shared.
func (b *Binder) Use(middlewares ...Middleware) *Binder {
	chain := make([]Middleware, 0, len(b.middlewares)+len(middlewares))
	chain = append(chain, b.middlewares...)
	chain = append(chain, middlewares...)
	return &Binder{router: b.router, middlewares: chain}
}

// Handler composes the so-far chain around the terminal handler.
func (b *Binder) Handler(final Handler) (Handler, error) {
	if final == nil {
		return nil, rlerrors.ErrHandlerRequired
	}
	return Chain(b.middlewares...)(final), nil
}

// Call composes and invokes in one step, for callers that do not keep the
// composed handler around.
func (b *Binder) Call(ctx context.Context, call *Call, final Handler) (any, error) {
	h, err := b.Handler(final)
	if err != nil {
		return nil, err
	}
	return h(ctx, call)
}
