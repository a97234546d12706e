package runtime

import "context"

// CallType mirrors the kinds of procedures an RPC builder exposes.
type CallType string

const (
	CallTypeQuery        CallType = "query"
	CallTypeMutation     CallType = "mutation"
	CallTypeSubscription CallType = "subscription"
)

// Call describes one procedure invocation as seen by middleware.
type Call struct {
	Path  string
	Type  CallType
	Input any
}

// Handler processes a call and produces its result. Context overrides flow
// downstream through the ctx argument.
type Handler func(ctx context.Context, call *Call) (any, error)

// Middleware wraps a handler, observing or short-circuiting the call. The
// outermost middleware sees raw input and errors first; the innermost sees
// the state closest to business logic.
type Middleware func(next Handler) Handler

// Chain folds independent middlewares into one. The first argument becomes
// the outermost stage; Chain() is the identity middleware. Composition is
// explicit so ordering never depends on a host framework.
func Chain(middlewares ...Middleware) Middleware {
	return func(final Handler) Handler {
		h := final
		for i := len(middlewares) - 1; i >= 0; i-- {
			if middlewares[i] == nil {
				continue
			}
			h = middlewares[i](h)
		}
		return h
	}
}
