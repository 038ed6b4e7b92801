package foundry

import (
	"context"

	"github.com/forgekit/forge/operation"
)

// Next is the continuation a middleware wraps: calling it runs the rest of
// the chain and finally the operation itself.
type Next func(ctx context.Context, input any) (any, error)

// Middleware wraps a single operation's apply call. Middleware registered
// first sits outermost: observability layers registered before retry layers
// measure total time including retries and observe the errors retries
// ultimately re-raise.
type Middleware interface {
	Execute(ctx context.Context, op operation.Operation, f *Foundry, input any, next Next) (any, error)
}

// MiddlewareFunc adapts a plain function to the Middleware interface.
type MiddlewareFunc func(ctx context.Context, op operation.Operation, f *Foundry, input any, next Next) (any, error)

func (fn MiddlewareFunc) Execute(ctx context.Context, op operation.Operation, f *Foundry, input any, next Next) (any, error) {
	return fn(ctx, op, f, input, next)
}

// chain folds the middleware list into one continuation, from the
// last-registered inward, so the first-registered middleware runs first and
// last around the terminal call.
func chain(middlewares []Middleware, op operation.Operation, f *Foundry, terminal Next) Next {
	next := terminal
	for i := len(middlewares) - 1; i >= 0; i-- {
		mw, inner := middlewares[i], next
		next = func(ctx context.Context, input any) (any, error) {
			return mw.Execute(ctx, op, f, input, inner)
		}
	}
	return next
}
