package middleware

import (
	"context"
	"time"

	"github.com/forgekit/forge/foundry"
	"github.com/forgekit/forge/operation"
)

type timingMiddleware struct{}

func (m *timingMiddleware) Execute(ctx context.Context, op operation.Operation, f *foundry.Foundry, input any, next foundry.Next) (any, error) {
	start := time.Now()
	output, err := next(ctx, input)
	index, pErr := f.IntProperty(foundry.KeyStepIndex)
	if pErr != nil {
		index = 0
	}
	f.SetProperty(OperationElapsedKey(index, op.Name()), time.Since(start))
	return output, err
}

// Timing returns middleware recording each operation's wall-clock duration
// in the property map, keyed by step index and name. Failed operations are
// timed too.
func Timing() foundry.Middleware {
	return &timingMiddleware{}
}
