package middleware

import (
	"context"
	"errors"

	"github.com/forgekit/forge/commonerrors"
	"github.com/forgekit/forge/foundry"
	"github.com/forgekit/forge/operation"
)

type operationDeadlineMiddleware struct{}

func (m *operationDeadlineMiddleware) Execute(ctx context.Context, op operation.Operation, f *foundry.Foundry, input any, next foundry.Next) (any, error) {
	index, err := f.IntProperty(foundry.KeyStepIndex)
	if err != nil {
		index = 0
	}
	deadline, err := f.DurationProperty(OperationDeadlineKey(index, op.Name()))
	if err != nil || deadline <= 0 {
		return next(ctx, input)
	}
	dctx, cancel := context.WithTimeoutCause(ctx, deadline, commonerrors.ErrTimeout)
	defer cancel()
	output, err := next(dctx, input)
	if err == nil {
		return output, nil
	}
	err = commonerrors.ConvertContextError(err)
	if errors.Is(err, commonerrors.ErrTimeout) && errors.Is(context.Cause(dctx), commonerrors.ErrTimeout) {
		f.SetProperty(KeyRunTimedOut, true)
	}
	return nil, err
}

// OperationDeadline returns middleware enforcing per-operation deadline
// overrides read from the property map (see OperationDeadlineKey). An
// operation stopped by its own deadline fails with ErrTimeout and sets
// KeyRunTimedOut; a caller cancellation still surfaces as ErrCancelled.
func OperationDeadline() foundry.Middleware {
	return &operationDeadlineMiddleware{}
}
