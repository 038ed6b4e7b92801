package middleware

import (
	"context"
	"fmt"

	"github.com/forgekit/forge/commonerrors"
	"github.com/forgekit/forge/foundry"
	"github.com/forgekit/forge/operation"
)

type errorSnapshotMiddleware struct{}

func (m *errorSnapshotMiddleware) Execute(ctx context.Context, op operation.Operation, f *foundry.Foundry, input any, next foundry.Next) (any, error) {
	output, err := next(ctx, input)
	if err != nil && commonerrors.None(err, commonerrors.ErrCancelled) {
		f.SetProperty(KeyLastError, err)
		f.SetProperty(KeyLastErrorMessage, err.Error())
		f.SetProperty(KeyLastErrorType, fmt.Sprintf("%T", err))
		f.SetProperty(KeyLastErrorOperation, op.Name())
	}
	return output, err
}

// ErrorSnapshot returns middleware recording the last operation failure in
// the property map so later steps, compensations or subscribers can inspect
// it. Cancellations are not snapshotted.
func ErrorSnapshot() foundry.Middleware {
	return &errorSnapshotMiddleware{}
}
