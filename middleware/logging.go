package middleware

import (
	"context"
	"time"

	"github.com/forgekit/forge/commonerrors"
	"github.com/forgekit/forge/foundry"
	"github.com/forgekit/forge/logs"
	"github.com/forgekit/forge/operation"
)

type loggingMiddleware struct {
	loggers logs.Loggers
}

func (m *loggingMiddleware) Execute(ctx context.Context, op operation.Operation, f *foundry.Foundry, input any, next foundry.Next) (any, error) {
	m.loggers.Log("[", f.ExecutionID(), "] operation `", op.Name(), "` started")
	start := time.Now()
	output, err := next(ctx, input)
	elapsed := time.Since(start)
	switch {
	case err == nil:
		m.loggers.Log("[", f.ExecutionID(), "] operation `", op.Name(), "` completed in ", elapsed)
	case commonerrors.Any(err, commonerrors.ErrCancelled):
		m.loggers.Log("[", f.ExecutionID(), "] operation `", op.Name(), "` cancelled after ", elapsed)
	default:
		m.loggers.LogError("[", f.ExecutionID(), "] operation `", op.Name(), "` failed after ", elapsed, ": ", err.Error())
	}
	return output, err
}

// Logging returns middleware logging every operation's start, completion and
// failure. Cancellation is reported as a plain line rather than an error.
func Logging(loggers logs.Loggers) foundry.Middleware {
	if loggers == nil {
		loggers = logs.NewNoopLogger()
	}
	return &loggingMiddleware{loggers: loggers}
}
