package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/forgekit/forge/commonerrors"
	"github.com/forgekit/forge/foundry"
	"github.com/forgekit/forge/logs"
	"github.com/forgekit/forge/smith"
	"github.com/forgekit/forge/workflow"
)

type runLoggingMiddleware struct {
	loggers logs.Loggers
}

func (m *runLoggingMiddleware) Execute(ctx context.Context, wf *workflow.Workflow, f *foundry.Foundry, next smith.RunNext) (any, error) {
	m.loggers.Log("workflow ", wf.String(), " started on ", f.String())
	start := time.Now()
	output, err := next(ctx)
	elapsed := time.Since(start)
	if err != nil {
		m.loggers.LogError("workflow ", wf.String(), " failed after ", elapsed, ": ", err.Error())
	} else {
		m.loggers.Log("workflow ", wf.String(), " completed in ", elapsed)
	}
	return output, err
}

// RunLogging returns workflow middleware logging the start and outcome of
// every run.
func RunLogging(loggers logs.Loggers) smith.WorkflowMiddleware {
	if loggers == nil {
		loggers = logs.NewNoopLogger()
	}
	return &runLoggingMiddleware{loggers: loggers}
}

type runDeadlineMiddleware struct{}

func (m *runDeadlineMiddleware) Execute(ctx context.Context, wf *workflow.Workflow, f *foundry.Foundry, next smith.RunNext) (any, error) {
	deadline, err := f.DurationProperty(KeyRunDeadline)
	if err != nil || deadline <= 0 {
		return next(ctx)
	}
	dctx, cancel := context.WithTimeoutCause(ctx, deadline, commonerrors.ErrTimeout)
	defer cancel()
	output, err := next(dctx)
	if err == nil {
		return output, nil
	}
	err = commonerrors.ConvertContextError(err)
	if errors.Is(err, commonerrors.ErrTimeout) && errors.Is(context.Cause(dctx), commonerrors.ErrTimeout) {
		f.SetProperty(KeyRunTimedOut, true)
	}
	return nil, err
}

// RunDeadline returns workflow middleware enforcing the run-level deadline
// override (see KeyRunDeadline), typically carried as a workflow property. A
// run stopped by this deadline fails with ErrTimeout and KeyRunTimedOut is
// set, so callers can tell a timed-out run apart from one they cancelled.
func RunDeadline() smith.WorkflowMiddleware {
	return &runDeadlineMiddleware{}
}
