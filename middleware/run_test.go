package middleware_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/forge/commonerrors"
	"github.com/forgekit/forge/commonerrors/errortest"
	"github.com/forgekit/forge/config"
	"github.com/forgekit/forge/foundry"
	"github.com/forgekit/forge/logs"
	"github.com/forgekit/forge/middleware"
	"github.com/forgekit/forge/operation"
	"github.com/forgekit/forge/smith"
	"github.com/forgekit/forge/workflow"
)

func foundryForTest(t *testing.T) (*foundry.Foundry, error) {
	t.Helper()
	return foundry.New()
}

func TestRunLogging(t *testing.T) {
	loggers, err := logs.NewStringLogger("run-logging-test")
	require.NoError(t, err)

	op, err := operation.New("step", func(ctx context.Context, store operation.Store, input any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	wf, err := workflow.NewBuilder("nightly-sync").Operations(op).Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, wf.Close()) }()

	orchestrator, err := smith.New(nil, loggers, smith.WithWorkflowMiddleware(middleware.RunLogging(loggers)))
	require.NoError(t, err)
	defer func() { require.NoError(t, orchestrator.Close()) }()

	output, err := orchestrator.Run(context.Background(), wf)
	require.NoError(t, err)
	assert.Equal(t, "ok", output)

	content := loggers.GetLogContent()
	assert.Contains(t, content, "workflow nightly-sync@1.0.0 started")
	assert.Contains(t, content, "workflow nightly-sync@1.0.0 completed")
}

func TestRunDeadline_TimesOutTheRun(t *testing.T) {
	slow, err := operation.New("slow", func(ctx context.Context, store operation.Store, input any) (any, error) {
		select {
		case <-ctx.Done():
			return nil, commonerrors.ErrFromContext(ctx)
		case <-time.After(time.Second):
			return nil, nil
		}
	})
	require.NoError(t, err)
	wf, err := workflow.NewBuilder("slow-flow").
		Property(middleware.KeyRunDeadline, 10*time.Millisecond).
		Operations(slow).
		Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, wf.Close()) }()

	orchestrator, err := smith.New(nil, nil, smith.WithWorkflowMiddleware(middleware.RunDeadline()))
	require.NoError(t, err)
	defer func() { require.NoError(t, orchestrator.Close()) }()

	_, err = orchestrator.Run(context.Background(), wf)
	errortest.AssertError(t, err, commonerrors.ErrTimeout)
}

func TestRunDeadline_CallerCancellationIsNotATimeout(t *testing.T) {
	slow, err := operation.New("slow", func(ctx context.Context, store operation.Store, input any) (any, error) {
		select {
		case <-ctx.Done():
			return nil, commonerrors.ErrFromContext(ctx)
		case <-time.After(time.Second):
			return nil, nil
		}
	})
	require.NoError(t, err)
	wf, err := workflow.NewBuilder("cancellable-flow").
		Property(middleware.KeyRunDeadline, time.Minute).
		Operations(slow).
		Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, wf.Close()) }()

	orchestrator, err := smith.New(nil, nil, smith.WithWorkflowMiddleware(middleware.RunDeadline()))
	require.NoError(t, err)
	defer func() { require.NoError(t, orchestrator.Close()) }()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err = orchestrator.Run(ctx, wf)
	errortest.AssertError(t, err, commonerrors.ErrCancelled)
}

func TestRunDeadline_SetsTimedOutFlag(t *testing.T) {
	slow, err := operation.New("slow", func(ctx context.Context, store operation.Store, input any) (any, error) {
		select {
		case <-ctx.Done():
			return nil, commonerrors.ErrFromContext(ctx)
		case <-time.After(time.Second):
			return nil, nil
		}
	})
	require.NoError(t, err)
	wf, err := workflow.NewBuilder("flagged-flow").
		Property(middleware.KeyRunDeadline, 10*time.Millisecond).
		Operations(slow).
		Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, wf.Close()) }()

	f, err := foundryForTest(t)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	orchestrator, err := smith.New(&config.SmithConfiguration{}, nil, smith.WithWorkflowMiddleware(middleware.RunDeadline()))
	require.NoError(t, err)
	defer func() { require.NoError(t, orchestrator.Close()) }()

	_, err = orchestrator.RunWith(context.Background(), wf, f)
	errortest.AssertError(t, err, commonerrors.ErrTimeout)

	timedOut, err := operation.PropertyAs[bool](f, middleware.KeyRunTimedOut)
	require.NoError(t, err)
	assert.True(t, timedOut)
}
