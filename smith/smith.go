package smith

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"

	"github.com/forgekit/forge/commonerrors"
	"github.com/forgekit/forge/config"
	"github.com/forgekit/forge/foundry"
	"github.com/forgekit/forge/logs"
	"github.com/forgekit/forge/operation"
	"github.com/forgekit/forge/workflow"
)

// FoundryFactory builds the foundries a smith hands to runs when the caller
// did not supply one and the pool is empty.
type FoundryFactory func() (*foundry.Foundry, error)

// SmithOption configures a smith at construction time.
type SmithOption func(*Smith)

// WithWorkflowMiddleware installs middleware wrapping entire workflow runs.
// Middleware registered first sits outermost.
func WithWorkflowMiddleware(middlewares ...WorkflowMiddleware) SmithOption {
	return func(s *Smith) {
		s.wfMiddlewares = append(s.wfMiddlewares, middlewares...)
	}
}

// WithOperationMiddleware installs middleware on every foundry the smith
// creates. Foundries supplied by the caller keep their own middleware.
func WithOperationMiddleware(middlewares ...foundry.Middleware) SmithOption {
	return func(s *Smith) {
		s.opMiddlewares = append(s.opMiddlewares, middlewares...)
	}
}

// WithFoundryFactory overrides how the smith builds fresh foundries.
func WithFoundryFactory(factory FoundryFactory) SmithOption {
	return func(s *Smith) {
		s.factory = factory
	}
}

// WithStrictCompensation makes a failed run report compensation failures
// alongside the error which triggered them, instead of only logging them.
func WithStrictCompensation() SmithOption {
	return func(s *Smith) {
		s.strict = true
	}
}

// Smith orchestrates workflow runs: it bounds how many may be in flight at
// once, reuses execution contexts through a pool and walks the ledger of a
// failed run backwards to undo whatever had already been applied.
type Smith struct {
	mu            deadlock.RWMutex
	cfg           *config.SmithConfiguration
	loggers       logs.Loggers
	limiter       *semaphore.Weighted
	pool          *foundryPool
	events        *Events
	factory       FoundryFactory
	wfMiddlewares []WorkflowMiddleware
	opMiddlewares []foundry.Middleware
	strict        bool
	closed        *atomic.Bool
}

// New creates a smith from the supplied configuration. A nil configuration
// means defaults; a nil logger set means no logging.
func New(cfg *config.SmithConfiguration, loggers logs.Loggers, opts ...SmithOption) (s *Smith, err error) {
	if cfg == nil {
		cfg = config.DefaultSmithConfiguration()
	}
	if err = cfg.Validate(); err != nil {
		return nil, commonerrors.WrapError(commonerrors.ErrInvalid, err, "invalid smith configuration")
	}
	if loggers == nil {
		loggers = logs.NewNoopLogger()
	}
	s = &Smith{
		cfg:     cfg,
		loggers: loggers,
		pool:    newFoundryPool(cfg.FoundryPoolSize),
		events:  newEvents(loggers),
		strict:  cfg.StrictCompensation,
		closed:  atomic.NewBool(false),
	}
	if cfg.MaxConcurrentRuns > 0 {
		s.limiter = semaphore.NewWeighted(int64(cfg.MaxConcurrentRuns))
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Events gives access to run and compensation subscriptions.
func (s *Smith) Events() *Events {
	return s.events
}

// Use installs workflow middleware after construction. Middleware registered
// first sits outermost.
func (s *Smith) Use(middlewares ...WorkflowMiddleware) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wfMiddlewares = append(s.wfMiddlewares, middlewares...)
}

// Run executes a workflow on a foundry taken from the pool, or a fresh one
// when the pool is empty. It returns the output of the last operation, or
// exactly one error: the failure which stopped the run (augmented with
// compensation failures under strict compensation).
func (s *Smith) Run(ctx context.Context, wf *workflow.Workflow) (any, error) {
	return s.RunWith(ctx, wf, nil)
}

// RunWith executes a workflow on the supplied foundry. The caller keeps
// ownership of it: it is unbound after the run but neither reset, pooled nor
// closed, so its ledger and properties stay inspectable.
func (s *Smith) RunWith(ctx context.Context, wf *workflow.Workflow, f *foundry.Foundry) (output any, err error) {
	if s.closed.Load() {
		return nil, commonerrors.New(commonerrors.ErrClosed, "smith is closed")
	}
	if wf == nil {
		return nil, commonerrors.UndefinedVariable("workflow")
	}
	if wf.IsClosed() {
		return nil, commonerrors.Newf(commonerrors.ErrClosed, "workflow %v is closed", wf)
	}
	if err = commonerrors.ErrFromContext(ctx); err != nil {
		return nil, err
	}
	if s.limiter != nil {
		if err = s.limiter.Acquire(ctx, 1); err != nil {
			return nil, commonerrors.ConvertContextError(err)
		}
		defer s.limiter.Release(1)
	}
	owned := f == nil
	if owned {
		f, err = s.acquireFoundry()
		if err != nil {
			return nil, err
		}
	}
	defer s.releaseFoundry(f, owned)
	return s.runBound(ctx, wf, f)
}

func (s *Smith) runBound(ctx context.Context, wf *workflow.Workflow, f *foundry.Foundry) (any, error) {
	f.Bind(wf)
	defer f.Unbind()

	s.events.notifyRunStarted(wf, f)
	s.loggers.Log("running workflow ", wf.String(), " on ", f.String())
	start := time.Now()

	output, err := s.chainRun(wf, f)(ctx)
	elapsed := time.Since(start)
	if err == nil {
		s.loggers.Log("workflow ", wf.String(), " completed in ", elapsed)
		s.events.notifyRunCompleted(wf, f, elapsed)
		return output, nil
	}

	failedStep, cause := splitFailure(err)
	s.loggers.LogError("workflow ", wf.String(), " failed at step `", failedStep, "`: ", cause.Error())
	s.events.notifyRunFailed(wf, f, failedStep, cause)

	restoreErr := s.compensate(ctx, wf, f, failedStep, cause)
	if restoreErr != nil && s.strict {
		return nil, multierror.Append(cause, restoreErr)
	}
	return nil, cause
}

// chainRun folds the workflow middleware around the foundry run, outermost
// middleware first.
func (s *Smith) chainRun(wf *workflow.Workflow, f *foundry.Foundry) RunNext {
	s.mu.RLock()
	middlewares := make([]WorkflowMiddleware, len(s.wfMiddlewares))
	copy(middlewares, s.wfMiddlewares)
	s.mu.RUnlock()

	next := RunNext(func(ctx context.Context) (any, error) {
		return f.Run(ctx)
	})
	for i := len(middlewares) - 1; i >= 0; i-- {
		middleware := middlewares[i]
		if middleware == nil {
			continue
		}
		inner := next
		next = func(ctx context.Context) (any, error) {
			return middleware.Execute(ctx, wf, f, inner)
		}
	}
	return next
}

// splitFailure recovers the name of the step which stopped the run and the
// error the operation actually returned, so callers never see the internal
// step wrapper.
func splitFailure(err error) (failedStep string, cause error) {
	cause = err
	var opErr *foundry.OperationError
	if errors.As(err, &opErr) {
		failedStep = opErr.OperationName
		cause = opErr.Unwrap()
	}
	return
}

// compensate walks the ledger backwards and invokes each recorded
// operation's compensation with the exact output it produced. Operations
// which do not support compensation are skipped; failures never stop the
// walk. The returned error aggregates every compensation failure, or is nil
// when all of them succeeded or were skipped.
func (s *Smith) compensate(ctx context.Context, wf *workflow.Workflow, f *foundry.Foundry, failedStep string, cause error) error {
	trail := f.Trail()
	s.events.notifyCompensationTriggered(wf, f, failedStep, cause)
	s.loggers.Log("compensating ", len(trail), " operation(s) of workflow ", wf.String())

	var restoreErr *multierror.Error
	succeeded, failed := 0, 0
	for i := len(trail) - 1; i >= 0; i-- {
		record := trail[i]
		s.events.notifyRestoreStarted(record.Operation, f)
		start := time.Now()
		err := record.Operation.Compensate(ctx, f, record.Output)
		switch {
		case err == nil:
			succeeded++
			s.events.notifyRestoreCompleted(record.Operation, f, time.Since(start))
		case errors.Is(err, operation.ErrCompensationUnsupported):
			succeeded++
			s.loggers.Log("operation `", record.Operation.Name(), "` does not support compensation; skipping")
			s.events.notifyRestoreCompleted(record.Operation, f, time.Since(start))
		default:
			failed++
			s.loggers.LogError("compensation of operation `", record.Operation.Name(), "` failed: ", err.Error())
			s.events.notifyRestoreFailed(record.Operation, f, err)
			restoreErr = multierror.Append(restoreErr, commonerrors.WrapErrorf(commonerrors.ErrUnexpected, err, "compensation of operation `%v` failed", record.Operation.Name()))
		}
	}
	s.events.notifyCompensationCompleted(wf, f, succeeded, failed)
	return restoreErr.ErrorOrNil()
}

// acquireFoundry takes an idle foundry from the pool, resetting it for a new
// run, or builds a fresh one when none is available.
func (s *Smith) acquireFoundry() (*foundry.Foundry, error) {
	for {
		f := s.pool.take()
		if f == nil {
			break
		}
		if err := f.Reset(); err != nil {
			_ = f.Close()
			continue
		}
		f.Use(s.operationMiddlewares()...)
		return f, nil
	}
	return s.newFoundry()
}

func (s *Smith) newFoundry() (*foundry.Foundry, error) {
	if s.factory != nil {
		return s.factory()
	}
	return foundry.New(foundry.WithLoggers(s.loggers), foundry.WithMiddleware(s.operationMiddlewares()...))
}

func (s *Smith) operationMiddlewares() []foundry.Middleware {
	s.mu.RLock()
	defer s.mu.RUnlock()
	middlewares := make([]foundry.Middleware, len(s.opMiddlewares))
	copy(middlewares, s.opMiddlewares)
	return middlewares
}

// releaseFoundry returns a smith-owned foundry to the pool, closing it when
// the pool is full or the smith is shut down. Caller-supplied foundries are
// left untouched.
func (s *Smith) releaseFoundry(f *foundry.Foundry, owned bool) {
	if !owned {
		return
	}
	if s.closed.Load() || !s.pool.put(f) {
		commonerrors.Ignore(f.Close(), commonerrors.ErrClosed)
	}
}

// IsClosed reports whether the smith has been shut down.
func (s *Smith) IsClosed() bool {
	return s.closed.Load()
}

// Close shuts the smith down: pooled foundries are closed, event
// subscriptions dropped and any middleware holding resources released.
// In-flight runs are left to finish; their foundries are closed on release.
// Close is idempotent.
func (s *Smith) Close() (err error) {
	if s.closed.Swap(true) {
		return nil
	}
	for _, f := range s.pool.drain() {
		err = commonerrors.Join(err, f.Close())
	}
	s.events.Clear()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, middleware := range s.wfMiddlewares {
		if closer, ok := middleware.(io.Closer); ok {
			err = commonerrors.Join(err, closer.Close())
		}
	}
	for _, middleware := range s.opMiddlewares {
		if closer, ok := middleware.(io.Closer); ok {
			err = commonerrors.Join(err, closer.Close())
		}
	}
	return
}
