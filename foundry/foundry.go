// Package foundry provides the per-run execution context of the engine: a
// concurrency safe property bag, the ordered operation list, the operation
// middleware chain and the operation lifecycle events.
package foundry

import (
	"context"
	"fmt"
	"time"

	"github.com/sasha-s/go-deadlock"
	"go.uber.org/atomic"

	"github.com/forgekit/forge/commonerrors"
	"github.com/forgekit/forge/idgen"
	"github.com/forgekit/forge/logs"
	"github.com/forgekit/forge/operation"
	"github.com/forgekit/forge/resource"
	"github.com/forgekit/forge/workflow"
)

var (
	_ operation.Store             = (*Foundry)(nil)
	_ resource.ICloseableResource = (*Foundry)(nil)
)

// Record is one entry of the compensation ledger: an operation which
// succeeded during the current run together with the exact output its apply
// call returned.
type Record struct {
	Operation operation.Operation
	Output    any
}

// Foundry is one run's execution context. It may be used standalone, with
// operations registered directly, or bound to a workflow by an orchestrator.
// A foundry can be pooled: Reset clears its run state for reuse.
type Foundry struct {
	mu          deadlock.RWMutex
	id          string
	loggers     logs.Loggers
	properties  map[string]any
	operations  []operation.Operation
	middlewares []Middleware
	current     *workflow.Workflow
	trail       []Record
	events      *Events
	running     *atomic.Bool
	closed      *atomic.Bool
}

// FoundryOption configures a foundry at construction.
type FoundryOption func(*Foundry)

// WithLoggers sets the loggers the foundry and its operations use.
func WithLoggers(loggers logs.Loggers) FoundryOption {
	return func(f *Foundry) {
		if loggers != nil {
			f.loggers = loggers
		}
	}
}

// WithOperations registers operations for standalone runs.
func WithOperations(ops ...operation.Operation) FoundryOption {
	return func(f *Foundry) { f.operations = append(f.operations, ops...) }
}

// WithMiddleware registers operation middleware, outermost first.
func WithMiddleware(middlewares ...Middleware) FoundryOption {
	return func(f *Foundry) { f.middlewares = append(f.middlewares, middlewares...) }
}

// WithProperties seeds the property map.
func WithProperties(properties map[string]any) FoundryOption {
	return func(f *Foundry) {
		for k, v := range properties {
			f.properties[k] = v
		}
	}
}

// New returns a fresh execution context.
func New(opts ...FoundryOption) (*Foundry, error) {
	id, err := idgen.GenerateUUID4()
	if err != nil {
		return nil, err
	}
	f := &Foundry{
		id:         id,
		loggers:    logs.NewNoopLogger(),
		properties: map[string]any{},
		running:    atomic.NewBool(false),
		closed:     atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.events = newEvents(f.loggers)
	return f, nil
}

// ExecutionID returns the identifier of this execution context. A fresh
// identifier is generated whenever the foundry is reset for reuse.
func (f *Foundry) ExecutionID() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.id
}

func (f *Foundry) String() string {
	return fmt.Sprintf("foundry %v", f.ExecutionID())
}

func (f *Foundry) Loggers() logs.Loggers {
	return f.loggers
}

// Events returns the operation lifecycle events of this foundry.
func (f *Foundry) Events() *Events {
	return f.events
}

// SetProperty stores a value in the shared property map.
func (f *Foundry) SetProperty(key string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.properties[key] = value
}

// Property reads a value from the shared property map.
func (f *Foundry) Property(key string) (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.properties[key]
	return v, ok
}

// DeleteProperty removes a key from the shared property map.
func (f *Foundry) DeleteProperty(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.properties, key)
}

// Properties returns a copy of the shared property map.
func (f *Foundry) Properties() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	props := make(map[string]any, len(f.properties))
	for k, v := range f.properties {
		props[k] = v
	}
	return props
}

// IntProperty returns the property as an int, failing with ErrInvalid when
// the stored value has a different type.
func (f *Foundry) IntProperty(key string) (int, error) {
	return operation.PropertyAs[int](f, key)
}

// DurationProperty returns the property as a time.Duration, failing with
// ErrInvalid when the stored value has a different type.
func (f *Foundry) DurationProperty(key string) (time.Duration, error) {
	return operation.PropertyAs[time.Duration](f, key)
}

// StringProperty returns the property as a string, failing with ErrInvalid
// when the stored value has a different type.
func (f *Foundry) StringProperty(key string) (string, error) {
	return operation.PropertyAs[string](f, key)
}

// AddOperations registers operations for standalone runs. Operations added
// while a run is in flight do not join that run: the list is snapshotted when
// the run begins.
func (f *Foundry) AddOperations(ops ...operation.Operation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.operations = append(f.operations, ops...)
}

// Use registers operation middleware. Registration order is outer to inner.
func (f *Foundry) Use(middlewares ...Middleware) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.middlewares = append(f.middlewares, middlewares...)
}

// Bind attaches a workflow to this foundry for the next run. The foundry
// keeps a back-reference only; it does not own the workflow. Frozen workflow
// properties are merged into the property map without overriding keys the
// foundry already holds.
func (f *Foundry) Bind(wf *workflow.Workflow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = wf
	if wf == nil {
		return
	}
	for k, v := range wf.Properties() {
		if _, ok := f.properties[k]; !ok {
			f.properties[k] = v
		}
	}
}

// Unbind detaches the current workflow.
func (f *Foundry) Unbind() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = nil
}

// Workflow returns the currently bound workflow, if any.
func (f *Foundry) Workflow() *workflow.Workflow {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

// Trail returns the compensation ledger of the most recent run: every
// operation which succeeded, in forward completion order, with the exact
// output its apply call returned.
func (f *Foundry) Trail() []Record {
	f.mu.RLock()
	defer f.mu.RUnlock()
	trail := make([]Record, len(f.trail))
	copy(trail, f.trail)
	return trail
}

func (f *Foundry) snapshot() (ops []operation.Operation, middlewares []Middleware) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current != nil {
		ops = f.current.Operations()
	} else {
		ops = make([]operation.Operation, len(f.operations))
		copy(ops, f.operations)
	}
	middlewares = make([]Middleware, len(f.middlewares))
	copy(middlewares, f.middlewares)
	f.trail = f.trail[:0]
	return
}

func (f *Foundry) record(op operation.Operation, output any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trail = append(f.trail, Record{Operation: op, Output: output})
}

// Run executes the operations in declaration order, each through the
// middleware chain, piping each output into the next input. The first failure
// stops the loop and is propagated as an *OperationError naming the failed
// step; operations recorded in the trail before that point are left for the
// orchestrator to compensate.
func (f *Foundry) Run(ctx context.Context) (output any, err error) {
	if f.IsClosed() {
		return nil, commonerrors.New(commonerrors.ErrClosed, f.String())
	}
	if f.running.Swap(true) {
		return nil, commonerrors.Newf(commonerrors.ErrConflict, "%v is already running", f.String())
	}
	defer f.running.Store(false)

	ops, middlewares := f.snapshot()
	var input any
	for i, op := range ops {
		if err = commonerrors.ErrFromContext(ctx); err != nil {
			return nil, err
		}
		f.SetProperty(KeyStepIndex, i)
		output, err = f.runOperation(ctx, middlewares, i, op, input)
		if err != nil {
			return nil, err
		}
		f.record(op, output)
		input = output
	}
	return input, nil
}

func (f *Foundry) runOperation(ctx context.Context, middlewares []Middleware, index int, op operation.Operation, input any) (any, error) {
	if op == nil {
		return nil, commonerrors.UndefinedVariable("operation")
	}
	f.events.fireOperationStarted(op, f, input)
	start := time.Now()
	output, err := chain(middlewares, op, f, f.terminal(op))(ctx, input)
	elapsed := time.Since(start)
	if err != nil {
		f.events.fireOperationFailed(op, f, input, err, elapsed)
		return nil, &OperationError{OperationName: op.Name(), Index: index, Err: err}
	}
	f.events.fireOperationCompleted(op, f, input, output, elapsed)
	return output, nil
}

// terminal is the innermost continuation: the raw operation call wrapped in
// its optional before/after hooks. The after hook is skipped on failure.
func (f *Foundry) terminal(op operation.Operation) Next {
	return func(ctx context.Context, input any) (any, error) {
		if hook, ok := op.(operation.BeforeApplyHook); ok {
			if err := hook.BeforeApply(ctx, f, input); err != nil {
				return nil, err
			}
		}
		output, err := op.Apply(ctx, f, input)
		if err != nil {
			return nil, err
		}
		if hook, ok := op.(operation.AfterApplyHook); ok {
			if err := hook.AfterApply(ctx, f, input, output); err != nil {
				return nil, err
			}
		}
		return output, nil
	}
}

// Reset clears the run state so the foundry can be reused by another run. The
// loggers are kept; properties, operations, middleware, subscribers, ledger
// and workflow binding are dropped and a fresh execution id is generated.
func (f *Foundry) Reset() error {
	if f.IsClosed() {
		return commonerrors.New(commonerrors.ErrClosed, f.String())
	}
	if f.running.Load() {
		return commonerrors.Newf(commonerrors.ErrConflict, "%v is still running", f.String())
	}
	id, err := idgen.GenerateUUID4()
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.id = id
	f.properties = map[string]any{}
	f.operations = nil
	f.middlewares = nil
	f.current = nil
	f.trail = nil
	f.mu.Unlock()
	f.events.Clear()
	return nil
}

func (f *Foundry) IsClosed() bool {
	return f.closed.Load()
}

// Close releases the foundry. Registered operations belong to their workflow
// or to the caller and are not closed here.
func (f *Foundry) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	f.events.Clear()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.properties = map[string]any{}
	f.operations = nil
	f.middlewares = nil
	f.current = nil
	f.trail = nil
	return nil
}
