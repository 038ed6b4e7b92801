// Package fanout provides an operation which runs a fixed batch of child
// operations concurrently under a throttle, so a sequential workflow can
// embed a parallel branch without giving up compensation.
package fanout

import (
	"context"
	"reflect"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/forgekit/forge/commonerrors"
	"github.com/forgekit/forge/operation"
)

// KeyConcurrencyOverride is the property under which callers can lower the
// concurrency of every fan-out running on a foundry (an int). The effective
// bound is the minimum of this override and the configured maximum.
const KeyConcurrencyOverride = "forge.fanout.concurrency"

// Mode describes how a fan-out distributes its input across children.
type Mode int

const (
	// Shared hands every child the same input value.
	Shared Mode = iota
	// Split hands child i the i-th element of an indexable input; surplus
	// children receive nil.
	Split
	// None hands every child a nil input.
	None
)

func (m Mode) String() string {
	switch m {
	case Shared:
		return "shared"
	case Split:
		return "split"
	case None:
		return "none"
	default:
		return "unknown"
	}
}

// ResultSet holds the outputs of one fan-out run, indexed by child
// declaration position regardless of completion order.
type ResultSet struct {
	outputs []any
}

// Len returns the number of child outputs.
func (r *ResultSet) Len() int {
	return len(r.outputs)
}

// Output returns the output of the child declared at the given position.
func (r *ResultSet) Output(index int) any {
	if index < 0 || index >= len(r.outputs) {
		return nil
	}
	return r.outputs[index]
}

// Outputs returns a copy of every child output in declaration order.
func (r *ResultSet) Outputs() []any {
	outputs := make([]any, len(r.outputs))
	copy(outputs, r.outputs)
	return outputs
}

// Option configures a fan-out at construction time.
type Option func(*Operation)

// WithMaxConcurrency bounds how many children may run at once. It defaults
// to the number of children.
func WithMaxConcurrency(n int) Option {
	return func(o *Operation) {
		o.maxConcurrency = n
	}
}

// WithDeadline bounds how long the whole fan-out may take. Expiry surfaces
// as a timeout, distinct from a caller cancellation.
func WithDeadline(d time.Duration) Option {
	return func(o *Operation) {
		o.deadline = d
	}
}

var _ operation.Operation = (*Operation)(nil)

// Operation runs its children concurrently under a bound and collects their
// outputs into a ResultSet aligned to declaration order. It satisfies the
// same contract as any other operation, so fan-outs compose into workflows
// and are compensated like single steps.
type Operation struct {
	operation.Base
	mode           Mode
	children       []operation.Operation
	maxConcurrency int
	deadline       time.Duration
	closed         *atomic.Bool
}

// New creates a fan-out over the supplied children. The child list must be
// non-empty and free of nils; an explicit concurrency must be positive and a
// deadline non-negative.
func New(name string, mode Mode, children []operation.Operation, opts ...Option) (*Operation, error) {
	base, err := operation.NewBase(name)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, commonerrors.New(commonerrors.ErrInvalid, "a fan-out needs at least one child operation")
	}
	for i := range children {
		if children[i] == nil {
			return nil, commonerrors.Newf(commonerrors.ErrInvalid, "child operation #%v is nil", i)
		}
	}
	if mode != Shared && mode != Split && mode != None {
		return nil, commonerrors.Newf(commonerrors.ErrInvalid, "unknown distribution mode %v", int(mode))
	}
	o := &Operation{
		Base:           base,
		mode:           mode,
		children:       make([]operation.Operation, len(children)),
		maxConcurrency: len(children),
		closed:         atomic.NewBool(false),
	}
	copy(o.children, children)
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.maxConcurrency <= 0 {
		return nil, commonerrors.Newf(commonerrors.ErrInvalid, "concurrency must be positive, got %v", o.maxConcurrency)
	}
	if o.deadline < 0 {
		return nil, commonerrors.Newf(commonerrors.ErrInvalid, "deadline must not be negative, got %v", o.deadline)
	}
	return o, nil
}

// Mode returns the input distribution mode.
func (o *Operation) Mode() Mode {
	return o.mode
}

// Len returns the number of children.
func (o *Operation) Len() int {
	return len(o.children)
}

// Apply runs every child under the concurrency bound and returns a
// *ResultSet of their outputs in declaration order. The first child failure
// is reported once all started siblings have been awaited; a configured
// deadline stops the batch with a timeout.
func (o *Operation) Apply(ctx context.Context, store operation.Store, input any) (any, error) {
	if o.closed.Load() {
		return nil, commonerrors.Newf(commonerrors.ErrClosed, "fan-out %v is closed", o.Name())
	}
	if err := commonerrors.ErrFromContext(ctx); err != nil {
		return nil, err
	}
	inputs, err := o.spread(input)
	if err != nil {
		return nil, err
	}
	runCtx := ctx
	if o.deadline > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeoutCause(ctx, o.deadline, commonerrors.ErrTimeout)
		defer cancel()
	}
	outputs := make([]any, len(o.children))
	group := &errgroup.Group{}
	group.SetLimit(o.effectiveConcurrency(store))
	for i, child := range o.children {
		group.Go(func() error {
			// a sibling failure does not cancel this child; only the
			// caller's token or the fan-out deadline do
			if err := commonerrors.ErrFromContext(runCtx); err != nil {
				return err
			}
			output, err := child.Apply(runCtx, store, inputs[i])
			if err != nil {
				return commonerrors.ConvertContextError(err)
			}
			outputs[i] = output
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, commonerrors.ConvertContextError(err)
	}
	// children that never observe their context can outlive the deadline;
	// an expired batch must still fail rather than hand back its outputs
	if err := commonerrors.ErrFromContext(runCtx); err != nil {
		return nil, err
	}
	return &ResultSet{outputs: outputs}, nil
}

// Compensate replays a ResultSet produced by Apply, handing each child its
// own recorded output under the same concurrency bound. Children which do
// not support compensation are skipped; every failure is reported, none
// stops the others.
func (o *Operation) Compensate(ctx context.Context, store operation.Store, output any) error {
	if o.closed.Load() {
		return commonerrors.Newf(commonerrors.ErrClosed, "fan-out %v is closed", o.Name())
	}
	results, ok := output.(*ResultSet)
	if !ok || results == nil {
		return commonerrors.Newf(commonerrors.ErrInvalid, "fan-out %v cannot compensate output of type %T", o.Name(), output)
	}
	if results.Len() != len(o.children) {
		return commonerrors.Newf(commonerrors.ErrInvalid, "result set holds %v output(s) for %v child(ren)", results.Len(), len(o.children))
	}
	errs := make([]error, len(o.children))
	group := &errgroup.Group{}
	group.SetLimit(o.effectiveConcurrency(store))
	for i, child := range o.children {
		group.Go(func() error {
			errs[i] = commonerrors.Ignore(child.Compensate(ctx, store, results.Output(i)), operation.ErrCompensationUnsupported)
			return nil
		})
	}
	_ = group.Wait()
	return commonerrors.Join(errs...)
}

// Close releases every child exactly once.
func (o *Operation) Close() (err error) {
	if o.closed.Swap(true) {
		return nil
	}
	for _, child := range o.children {
		err = commonerrors.Join(err, child.Close())
	}
	return
}

// spread materialises the per-child inputs according to the distribution mode.
func (o *Operation) spread(input any) ([]any, error) {
	inputs := make([]any, len(o.children))
	switch o.mode {
	case Shared:
		for i := range inputs {
			inputs[i] = input
		}
	case Split:
		if input == nil {
			return nil, commonerrors.Newf(commonerrors.ErrInvalid, "%v distribution needs an indexable input", o.mode)
		}
		value := reflect.ValueOf(input)
		if value.Kind() != reflect.Slice && value.Kind() != reflect.Array {
			return nil, commonerrors.Newf(commonerrors.ErrInvalid, "%v distribution needs an indexable input, got %T", o.mode, input)
		}
		for i := range inputs {
			if i < value.Len() {
				inputs[i] = value.Index(i).Interface()
			}
		}
	case None:
	}
	return inputs, nil
}

// effectiveConcurrency combines the configured bound with the foundry-wide
// override, whichever is lower.
func (o *Operation) effectiveConcurrency(store operation.Store) int {
	limit := o.maxConcurrency
	if store == nil {
		return limit
	}
	if override, err := operation.PropertyAs[int](store, KeyConcurrencyOverride); err == nil && override > 0 && override < limit {
		limit = override
	}
	return limit
}
