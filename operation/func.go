package operation

import (
	"context"

	"go.uber.org/atomic"

	"github.com/forgekit/forge/commonerrors"
)

type (
	// ApplyFunc is the forward action of a functional operation.
	ApplyFunc func(ctx context.Context, store Store, input any) (any, error)
	// CompensateFunc undoes a previous apply given the output it returned.
	CompensateFunc func(ctx context.Context, store Store, output any) error
	// BeforeFunc runs before the core apply call.
	BeforeFunc func(ctx context.Context, store Store, input any) error
	// AfterFunc runs after a successful core apply call.
	AfterFunc func(ctx context.Context, store Store, input, output any) error
)

// Func is an Operation defined by plain functions.
type Func struct {
	Base
	apply      ApplyFunc
	compensate CompensateFunc
	before     BeforeFunc
	after      AfterFunc
	closeFn    func() error
	closed     *atomic.Bool
}

// Option configures a functional operation.
type Option func(*Func)

// WithCompensate overrides the no-op compensation.
func WithCompensate(f CompensateFunc) Option {
	return func(o *Func) { o.compensate = f }
}

// WithBeforeApply installs a hook running before the core apply call.
func WithBeforeApply(f BeforeFunc) Option {
	return func(o *Func) { o.before = f }
}

// WithAfterApply installs a hook running after a successful core apply call.
func WithAfterApply(f AfterFunc) Option {
	return func(o *Func) { o.after = f }
}

// WithClose installs a release step for resources the operation holds.
func WithClose(f func() error) Option {
	return func(o *Func) { o.closeFn = f }
}

// New returns an operation performing apply as its forward action.
func New(name string, apply ApplyFunc, opts ...Option) (*Func, error) {
	if apply == nil {
		return nil, commonerrors.UndefinedVariable("apply function")
	}
	base, err := NewBase(name)
	if err != nil {
		return nil, err
	}
	o := &Func{
		Base:   base,
		apply:  apply,
		closed: atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func (o *Func) Apply(ctx context.Context, store Store, input any) (any, error) {
	if o.closed.Load() {
		return nil, commonerrors.New(commonerrors.ErrClosed, o.Name())
	}
	if err := commonerrors.ErrFromContext(ctx); err != nil {
		return nil, err
	}
	return o.apply(ctx, store, input)
}

func (o *Func) Compensate(ctx context.Context, store Store, output any) error {
	if o.closed.Load() {
		return commonerrors.New(commonerrors.ErrClosed, o.Name())
	}
	if o.compensate == nil {
		return nil
	}
	return o.compensate(ctx, store, output)
}

func (o *Func) BeforeApply(ctx context.Context, store Store, input any) error {
	if o.before == nil {
		return nil
	}
	return o.before(ctx, store, input)
}

func (o *Func) AfterApply(ctx context.Context, store Store, input, output any) error {
	if o.after == nil {
		return nil
	}
	return o.after(ctx, store, input, output)
}

// Close releases the operation exactly once.
func (o *Func) Close() error {
	if o.closed.Swap(true) {
		return nil
	}
	if o.closeFn == nil {
		return nil
	}
	return o.closeFn()
}
