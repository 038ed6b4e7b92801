// Package operation defines the contract for a single step of a workflow: a
// forward action (Apply), a rollback action (Compensate) and a release step.
// Every operation is compensatable by construction; the default Compensate is
// a safe no-op and never fails when there is nothing to undo.
package operation

import (
	"context"
	"io"

	"github.com/forgekit/forge/commonerrors"
	"github.com/forgekit/forge/logs"
)

//go:generate go tool mockgen -destination=./mocks/mock_$GOPACKAGE.go -package=mocks github.com/forgekit/forge/$GOPACKAGE Operation,Store

// Store is the shared, concurrency safe key/value state an operation may read
// from and write to during a run. Single key accesses are safe to perform from
// concurrently running operations; compound read-modify-write sequences on one
// key are the caller's responsibility.
type Store interface {
	SetProperty(key string, value any)
	Property(key string) (any, bool)
	DeleteProperty(key string)
	Loggers() logs.Loggers
}

// Operation is a named unit of work.
//
// Apply performs the forward action. Any returned error aborts the enclosing
// sequential run; no further operation executes. Compensate undoes a previous
// Apply call and always receives exactly the output that call returned, plus
// whatever extra state the operation stashed in the store during Apply.
type Operation interface {
	io.Closer
	ID() string
	Name() string
	Apply(ctx context.Context, store Store, input any) (output any, err error)
	Compensate(ctx context.Context, store Store, output any) error
}

// BeforeApplyHook is implemented by operations wanting a hook to run before
// the core apply call.
type BeforeApplyHook interface {
	BeforeApply(ctx context.Context, store Store, input any) error
}

// AfterApplyHook is implemented by operations wanting a hook to run after the
// core apply call. The hook is skipped when the core call fails.
type AfterApplyHook interface {
	AfterApply(ctx context.Context, store Store, input, output any) error
}

// ErrCompensationUnsupported is the signal a legacy operation returns from
// Compensate to explicitly refuse rolling back. The orchestrator skips such a
// step without failing the compensation batch, which is distinct from an
// ordinary compensation failure.
var ErrCompensationUnsupported = commonerrors.New(commonerrors.ErrUnsupported, "compensation unsupported")
