// Package workflow defines an immutable, ordered sequence of operations plus
// its metadata. Workflows are assembled with a Builder and never change after
// construction.
package workflow

import (
	"time"

	"go.uber.org/atomic"

	"github.com/forgekit/forge/commonerrors"
	"github.com/forgekit/forge/operation"
)

// Workflow is an immutable step sequence. The operation sequence and property
// map are defensively copied at construction so later mutation of the
// caller's collections cannot affect it.
type Workflow struct {
	id          string
	name        string
	description string
	version     string
	createdAt   time.Time
	operations  []operation.Operation
	properties  map[string]any
	closed      *atomic.Bool
}

func (w *Workflow) ID() string {
	return w.id
}

func (w *Workflow) Name() string {
	return w.name
}

func (w *Workflow) Description() string {
	return w.description
}

func (w *Workflow) Version() string {
	return w.version
}

func (w *Workflow) CreatedAt() time.Time {
	return w.createdAt
}

// Operations returns the ordered operation sequence. The returned slice is a
// copy; the workflow itself cannot be reordered.
func (w *Workflow) Operations() []operation.Operation {
	ops := make([]operation.Operation, len(w.operations))
	copy(ops, w.operations)
	return ops
}

func (w *Workflow) Len() int {
	return len(w.operations)
}

// Property returns the frozen property value for a key.
func (w *Workflow) Property(key string) (any, bool) {
	v, ok := w.properties[key]
	return v, ok
}

// Properties returns a copy of the frozen property map.
func (w *Workflow) Properties() map[string]any {
	props := make(map[string]any, len(w.properties))
	for k, v := range w.properties {
		props[k] = v
	}
	return props
}

func (w *Workflow) IsClosed() bool {
	return w.closed.Load()
}

func (w *Workflow) String() string {
	return w.name + "@" + w.version
}

// Close releases every owned operation exactly once.
func (w *Workflow) Close() error {
	if w.closed.Swap(true) {
		return nil
	}
	errs := make([]error, 0, len(w.operations))
	for _, op := range w.operations {
		errs = append(errs, op.Close())
	}
	return commonerrors.Join(errs...)
}
