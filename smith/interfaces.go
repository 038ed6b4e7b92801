// Package smith provides the orchestrator driving workflow runs: it binds a
// workflow to an execution context, bounds system-wide concurrency, pools
// execution contexts between runs and performs the compensation protocol when
// a run fails.
package smith

import (
	"context"

	"github.com/forgekit/forge/foundry"
	"github.com/forgekit/forge/workflow"
)

//go:generate go tool mockgen -destination=./mocks/mock_$GOPACKAGE.go -package=mocks github.com/forgekit/forge/$GOPACKAGE WorkflowMiddleware

// RunNext is the continuation a workflow middleware wraps: calling it runs
// the rest of the chain and finally the foundry itself.
type RunNext func(ctx context.Context) (any, error)

// WorkflowMiddleware wraps an entire workflow run. The composition rule is
// the same as for operation middleware: middleware registered first sits
// outermost.
type WorkflowMiddleware interface {
	Execute(ctx context.Context, wf *workflow.Workflow, f *foundry.Foundry, next RunNext) (any, error)
}

// WorkflowMiddlewareFunc adapts a plain function to the WorkflowMiddleware interface.
type WorkflowMiddlewareFunc func(ctx context.Context, wf *workflow.Workflow, f *foundry.Foundry, next RunNext) (any, error)

func (fn WorkflowMiddlewareFunc) Execute(ctx context.Context, wf *workflow.Workflow, f *foundry.Foundry, next RunNext) (any, error) {
	return fn(ctx, wf, f, next)
}
