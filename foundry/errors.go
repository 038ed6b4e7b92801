package foundry

import "fmt"

// OperationError names the operation whose apply call failed during a run.
// Unwrap exposes the operation's own error so callers can match it directly.
type OperationError struct {
	OperationName string
	Index         int
	Err           error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %q (step %v) failed: %v", e.OperationName, e.Index+1, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
