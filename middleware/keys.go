// Package middleware provides the built-in operation and workflow middleware:
// logging, timing, retry, deadlines and error snapshots. All of them
// communicate with callers exclusively through well-known property-map keys,
// so foreign middleware can take part in the same contracts.
package middleware

import "fmt"

const (
	// KeyRunDeadline overrides the deadline of a whole run (a time.Duration).
	// It is usually set as a workflow property so it travels with the
	// definition.
	KeyRunDeadline = "forge.run.deadline"
	// KeyRunTimedOut is set to true by the run deadline middleware when the
	// run was stopped by its deadline rather than by its caller.
	KeyRunTimedOut = "forge.run.timed_out"
	// KeyLastError holds the error of the most recent failed operation.
	KeyLastError = "forge.last_error"
	// KeyLastErrorMessage holds the rendered message of the most recent failed operation.
	KeyLastErrorMessage = "forge.last_error.message"
	// KeyLastErrorType holds the Go type of the most recent failed operation's error.
	KeyLastErrorType = "forge.last_error.type"
	// KeyLastErrorOperation holds the name of the operation which failed most recently.
	KeyLastErrorOperation = "forge.last_error.operation"

	keyOperationDeadlinePrefix = "forge.op.deadline"
	keyOperationElapsedPrefix  = "forge.op.elapsed"
)

// OperationDeadlineKey returns the property key overriding the deadline of
// the operation at the given step (a time.Duration).
func OperationDeadlineKey(index int, name string) string {
	return fmt.Sprintf("%v.%v.%v", keyOperationDeadlinePrefix, index, name)
}

// OperationElapsedKey returns the property key under which the timing
// middleware records how long the operation at the given step took.
func OperationElapsedKey(index int, name string) string {
	return fmt.Sprintf("%v.%v.%v", keyOperationElapsedPrefix, index, name)
}
