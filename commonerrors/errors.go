// Package commonerrors defines the error taxonomy shared by every package of
// the engine. Errors are matched by circumstance (errors.Is) rather than by
// message so callers can react to the kind of failure without parsing strings.
package commonerrors

import "errors"

var (
	ErrNotImplemented = errors.New("not implemented")
	ErrNoLogger       = errors.New("missing logger")
	ErrUndefined      = errors.New("undefined")
	ErrInvalid        = errors.New("invalid")
	ErrUnexpected     = errors.New("unexpected")
	ErrUnsupported    = errors.New("unsupported")
	ErrTimeout        = errors.New("timeout")
	ErrCancelled      = errors.New("cancelled")
	ErrConflict       = errors.New("conflict")
	ErrClosed         = errors.New("closed")
	ErrNotFound       = errors.New("not found")
	ErrMarshalling    = errors.New("unserialisable")
	ErrCondition      = errors.New("failed condition")
	ErrUnknown        = errors.New("unknown")
)

// Any returns whether the target error corresponds to any of the errors in the list.
func Any(target error, err ...error) bool {
	for _, e := range err {
		if errors.Is(e, target) || errors.Is(target, e) {
			return true
		}
	}
	return false
}

// None returns whether the target error corresponds to none of the errors in the list.
func None(target error, err ...error) bool {
	for _, e := range err {
		if errors.Is(e, target) || errors.Is(target, e) {
			return false
		}
	}
	return true
}
