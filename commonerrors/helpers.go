package commonerrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// New returns an error of type baseErr with a description of the circumstance.
func New(baseErr error, description string) error {
	if baseErr == nil {
		baseErr = ErrUnknown
	}
	if description == "" {
		return baseErr
	}
	return fmt.Errorf("%w: %v", baseErr, description)
}

// Newf is similar to New but with formatting directives for the description.
func Newf(baseErr error, format string, args ...any) error {
	return New(baseErr, fmt.Sprintf(format, args...))
}

// WrapError wraps a cause into an error of type baseErr so both the type and
// the cause can be matched with errors.Is.
func WrapError(baseErr, cause error, description string) error {
	if cause == nil {
		return New(baseErr, description)
	}
	if baseErr == nil {
		baseErr = ErrUnknown
	}
	if description == "" {
		return fmt.Errorf("%w: %w", baseErr, cause)
	}
	return fmt.Errorf("%w: %v: %w", baseErr, description, cause)
}

// WrapErrorf is similar to WrapError but with formatting directives for the description.
func WrapErrorf(baseErr, cause error, format string, args ...any) error {
	return WrapError(baseErr, cause, fmt.Sprintf(format, args...))
}

// UndefinedVariable returns an ErrUndefined error naming the missing variable.
func UndefinedVariable(name string) error {
	return Newf(ErrUndefined, "missing %v", name)
}

// UndefinedParameter returns an ErrUndefined error naming the missing parameter.
func UndefinedParameter(name string) error {
	return Newf(ErrUndefined, "missing parameter %v", name)
}

// Ignore returns nil when the error corresponds to any of the errors to ignore.
func Ignore(err error, ignore ...error) error {
	if Any(err, ignore...) {
		return nil
	}
	return err
}

// Join collates the non-nil errors in the list into a single error, or nil if
// there are none.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// CorrespondTo returns whether the error description contains any of the given
// descriptions (case insensitively).
func CorrespondTo(err error, descriptions ...string) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	for _, d := range descriptions {
		if strings.Contains(text, strings.ToLower(d)) {
			return true
		}
	}
	return false
}

// ConvertContextError converts the errors reported by a context into their
// counterparts in this taxonomy: deadline expiries become ErrTimeout and
// cancellations become ErrCancelled. Other errors are left untouched.
func ConvertContextError(err error) error {
	if err == nil {
		return nil
	}
	if Any(err, ErrTimeout, ErrCancelled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return WrapError(ErrTimeout, err, "")
	}
	if errors.Is(err, context.Canceled) {
		return WrapError(ErrCancelled, err, "")
	}
	return err
}

// ErrFromContext returns the error a context is carrying, if any, converted
// into this taxonomy. The cancellation cause takes precedence over the bare
// context error when one was recorded.
func ErrFromContext(ctx context.Context) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	if cause := context.Cause(ctx); cause != nil && !errors.Is(err, cause) {
		return ConvertContextError(cause)
	}
	return ConvertContextError(err)
}
