// Package errortest provides test assertions over the engine error taxonomy.
package errortest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forgekit/forge/commonerrors"
)

// AssertError asserts that the error matches one of the expected errors.
// This is a wrapper for commonerrors.Any.
func AssertError(t *testing.T, err error, expectedErrors ...error) bool {
	t.Helper()
	if commonerrors.Any(err, expectedErrors...) {
		return true
	}
	return assert.Fail(t, fmt.Sprintf("failed error assertion:\n actual: %v\n expected: %+v", err, expectedErrors))
}

// RequireError is similar to AssertError but stops the test on mismatch.
func RequireError(t *testing.T, err error, expectedErrors ...error) {
	t.Helper()
	if !AssertError(t, err, expectedErrors...) {
		t.FailNow()
	}
}

// AssertErrorDescription asserts that the error description corresponds to one
// of the expected descriptions. This is a wrapper for commonerrors.CorrespondTo.
func AssertErrorDescription(t *testing.T, err error, expectedDescriptions ...string) bool {
	t.Helper()
	if commonerrors.CorrespondTo(err, expectedDescriptions...) {
		return true
	}
	return assert.Fail(t, fmt.Sprintf("failed error description assertion:\n actual: %v\n expected: %+v", err, expectedDescriptions))
}
