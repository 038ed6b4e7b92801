package commonerrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAny(t *testing.T) {
	assert.True(t, Any(ErrUnsupported, ErrInvalid, ErrUnsupported, ErrUnknown))
	assert.False(t, Any(ErrUnsupported, ErrInvalid, ErrUnknown))
	assert.True(t, Any(fmt.Errorf("an error %w", ErrTimeout), ErrInvalid, ErrTimeout))
	assert.False(t, Any(fmt.Errorf("an error %w", ErrTimeout), ErrInvalid, ErrCancelled))
	assert.False(t, Any(nil, ErrInvalid))
	assert.True(t, Any(nil, ErrInvalid, nil))
}

func TestNone(t *testing.T) {
	assert.False(t, None(ErrUnsupported, ErrInvalid, ErrUnsupported, ErrUnknown))
	assert.True(t, None(ErrUnsupported, ErrInvalid, ErrUnknown))
	assert.False(t, None(fmt.Errorf("an error %w", ErrTimeout), ErrInvalid, ErrTimeout))
	assert.True(t, None(fmt.Errorf("an error %w", ErrTimeout), ErrInvalid, ErrCancelled))
}
