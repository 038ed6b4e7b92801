package commonerrors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrInvalid, "negative concurrency")
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Contains(t, err.Error(), "negative concurrency")
	assert.Equal(t, ErrInvalid, New(ErrInvalid, ""))
	assert.True(t, errors.Is(Newf(nil, "no base"), ErrUnknown))
}

func TestWrapError(t *testing.T) {
	cause := errors.New("boom")
	err := WrapError(ErrUnexpected, cause, "apply failed")
	assert.True(t, errors.Is(err, ErrUnexpected))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "apply failed")

	err = WrapErrorf(ErrTimeout, cause, "after %v", time.Second)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.True(t, errors.Is(err, cause))

	assert.True(t, errors.Is(WrapError(ErrInvalid, nil, "no cause"), ErrInvalid))
}

func TestUndefinedVariable(t *testing.T) {
	err := UndefinedVariable("loggers")
	assert.True(t, errors.Is(err, ErrUndefined))
	assert.Contains(t, err.Error(), "loggers")
}

func TestIgnore(t *testing.T) {
	assert.NoError(t, Ignore(ErrUnsupported, ErrUnsupported))
	assert.NoError(t, Ignore(Newf(ErrUnsupported, "no rollback"), ErrUnsupported))
	assert.Error(t, Ignore(ErrInvalid, ErrUnsupported))
	assert.NoError(t, Ignore(nil, ErrUnsupported))
}

func TestJoin(t *testing.T) {
	assert.NoError(t, Join(nil, nil))
	err := Join(ErrInvalid, nil, ErrTimeout)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestCorrespondTo(t *testing.T) {
	assert.True(t, CorrespondTo(New(ErrInvalid, "Negative Concurrency"), "negative concurrency"))
	assert.False(t, CorrespondTo(ErrInvalid, "concurrency"))
	assert.False(t, CorrespondTo(nil, "anything"))
}

func TestConvertContextError(t *testing.T) {
	assert.NoError(t, ConvertContextError(nil))
	assert.True(t, errors.Is(ConvertContextError(context.DeadlineExceeded), ErrTimeout))
	assert.True(t, errors.Is(ConvertContextError(context.Canceled), ErrCancelled))
	assert.Equal(t, ErrConflict, ConvertContextError(ErrConflict))
	assert.Equal(t, ErrTimeout, ConvertContextError(ErrTimeout))
}

func TestErrFromContext(t *testing.T) {
	t.Run("live context", func(t *testing.T) {
		assert.NoError(t, ErrFromContext(context.Background()))
	})
	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.True(t, errors.Is(ErrFromContext(ctx), ErrCancelled))
	})
	t.Run("expired with cause", func(t *testing.T) {
		ctx, cancel := context.WithTimeoutCause(context.Background(), time.Nanosecond, ErrTimeout)
		defer cancel()
		<-ctx.Done()
		assert.True(t, errors.Is(ErrFromContext(ctx), ErrTimeout))
	})
}
