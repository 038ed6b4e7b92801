package operation

import (
	"context"
	"testing"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/forge/commonerrors"
	"github.com/forgekit/forge/commonerrors/errortest"
	"github.com/forgekit/forge/logs"
)

type fakeStore struct {
	props map[string]any
}

func newFakeStore() *fakeStore {
	return &fakeStore{props: map[string]any{}}
}

func (s *fakeStore) SetProperty(key string, value any) { s.props[key] = value }

func (s *fakeStore) Property(key string) (any, bool) {
	v, ok := s.props[key]
	return v, ok
}

func (s *fakeStore) DeleteProperty(key string) { delete(s.props, key) }

func (s *fakeStore) Loggers() logs.Loggers { return logs.NewNoopLogger() }

func TestNewValidation(t *testing.T) {
	_, err := New("", func(context.Context, Store, any) (any, error) { return nil, nil })
	errortest.AssertError(t, err, commonerrors.ErrUndefined)

	_, err = New(faker.Name(), nil)
	errortest.AssertError(t, err, commonerrors.ErrUndefined)

	op, err := New(faker.Name(), func(context.Context, Store, any) (any, error) { return nil, nil })
	require.NoError(t, err)
	assert.NotEmpty(t, op.ID())
	assert.NotEmpty(t, op.Name())
}

func TestDefaultCompensateIsNoop(t *testing.T) {
	op, err := New("no side effects", func(_ context.Context, _ Store, input any) (any, error) {
		return input, nil
	})
	require.NoError(t, err)
	require.NoError(t, op.Compensate(context.Background(), newFakeStore(), "anything"))
}

func TestApplyObservesCancellation(t *testing.T) {
	op, err := New("cancellable", func(_ context.Context, _ Store, input any) (any, error) {
		return input, nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = op.Apply(ctx, newFakeStore(), nil)
	errortest.AssertError(t, err, commonerrors.ErrCancelled)
}

func TestHooks(t *testing.T) {
	var calls []string
	op, err := New("hooked",
		func(_ context.Context, _ Store, input any) (any, error) {
			calls = append(calls, "apply")
			return input, nil
		},
		WithBeforeApply(func(context.Context, Store, any) error {
			calls = append(calls, "before")
			return nil
		}),
		WithAfterApply(func(context.Context, Store, any, any) error {
			calls = append(calls, "after")
			return nil
		}),
	)
	require.NoError(t, err)

	var hook BeforeApplyHook = op
	var after AfterApplyHook = op
	store := newFakeStore()
	ctx := context.Background()
	require.NoError(t, hook.BeforeApply(ctx, store, nil))
	_, err = op.Apply(ctx, store, nil)
	require.NoError(t, err)
	require.NoError(t, after.AfterApply(ctx, store, nil, nil))
	assert.Equal(t, []string{"before", "apply", "after"}, calls)
}

func TestCloseOnlyOnce(t *testing.T) {
	closures := 0
	op, err := New("closable",
		func(_ context.Context, _ Store, input any) (any, error) { return input, nil },
		WithClose(func() error {
			closures++
			return nil
		}),
	)
	require.NoError(t, err)

	require.NoError(t, op.Close())
	require.NoError(t, op.Close())
	assert.Equal(t, 1, closures)

	_, err = op.Apply(context.Background(), newFakeStore(), nil)
	errortest.AssertError(t, err, commonerrors.ErrClosed)
	errortest.AssertError(t, op.Compensate(context.Background(), newFakeStore(), nil), commonerrors.ErrClosed)
}

func TestPropertyAs(t *testing.T) {
	store := newFakeStore()
	store.SetProperty("concurrency", 3)

	value, err := PropertyAs[int](store, "concurrency")
	require.NoError(t, err)
	assert.Equal(t, 3, value)

	_, err = PropertyAs[string](store, "concurrency")
	errortest.AssertError(t, err, commonerrors.ErrInvalid)

	_, err = PropertyAs[int](store, "absent")
	errortest.AssertError(t, err, commonerrors.ErrNotFound)

	_, err = PropertyAs[int](nil, "concurrency")
	errortest.AssertError(t, err, commonerrors.ErrUndefined)
}
