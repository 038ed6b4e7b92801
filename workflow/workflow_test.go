package workflow

import (
	"context"
	"testing"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/forge/commonerrors"
	"github.com/forgekit/forge/commonerrors/errortest"
	"github.com/forgekit/forge/operation"
)

func newNamedOperation(t *testing.T, name string) operation.Operation {
	t.Helper()
	op, err := operation.New(name, func(_ context.Context, _ operation.Store, input any) (any, error) {
		return input, nil
	})
	require.NoError(t, err)
	return op
}

func TestBuilderValidation(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		_, err := NewBuilder("").Operations(newNamedOperation(t, "step")).Build()
		errortest.AssertError(t, err, commonerrors.ErrInvalid)
	})
	t.Run("no operations", func(t *testing.T) {
		_, err := NewBuilder(faker.Name()).Build()
		errortest.AssertError(t, err, commonerrors.ErrInvalid)
	})
	t.Run("nil operation", func(t *testing.T) {
		_, err := NewBuilder(faker.Name()).Operations(newNamedOperation(t, "step"), nil).Build()
		errortest.AssertError(t, err, commonerrors.ErrInvalid)
	})
	t.Run("missing version", func(t *testing.T) {
		_, err := NewBuilder(faker.Name()).Version("").Operations(newNamedOperation(t, "step")).Build()
		errortest.AssertError(t, err, commonerrors.ErrInvalid)
	})
}

func TestBuildMetadata(t *testing.T) {
	name := faker.Name()
	wf, err := NewBuilder(name).
		Description("a test process").
		Version("2.1.0").
		Property("tenant", "unit-test").
		Operations(newNamedOperation(t, "step1"), newNamedOperation(t, "step2")).
		Build()
	require.NoError(t, err)

	assert.NotEmpty(t, wf.ID())
	assert.Equal(t, name, wf.Name())
	assert.Equal(t, "a test process", wf.Description())
	assert.Equal(t, "2.1.0", wf.Version())
	assert.False(t, wf.CreatedAt().IsZero())
	assert.Equal(t, 2, wf.Len())
	assert.Contains(t, wf.String(), "2.1.0")

	tenant, ok := wf.Property("tenant")
	require.True(t, ok)
	assert.Equal(t, "unit-test", tenant)
	_, ok = wf.Property("absent")
	assert.False(t, ok)
}

func TestDefensiveCopies(t *testing.T) {
	op1 := newNamedOperation(t, "step1")
	op2 := newNamedOperation(t, "step2")
	builder := NewBuilder(faker.Name()).Operations(op1, op2).Property("mode", "initial")
	wf, err := builder.Build()
	require.NoError(t, err)

	// mutating the builder after Build must not affect the workflow
	builder.Operations(newNamedOperation(t, "step3")).Property("mode", "changed")
	assert.Equal(t, 2, wf.Len())
	mode, ok := wf.Property("mode")
	require.True(t, ok)
	assert.Equal(t, "initial", mode)

	// mutating returned collections must not affect the workflow either
	ops := wf.Operations()
	ops[0] = nil
	assert.NotNil(t, wf.Operations()[0])
	props := wf.Properties()
	props["mode"] = "changed"
	mode, _ = wf.Property("mode")
	assert.Equal(t, "initial", mode)
}

func TestCloseCascadesOnce(t *testing.T) {
	closures := 0
	op, err := operation.New("closable",
		func(_ context.Context, _ operation.Store, input any) (any, error) { return input, nil },
		operation.WithClose(func() error {
			closures++
			return nil
		}),
	)
	require.NoError(t, err)

	wf, err := NewBuilder(faker.Name()).Operations(op).Build()
	require.NoError(t, err)

	assert.False(t, wf.IsClosed())
	require.NoError(t, wf.Close())
	require.NoError(t, wf.Close())
	assert.True(t, wf.IsClosed())
	assert.Equal(t, 1, closures)
}
