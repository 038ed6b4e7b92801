package smith

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/forge/foundry"
)

func TestFoundryPool(t *testing.T) {
	newFoundry := func(t *testing.T) *foundry.Foundry {
		t.Helper()
		f, err := foundry.New()
		require.NoError(t, err)
		t.Cleanup(func() { require.NoError(t, f.Close()) })
		return f
	}

	t.Run("take from empty pool", func(t *testing.T) {
		pool := newFoundryPool(2)
		assert.Nil(t, pool.take())
	})

	t.Run("put then take", func(t *testing.T) {
		pool := newFoundryPool(2)
		f := newFoundry(t)
		require.True(t, pool.put(f))
		assert.Same(t, f, pool.take())
		assert.Nil(t, pool.take())
	})

	t.Run("overflow is refused", func(t *testing.T) {
		pool := newFoundryPool(1)
		require.True(t, pool.put(newFoundry(t)))
		assert.False(t, pool.put(newFoundry(t)))
	})

	t.Run("nil is refused", func(t *testing.T) {
		pool := newFoundryPool(1)
		assert.False(t, pool.put(nil))
	})

	t.Run("put after drain is refused", func(t *testing.T) {
		pool := newFoundryPool(2)
		parked := newFoundry(t)
		require.True(t, pool.put(parked))

		drained := pool.drain()
		require.Len(t, drained, 1)
		assert.Same(t, parked, drained[0])

		// a run finishing while the smith shuts down must keep ownership of
		// its foundry so it closes it itself
		assert.False(t, pool.put(newFoundry(t)))
		assert.Nil(t, pool.take())
	})
}
