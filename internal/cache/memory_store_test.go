package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProgressStore(t *testing.T) {
	store := NewMemoryProgressStore()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k1", "v1"))
	val, ok, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", val)

	require.NoError(t, store.Set(ctx, "k1", "v2"))
	val, _, _ = store.Get(ctx, "k1")
	assert.Equal(t, "v2", val)

	require.NoError(t, store.Delete(ctx, "k1"))
	_, ok, err = store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting a missing key is a no-op
	require.NoError(t, store.Delete(ctx, "k1"))
}
