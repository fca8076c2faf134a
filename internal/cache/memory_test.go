package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSetGet(t *testing.T) {
	store := NewStore(Options{Prefix: "test"})
	ctx := context.Background()

	require.NoError(t, store.SetString(ctx, "greeting", "hello", time.Minute))
	got, ok := store.GetString(ctx, "greeting")
	require.True(t, ok)
	assert.Equal(t, "hello", got)

	_, ok = store.GetString(ctx, "missing")
	assert.False(t, ok)

	store.Delete(ctx, "greeting")
	_, ok = store.GetString(ctx, "greeting")
	assert.False(t, ok)
}

func TestStoreExpiry(t *testing.T) {
	store := NewStore(Options{CleanupInterval: 10 * time.Millisecond})
	ctx := context.Background()

	require.NoError(t, store.SetString(ctx, "ephemeral", "x", 20*time.Millisecond))
	_, ok := store.GetString(ctx, "ephemeral")
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	_, ok = store.GetString(ctx, "ephemeral")
	assert.False(t, ok)
}

func TestStoreJSON(t *testing.T) {
	store := NewStore(Options{})
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	require.NoError(t, store.SetJSON(ctx, "obj", payload{Name: "a", Count: 3}, time.Minute))

	var got payload
	found, err := store.GetJSON(ctx, "obj", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, payload{Name: "a", Count: 3}, got)
}

func TestStoreNamespaceIsolation(t *testing.T) {
	store := NewStore(Options{Prefix: "portal"})
	ctx := context.Background()

	a := store.Namespace("a")
	b := store.Namespace("b")

	require.NoError(t, a.SetString(ctx, "key", "from-a", time.Minute))
	require.NoError(t, b.SetString(ctx, "key", "from-b", time.Minute))

	got, ok := a.GetString(ctx, "key")
	require.True(t, ok)
	assert.Equal(t, "from-a", got)

	got, ok = b.GetString(ctx, "key")
	require.True(t, ok)
	assert.Equal(t, "from-b", got)
}

func TestStoreIncrement(t *testing.T) {
	store := NewStore(Options{})
	ctx := context.Background()

	n, err := store.Increment(ctx, "counter", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Increment(ctx, "counter", 2, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
