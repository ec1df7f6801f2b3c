package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedValue struct {
	Amount string `json:"amount"`
}

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "k", cachedValue{Amount: "1.5"}, time.Minute))

	var got cachedValue
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, "1.5", got.Amount)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", cachedValue{Amount: "1"}, 30*time.Second))

	now = now.Add(29 * time.Second)
	var got cachedValue
	require.NoError(t, c.Get(ctx, "k", &got))

	now = now.Add(time.Second)
	err := c.Get(ctx, "k", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Del(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	require.NoError(t, c.Set(ctx, "k", 1, 0))
	require.NoError(t, c.Del(ctx, "k"))

	var v int
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrCacheMiss)
}
