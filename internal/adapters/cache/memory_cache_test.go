package cache

import (
	"context"
	"testing"
	"time"

	"github.com/mikey/smart-unsubscribe/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMemoryCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	t.Cleanup(c.Stop)
	return c
}

func entry(id string, ttl time.Duration) *core.TriageCacheEntry {
	return &core.TriageCacheEntry{
		MessageID:    id,
		Label:        core.TriageUrgent,
		Reason:       "deadline",
		ModelUsed:    "test-model",
		ClassifiedAt: time.Now(),
		ExpiresAt:    time.Now().Add(ttl),
	}
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("m1", time.Hour)))
	got, err := c.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, core.TriageUrgent, got.Label)
	assert.Equal(t, "deadline", got.Reason)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := newTestMemoryCache(t)
	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("m1", -time.Minute)))
	_, err := c.Get(ctx, "m1")
	assert.ErrorIs(t, err, ErrExpired)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("m1", time.Hour)))
	require.NoError(t, c.Delete(ctx, "m1"))
	_, err := c.Get(ctx, "m1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheCleanup(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("stale", -time.Minute)))
	require.NoError(t, c.Set(ctx, entry("fresh", time.Hour)))
	require.NoError(t, c.Cleanup(ctx))

	_, err := c.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Get(ctx, "fresh")
	assert.NoError(t, err)
}
