package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/smart-unsubscribe/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSQLiteCache(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "triage_cache.db"), zap.NewNop(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { c.Stop() })
	return c
}

func TestSQLiteCacheSetGet(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	classified := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, c.Set(ctx, &core.TriageCacheEntry{
		MessageID:    "m1",
		Label:        core.TriageUrgent,
		Reason:       "deadline",
		ModelUsed:    "test-model",
		ClassifiedAt: classified,
		ExpiresAt:    time.Now().Add(time.Hour),
	}))

	got, err := c.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", got.MessageID)
	assert.Equal(t, core.TriageUrgent, got.Label)
	assert.Equal(t, "deadline", got.Reason)
	assert.Equal(t, "test-model", got.ModelUsed)
	assert.True(t, got.ClassifiedAt.Equal(classified))
}

func TestSQLiteCacheMiss(t *testing.T) {
	c := newTestSQLiteCache(t)
	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteCacheExpiry(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("m1", -time.Minute)))
	_, err := c.Get(ctx, "m1")
	assert.ErrorIs(t, err, ErrExpired)
}

func TestSQLiteCacheUpsert(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("m1", time.Hour)))

	// A reclassification replaces the stored verdict.
	updated := entry("m1", time.Hour)
	updated.Label = core.TriagePromo
	updated.Reason = "newsletter blast"
	updated.ModelUsed = "other-model"
	require.NoError(t, c.Set(ctx, updated))

	got, err := c.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, core.TriagePromo, got.Label)
	assert.Equal(t, "newsletter blast", got.Reason)
	assert.Equal(t, "other-model", got.ModelUsed)
}

func TestSQLiteCacheDelete(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("m1", time.Hour)))
	require.NoError(t, c.Delete(ctx, "m1"))
	_, err := c.Get(ctx, "m1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteCacheCleanup(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("stale", -time.Minute)))
	require.NoError(t, c.Set(ctx, entry("fresh", time.Hour)))
	require.NoError(t, c.Cleanup(ctx))

	_, err := c.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Get(ctx, "fresh")
	assert.NoError(t, err)
}
