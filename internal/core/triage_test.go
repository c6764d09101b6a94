package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubTriageClient struct {
	labels map[string]TriageLabel
	err    error
	calls  int
}

func (s *stubTriageClient) ClassifyMessage(ctx context.Context, msg *MessageRecord) (*TriageResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	label, ok := s.labels[msg.ID]
	if !ok {
		label = TriageNonUrgent
	}
	return &TriageResult{
		MessageID:    msg.ID,
		Label:        label,
		Reason:       "stub",
		ModelUsed:    "stub-model",
		ClassifiedAt: time.Now(),
	}, nil
}

type stubTriageCache struct {
	entries map[string]*TriageCacheEntry
}

func newStubTriageCache() *stubTriageCache {
	return &stubTriageCache{entries: make(map[string]*TriageCacheEntry)}
}

func (s *stubTriageCache) Get(ctx context.Context, messageID string) (*TriageCacheEntry, error) {
	entry, ok := s.entries[messageID]
	if !ok {
		return nil, errors.New("not found")
	}
	return entry, nil
}

func (s *stubTriageCache) Set(ctx context.Context, entry *TriageCacheEntry) error {
	s.entries[entry.MessageID] = entry
	return nil
}

func (s *stubTriageCache) Delete(ctx context.Context, messageID string) error {
	delete(s.entries, messageID)
	return nil
}

func (s *stubTriageCache) Cleanup(ctx context.Context) error { return nil }

func TestClassifyMessageCacheHit(t *testing.T) {
	client := &stubTriageClient{}
	cache := newStubTriageCache()
	cache.entries["m1"] = &TriageCacheEntry{
		MessageID: "m1",
		Label:     TriageUrgent,
		Reason:    "cached reason",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	service := NewTriageService(client, cache, zap.NewNop(), true, time.Hour)

	result, err := service.ClassifyMessage(context.Background(), &MessageRecord{ID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, TriageUrgent, result.Label)
	assert.Equal(t, "cached reason", result.Reason)
	assert.Equal(t, "cache", result.ModelUsed)
	assert.Zero(t, client.calls)
}

func TestClassifyMessagePopulatesCache(t *testing.T) {
	client := &stubTriageClient{labels: map[string]TriageLabel{"m1": TriagePromo}}
	cache := newStubTriageCache()
	service := NewTriageService(client, cache, zap.NewNop(), true, time.Hour)

	result, err := service.ClassifyMessage(context.Background(), &MessageRecord{ID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, TriagePromo, result.Label)
	require.Contains(t, cache.entries, "m1")
	assert.Equal(t, TriagePromo, cache.entries["m1"].Label)
	assert.Equal(t, "stub-model", cache.entries["m1"].ModelUsed)
	assert.False(t, cache.entries["m1"].ClassifiedAt.IsZero())
	assert.True(t, cache.entries["m1"].ExpiresAt.After(time.Now()))

	// Second call is served from the cache.
	result, err = service.ClassifyMessage(context.Background(), &MessageRecord{ID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, "cache", result.ModelUsed)
	assert.Equal(t, 1, client.calls)
}

func TestClassifyMessageLLMErrorDegrades(t *testing.T) {
	client := &stubTriageClient{err: errors.New("boom")}
	service := NewTriageService(client, nil, zap.NewNop(), false, 0)

	result, err := service.ClassifyMessage(context.Background(), &MessageRecord{ID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, TriageNonUrgent, result.Label)
	assert.Equal(t, "llm_error: boom", result.Reason)
	assert.Equal(t, "fallback", result.ModelUsed)
}

func TestClassifyAllTally(t *testing.T) {
	client := &stubTriageClient{labels: map[string]TriageLabel{
		"m1": TriageUrgent,
		"m2": TriagePromo,
		"m3": TriageNonUrgent,
		"m4": TriageUrgent,
	}}
	service := NewTriageService(client, nil, zap.NewNop(), false, 0)

	records := []MessageRecord{{ID: "m1"}, {ID: "m2"}, {ID: "m3"}, {ID: "m4"}}
	results, summary, err := service.ClassifyAll(context.Background(), records)
	require.NoError(t, err)
	assert.Len(t, results, 4)
	assert.Equal(t, TriageSummary{Urgent: 2, NonUrgent: 1, Promo: 1, Total: 4}, summary)
}

func TestClassifyAllHonorsCancellation(t *testing.T) {
	client := &stubTriageClient{}
	service := NewTriageService(client, nil, zap.NewNop(), false, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := service.ClassifyAll(ctx, []MessageRecord{{ID: "m1"}})
	assert.ErrorIs(t, err, context.Canceled)
}
