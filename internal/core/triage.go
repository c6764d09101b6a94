package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TriageService labels messages by urgency via an LLM client, with an
// optional per-message verdict cache in front of it.
type TriageService struct {
	client       TriageClient
	cache        TriageCache
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
}

// NewTriageService creates a new triage service.
func NewTriageService(
	client TriageClient,
	cache TriageCache,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
) *TriageService {
	return &TriageService{
		client:       client,
		cache:        cache,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
	}
}

// ClassifyMessage returns the triage verdict for a single message. A
// failing LLM call degrades to a non-urgent verdict carrying the error
// text, mirroring how a daily triage run should never abort on one message.
func (s *TriageService) ClassifyMessage(ctx context.Context, msg *MessageRecord) (*TriageResult, error) {
	if s.cacheEnabled && msg.ID != "" {
		if entry, err := s.cache.Get(ctx, msg.ID); err == nil {
			s.logger.Debug("Cache hit for message", zap.String("message_id", msg.ID))
			return &TriageResult{
				MessageID:    msg.ID,
				Label:        entry.Label,
				Reason:       entry.Reason,
				ModelUsed:    "cache",
				ClassifiedAt: time.Now(),
			}, nil
		}
	}

	result, err := s.client.ClassifyMessage(ctx, msg)
	if err != nil {
		s.logger.Warn("Triage classification failed, defaulting to non-urgent",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return &TriageResult{
			MessageID:    msg.ID,
			Label:        TriageNonUrgent,
			Reason:       "llm_error: " + err.Error(),
			ModelUsed:    "fallback",
			ClassifiedAt: time.Now(),
		}, nil
	}

	if s.cacheEnabled && msg.ID != "" {
		entry := &TriageCacheEntry{
			MessageID:    msg.ID,
			Label:        result.Label,
			Reason:       result.Reason,
			ModelUsed:    result.ModelUsed,
			ClassifiedAt: result.ClassifiedAt,
			ExpiresAt:    time.Now().Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update triage cache", zap.Error(err))
		}
	}

	return result, nil
}

// ClassifyAll labels every record in order, honoring ctx cancellation
// between messages, and returns the verdicts plus a label tally.
func (s *TriageService) ClassifyAll(ctx context.Context, records []MessageRecord) ([]TriageResult, TriageSummary, error) {
	var results []TriageResult
	var summary TriageSummary

	for i := range records {
		if err := ctx.Err(); err != nil {
			return results, summary, err
		}
		result, err := s.ClassifyMessage(ctx, &records[i])
		if err != nil {
			return results, summary, err
		}
		results = append(results, *result)
		summary.Total++
		switch result.Label {
		case TriageUrgent:
			summary.Urgent++
		case TriagePromo:
			summary.Promo++
		default:
			summary.NonUrgent++
		}
	}

	s.logger.Info("Triage run complete",
		zap.Int("total", summary.Total),
		zap.Int("urgent", summary.Urgent),
		zap.Int("non_urgent", summary.NonUrgent),
		zap.Int("promo", summary.Promo))

	return results, summary, nil
}
