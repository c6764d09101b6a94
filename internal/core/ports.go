package core

import (
	"context"
)

// TriageClient defines the interface for LLM-backed urgency classification
type TriageClient interface {
	// ClassifyMessage labels a single message as urgent, non-urgent or promo
	ClassifyMessage(ctx context.Context, msg *MessageRecord) (*TriageResult, error)
}

// TriageCache defines the interface for caching triage verdicts per message
type TriageCache interface {
	// Get retrieves a cached verdict for a message ID
	Get(ctx context.Context, messageID string) (*TriageCacheEntry, error)

	// Set stores a verdict
	Set(ctx context.Context, entry *TriageCacheEntry) error

	// Delete removes a cached verdict
	Delete(ctx context.Context, messageID string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
