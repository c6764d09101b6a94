package core

import (
	"time"
)

// MessageRecord is one message's metadata as delivered by a mailbox
// collector. The engine treats it as read-only input.
type MessageRecord struct {
	ID              string
	Sender          string
	Domain          string
	SourceInbox     string
	Subject         string
	Snippet         string
	ArrivalTime     time.Time
	Unread          bool
	Starred         bool
	Important       bool
	Promotions      bool
	Updates         bool
	Social          bool
	Forums          bool
	Personal        bool
	ListUnsubscribe string
}

// HasUnsubscribe reports whether the message carried a List-Unsubscribe header.
func (m *MessageRecord) HasUnsubscribe() bool {
	return m.ListUnsubscribe != ""
}

// SenderProfile holds the aggregate statistics for one distinct sender.
// Profiles are immutable once built and are rebuilt from scratch each run.
type SenderProfile struct {
	Sender             string
	Domain             string
	TotalEmails        int
	UnreadCount        int
	StarredCount       int
	ImportantCount     int
	PromotionsCount    int
	UpdatesCount       int
	SocialCount        int
	ForumsCount        int
	PersonalCount      int
	UnsubscribeCount   int
	FirstEmailDate     time.Time
	LastEmailDate      time.Time
	ReadRate           float64
	EngagementScore    float64
	DaysActive         int
	EmailsPerDay       float64
	PromoRatio         float64
	UpdateRatio        float64
	SocialRatio        float64
	IsLikelyNewsletter bool
}

// UnreadRate is the complement of the read rate.
func (p *SenderProfile) UnreadRate() float64 {
	return 1 - p.ReadRate
}

// Threshold keys produced by DeriveThresholds.
const (
	ThresholdLowEngagement       = "low_engagement"
	ThresholdVeryLowEngagement   = "very_low_engagement"
	ThresholdHighUnreadRate      = "high_unread_rate"
	ThresholdVeryHighUnreadRate  = "very_high_unread_rate"
	ThresholdHighPromo           = "high_promo"
	ThresholdVeryHighPromo       = "very_high_promo"
	ThresholdHighFrequency       = "high_frequency"
	ThresholdVeryHighFrequency   = "very_high_frequency"
	ThresholdNewsletterPromo     = "newsletter_promo_threshold"
	ThresholdNewsletterFrequency = "newsletter_frequency_threshold"
)

// ThresholdSet maps cut-point names to values derived from the current
// sender population. A metric with too few defined samples simply has no
// keys in the set; scoring treats a missing key as "signal unavailable".
// The set is scoped to a single run and never shared across mailboxes.
type ThresholdSet map[string]float64

// Get returns the named threshold and whether it is present.
func (t ThresholdSet) Get(key string) (float64, bool) {
	v, ok := t[key]
	return v, ok
}

// GetOr returns the named threshold, or fallback when absent.
func (t ThresholdSet) GetOr(key string, fallback float64) float64 {
	if v, ok := t[key]; ok {
		return v
	}
	return fallback
}

// ConfidenceTier summarizes how extreme a sender's metrics were relative to
// the derived thresholds.
type ConfidenceTier string

const (
	ConfidenceLow    ConfidenceTier = "low"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceHigh   ConfidenceTier = "high"
)

// rank orders tiers for the monotonic-max merge used during scoring.
func (c ConfidenceTier) rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// AtLeast returns the higher of the two tiers. Confidence only ever moves
// upward while scoring rules are applied.
func (c ConfidenceTier) AtLeast(floor ConfidenceTier) ConfidenceTier {
	if floor.rank() > c.rank() {
		return floor
	}
	return c
}

// Recommendation is one scored sender, never mutated after creation.
type Recommendation struct {
	Sender              string         `json:"sender"`
	Domain              string         `json:"domain"`
	RecommendationScore float64        `json:"recommendation_score"`
	Confidence          ConfidenceTier `json:"confidence"`
	Reasons             []string       `json:"reasons"`
	TotalEmails         int            `json:"total_emails"`
	EngagementScore     float64        `json:"engagement_score"`
	ReadRate            float64        `json:"read_rate"`
	PromoRatio          float64        `json:"promo_ratio"`
	EmailsPerDay        float64        `json:"emails_per_day"`
	DaysActive          int            `json:"days_active"`
	IsLikelyNewsletter  bool           `json:"is_likely_newsletter"`
	ThresholdsUsed      ThresholdSet   `json:"thresholds_used"`
}

// InboxInsight summarizes one source-inbox category of the dataset.
type InboxInsight struct {
	SourceInbox      string  `json:"source_inbox"`
	TotalEmails      int     `json:"total_emails"`
	UnreadCount      int     `json:"unread_count"`
	UnreadRate       float64 `json:"unread_rate"`
	PromotionsCount  int     `json:"promotions_count"`
	UpdatesCount     int     `json:"updates_count"`
	SocialCount      int     `json:"social_count"`
	ForumsCount      int     `json:"forums_count"`
	PersonalCount    int     `json:"personal_count"`
	UnsubscribeCount int     `json:"unsubscribe_count"`
	ShareOfDataset   float64 `json:"share_of_dataset"`
}

// AnalysisResult is everything one engine run produced.
type AnalysisResult struct {
	RunID           string
	AnalyzedAt      time.Time
	TotalMessages   int
	DroppedMessages int
	Profiles        map[string]*SenderProfile
	Thresholds      ThresholdSet
	Recommendations []Recommendation
	Links           map[string][]string
	Insights        []InboxInsight
}

// TriageLabel classifies a message's urgency.
type TriageLabel string

const (
	TriageUrgent    TriageLabel = "urgent"
	TriageNonUrgent TriageLabel = "non-urgent"
	TriagePromo     TriageLabel = "promo"
)

// ValidTriageLabel reports whether s is one of the known labels.
func ValidTriageLabel(s string) bool {
	switch TriageLabel(s) {
	case TriageUrgent, TriageNonUrgent, TriagePromo:
		return true
	}
	return false
}

// TriageResult is the verdict for a single message.
type TriageResult struct {
	MessageID    string
	Label        TriageLabel
	Reason       string
	ModelUsed    string
	ClassifiedAt time.Time
}

// TriageCacheEntry is a cached triage verdict keyed by message ID.
type TriageCacheEntry struct {
	MessageID    string
	Label        TriageLabel
	Reason       string
	ModelUsed    string
	ClassifiedAt time.Time
	ExpiresAt    time.Time
}

// TriageSummary tallies labels across one triage run.
type TriageSummary struct {
	Urgent    int
	NonUrgent int
	Promo     int
	Total     int
}
