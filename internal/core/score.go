package core

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Default scoring parameters.
const (
	// DefaultMinEmails is the minimum message count a sender needs before
	// it is considered for a recommendation.
	DefaultMinEmails = 5

	// inclusionCutoff is the cumulative score below which a sender is
	// silently dropped from the output.
	inclusionCutoff = 0.3
)

// ruleOutcome is one scoring rule's contribution: a score increment, a
// human-readable reason and a confidence floor, merged with monotonic-max
// so confidence never decreases across rules.
type ruleOutcome struct {
	increment       float64
	reason          string
	confidenceFloor ConfidenceTier
}

// scoringRule evaluates one signal for a sender against the thresholds.
// A nil result means the signal did not trigger or its threshold keys are
// absent from the set.
type scoringRule func(p *SenderProfile, t ThresholdSet) *ruleOutcome

// scoringRules is applied in this fixed order so output is reproducible.
var scoringRules = []scoringRule{
	engagementRule,
	unreadRateRule,
	promoContentRule,
	frequencyRule,
	unsubscribeBonusRule,
}

func engagementRule(p *SenderProfile, t ThresholdSet) *ruleOutcome {
	low, ok := t.Get(ThresholdLowEngagement)
	if !ok || p.EngagementScore > low {
		return nil
	}
	if p.EngagementScore <= t.GetOr(ThresholdVeryLowEngagement, 0) {
		return &ruleOutcome{
			increment:       0.4,
			reason:          fmt.Sprintf("Very low engagement (bottom 10%%: %.3f)", p.EngagementScore),
			confidenceFloor: ConfidenceHigh,
		}
	}
	return &ruleOutcome{
		increment:       0.3,
		reason:          fmt.Sprintf("Low engagement (bottom 25%%: %.3f)", p.EngagementScore),
		confidenceFloor: ConfidenceMedium,
	}
}

func unreadRateRule(p *SenderProfile, t ThresholdSet) *ruleOutcome {
	high, ok := t.Get(ThresholdHighUnreadRate)
	if !ok || p.UnreadRate() < high {
		return nil
	}
	if p.UnreadRate() >= t.GetOr(ThresholdVeryHighUnreadRate, 1) {
		return &ruleOutcome{
			increment:       0.3,
			reason:          fmt.Sprintf("Very high unread rate (top 10%%: %s)", fmtPercent(p.UnreadRate())),
			confidenceFloor: ConfidenceHigh,
		}
	}
	return &ruleOutcome{
		increment:       0.2,
		reason:          fmt.Sprintf("High unread rate (top 25%%: %s)", fmtPercent(p.UnreadRate())),
		confidenceFloor: ConfidenceMedium,
	}
}

func promoContentRule(p *SenderProfile, t ThresholdSet) *ruleOutcome {
	high, ok := t.Get(ThresholdHighPromo)
	if !ok || p.PromoRatio < high {
		return nil
	}
	if p.PromoRatio >= t.GetOr(ThresholdVeryHighPromo, 1) {
		return &ruleOutcome{
			increment:       0.3,
			reason:          fmt.Sprintf("Very high promotional content (top 10%%: %s)", fmtPercent(p.PromoRatio)),
			confidenceFloor: ConfidenceHigh,
		}
	}
	return &ruleOutcome{
		increment:       0.2,
		reason:          fmt.Sprintf("High promotional content (top 25%%: %s)", fmtPercent(p.PromoRatio)),
		confidenceFloor: ConfidenceMedium,
	}
}

func frequencyRule(p *SenderProfile, t ThresholdSet) *ruleOutcome {
	high, ok := t.Get(ThresholdHighFrequency)
	if !ok || p.EmailsPerDay < high {
		return nil
	}
	if veryHigh, ok := t.Get(ThresholdVeryHighFrequency); ok && p.EmailsPerDay >= veryHigh {
		return &ruleOutcome{
			increment:       0.2,
			reason:          fmt.Sprintf("Very high frequency (top 10%%: %.3f emails/day)", p.EmailsPerDay),
			confidenceFloor: ConfidenceHigh,
		}
	}
	return &ruleOutcome{
		increment:       0.1,
		reason:          fmt.Sprintf("High frequency (top 25%%: %.3f emails/day)", p.EmailsPerDay),
		confidenceFloor: ConfidenceMedium,
	}
}

func unsubscribeBonusRule(p *SenderProfile, t ThresholdSet) *ruleOutcome {
	if p.UnsubscribeCount == 0 {
		return nil
	}
	// Easier to act on, but says nothing about confidence.
	return &ruleOutcome{
		increment:       0.1,
		reason:          "Has unsubscribe link",
		confidenceFloor: ConfidenceLow,
	}
}

func fmtPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// Scorer turns sender profiles plus a derived ThresholdSet into ranked
// unsubscribe recommendations.
type Scorer struct {
	logger    *zap.Logger
	minEmails int
}

// NewScorer creates a scorer. minEmails values below 1 fall back to the
// default.
func NewScorer(logger *zap.Logger, minEmails int) *Scorer {
	if minEmails < 1 {
		minEmails = DefaultMinEmails
	}
	return &Scorer{logger: logger, minEmails: minEmails}
}

// ScoreSender evaluates a single profile against the thresholds. The
// boolean result is false when the sender falls below the minimum message
// count or the inclusion cutoff.
func (s *Scorer) ScoreSender(p *SenderProfile, thresholds ThresholdSet) (Recommendation, bool) {
	if p.TotalEmails < s.minEmails {
		return Recommendation{}, false
	}

	score := 0.0
	confidence := ConfidenceLow
	var reasons []string
	for _, rule := range scoringRules {
		outcome := rule(p, thresholds)
		if outcome == nil {
			continue
		}
		score += outcome.increment
		reasons = append(reasons, outcome.reason)
		confidence = confidence.AtLeast(outcome.confidenceFloor)
	}

	if score < inclusionCutoff {
		return Recommendation{}, false
	}

	return Recommendation{
		Sender:              p.Sender,
		Domain:              p.Domain,
		RecommendationScore: score,
		Confidence:          confidence,
		Reasons:             reasons,
		TotalEmails:         p.TotalEmails,
		EngagementScore:     p.EngagementScore,
		ReadRate:            p.ReadRate,
		PromoRatio:          p.PromoRatio,
		EmailsPerDay:        p.EmailsPerDay,
		DaysActive:          p.DaysActive,
		IsLikelyNewsletter:  p.IsLikelyNewsletter,
		ThresholdsUsed:      thresholds,
	}, true
}

// Score evaluates every profile and returns recommendations sorted by score
// descending. Ties keep the lexical sender order the profiles were visited
// in, so the output is stable across runs. An empty ThresholdSet
// short-circuits to no recommendations.
func (s *Scorer) Score(profiles map[string]*SenderProfile, thresholds ThresholdSet) []Recommendation {
	if len(profiles) == 0 || len(thresholds) == 0 {
		return nil
	}

	var recs []Recommendation
	for _, sender := range SortedSenders(profiles) {
		if rec, ok := s.ScoreSender(profiles[sender], thresholds); ok {
			recs = append(recs, rec)
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].RecommendationScore > recs[j].RecommendationScore
	})

	s.logger.Info("Generated unsubscribe recommendations",
		zap.Int("senders", len(profiles)),
		zap.Int("recommendations", len(recs)),
		zap.Int("min_emails", s.minEmails))

	return recs
}
