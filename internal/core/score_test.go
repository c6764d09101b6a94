package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func scoringThresholds() ThresholdSet {
	return ThresholdSet{
		ThresholdLowEngagement:      0.2,
		ThresholdVeryLowEngagement:  0.1,
		ThresholdHighUnreadRate:     0.7,
		ThresholdVeryHighUnreadRate: 0.9,
		ThresholdHighPromo:          0.5,
		ThresholdVeryHighPromo:      0.8,
		ThresholdHighFrequency:      1.0,
		ThresholdVeryHighFrequency:  3.0,
	}
}

func TestScoreSenderAllSignalsExtreme(t *testing.T) {
	scorer := NewScorer(zap.NewNop(), 5)
	p := &SenderProfile{
		Sender:           "blast@x.com",
		Domain:           "x.com",
		TotalEmails:      10,
		EngagementScore:  0.05,
		ReadRate:         0.05,
		PromoRatio:       0.9,
		EmailsPerDay:     5,
		UnsubscribeCount: 2,
		DaysActive:       2,
	}

	rec, ok := scorer.ScoreSender(p, scoringThresholds())
	require.True(t, ok)

	// 0.4 + 0.3 + 0.3 + 0.2 + 0.1
	assert.InDelta(t, 1.3, rec.RecommendationScore, 1e-9)
	assert.Equal(t, ConfidenceHigh, rec.Confidence)
	assert.Equal(t, []string{
		"Very low engagement (bottom 10%: 0.050)",
		"Very high unread rate (top 10%: 95.0%)",
		"Very high promotional content (top 10%: 90.0%)",
		"Very high frequency (top 10%: 5.000 emails/day)",
		"Has unsubscribe link",
	}, rec.Reasons)
}

func TestScoreSenderLooseTiers(t *testing.T) {
	scorer := NewScorer(zap.NewNop(), 5)
	p := &SenderProfile{
		Sender:          "mild@x.com",
		TotalEmails:     6,
		EngagementScore: 0.15, // below low, above very-low
		ReadRate:        0.25, // unread 0.75: above high, below very-high
		PromoRatio:      0.6,  // above high, below very-high
		EmailsPerDay:    2,    // above high, below very-high
	}

	rec, ok := scorer.ScoreSender(p, scoringThresholds())
	require.True(t, ok)

	// 0.3 + 0.2 + 0.2 + 0.1
	assert.InDelta(t, 0.8, rec.RecommendationScore, 1e-9)
	assert.Equal(t, ConfidenceMedium, rec.Confidence)
	assert.Equal(t, []string{
		"Low engagement (bottom 25%: 0.150)",
		"High unread rate (top 25%: 75.0%)",
		"High promotional content (top 25%: 60.0%)",
		"High frequency (top 25%: 2.000 emails/day)",
	}, rec.Reasons)
}

func TestScoreSenderConfidenceNeverDecreases(t *testing.T) {
	scorer := NewScorer(zap.NewNop(), 5)
	// Very low engagement (high confidence) followed by loose-tier signals
	// must still report high confidence.
	p := &SenderProfile{
		Sender:          "mixed@x.com",
		TotalEmails:     6,
		EngagementScore: 0.05,
		ReadRate:        0.25,
		PromoRatio:      0,
		EmailsPerDay:    0.1,
	}

	rec, ok := scorer.ScoreSender(p, scoringThresholds())
	require.True(t, ok)
	assert.Equal(t, ConfidenceHigh, rec.Confidence)
}

func TestScoreSenderBelowMinEmails(t *testing.T) {
	scorer := NewScorer(zap.NewNop(), 5)
	p := &SenderProfile{
		Sender:          "rare@x.com",
		TotalEmails:     4,
		EngagementScore: 0.01,
		ReadRate:        0,
		PromoRatio:      1,
		EmailsPerDay:    9,
	}

	_, ok := scorer.ScoreSender(p, scoringThresholds())
	assert.False(t, ok)
}

func TestScoreSenderInclusionCutoff(t *testing.T) {
	scorer := NewScorer(zap.NewNop(), 5)

	// Unsubscribe link alone scores 0.1 and is dropped.
	weak := &SenderProfile{
		Sender:           "weak@x.com",
		TotalEmails:      10,
		EngagementScore:  0.9,
		ReadRate:         1,
		UnsubscribeCount: 1,
	}
	_, ok := scorer.ScoreSender(weak, scoringThresholds())
	assert.False(t, ok)

	// A single loose-tier engagement hit lands exactly on the cutoff.
	boundary := &SenderProfile{
		Sender:          "boundary@x.com",
		TotalEmails:     10,
		EngagementScore: 0.15,
		ReadRate:        1,
	}
	rec, ok := scorer.ScoreSender(boundary, scoringThresholds())
	require.True(t, ok)
	assert.InDelta(t, 0.3, rec.RecommendationScore, 1e-9)
}

func TestScoreSenderMissingFrequencyTier(t *testing.T) {
	scorer := NewScorer(zap.NewNop(), 5)
	thresholds := ThresholdSet{
		ThresholdLowEngagement: 0.2,
		ThresholdHighFrequency: 1.0,
		// No very_high_frequency: the strict tier cannot trigger.
	}
	p := &SenderProfile{
		Sender:          "freq@x.com",
		TotalEmails:     10,
		EngagementScore: 0.15,
		ReadRate:        1,
		EmailsPerDay:    100,
	}

	rec, ok := scorer.ScoreSender(p, thresholds)
	require.True(t, ok)
	assert.Contains(t, rec.Reasons, "High frequency (top 25%: 100.000 emails/day)")
	for _, reason := range rec.Reasons {
		assert.NotContains(t, reason, "Very high frequency")
	}
}

func TestScoreOrderingAndDeterminism(t *testing.T) {
	scorer := NewScorer(zap.NewNop(), 5)
	profiles := map[string]*SenderProfile{
		"strong@x.com": {
			Sender: "strong@x.com", TotalEmails: 10,
			EngagementScore: 0.05, ReadRate: 0.05, PromoRatio: 0.9, EmailsPerDay: 5,
		},
		// Two senders with identical metrics tie on score; lexical sender
		// order breaks the tie.
		"tie-b@x.com": {
			Sender: "tie-b@x.com", TotalEmails: 10,
			EngagementScore: 0.15, ReadRate: 1,
		},
		"tie-a@x.com": {
			Sender: "tie-a@x.com", TotalEmails: 10,
			EngagementScore: 0.15, ReadRate: 1,
		},
	}

	first := scorer.Score(profiles, scoringThresholds())
	require.Len(t, first, 3)
	assert.Equal(t, "strong@x.com", first[0].Sender)
	assert.Equal(t, "tie-a@x.com", first[1].Sender)
	assert.Equal(t, "tie-b@x.com", first[2].Sender)

	// Same inputs, same output, byte for byte.
	second := scorer.Score(profiles, scoringThresholds())
	assert.Equal(t, first, second)
}

func TestScoreEmptyInputs(t *testing.T) {
	scorer := NewScorer(zap.NewNop(), 5)
	assert.Nil(t, scorer.Score(nil, scoringThresholds()))
	assert.Nil(t, scorer.Score(map[string]*SenderProfile{
		"a@x.com": {Sender: "a@x.com", TotalEmails: 10},
	}, ThresholdSet{}))
}

func TestNewScorerMinEmailsFallback(t *testing.T) {
	scorer := NewScorer(zap.NewNop(), 0)
	assert.Equal(t, DefaultMinEmails, scorer.minEmails)
}
