package core

import (
	"math"
	"sort"

	"go.uber.org/zap"
)

// Quantile computes the q-th quantile of values using linear interpolation
// between order statistics (the same convention as NumPy's default). The
// boolean result is false when no values are available. q is clamped to
// [0, 1].
func Quantile(values []float64, q float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower], true
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower]), true
}

// ThresholdDeriver computes percentile-based cut points over the full
// sender population. Thresholds are derived fresh for every run and must
// only be computed once aggregation has seen the complete population.
type ThresholdDeriver struct {
	logger *zap.Logger
}

// NewThresholdDeriver creates a new threshold deriver.
func NewThresholdDeriver(logger *zap.Logger) *ThresholdDeriver {
	return &ThresholdDeriver{logger: logger}
}

// Derive computes the ThresholdSet for the given profiles. Each tracked
// metric contributes its keys only when at least one sender has a defined
// value for it; an empty population yields an empty set.
func (d *ThresholdDeriver) Derive(profiles map[string]*SenderProfile) ThresholdSet {
	thresholds := make(ThresholdSet)
	if len(profiles) == 0 {
		return thresholds
	}

	engagement := make([]float64, 0, len(profiles))
	readRates := make([]float64, 0, len(profiles))
	promoRatios := make([]float64, 0, len(profiles))
	freqs := make([]float64, 0, len(profiles))
	for _, p := range profiles {
		engagement = append(engagement, p.EngagementScore)
		readRates = append(readRates, p.ReadRate)
		promoRatios = append(promoRatios, p.PromoRatio)
		freqs = append(freqs, p.EmailsPerDay)
	}

	// Low engagement is the bottom tail of the engagement distribution.
	if v, ok := Quantile(engagement, 0.25); ok {
		thresholds[ThresholdLowEngagement] = v
	}
	if v, ok := Quantile(engagement, 0.10); ok {
		thresholds[ThresholdVeryLowEngagement] = v
	}

	// Unread-rate thresholds come from the complement of the read-rate
	// distribution: the senders read the least sit at the low read-rate
	// quantiles.
	if v, ok := Quantile(readRates, 0.25); ok {
		thresholds[ThresholdHighUnreadRate] = 1 - v
	}
	if v, ok := Quantile(readRates, 0.10); ok {
		thresholds[ThresholdVeryHighUnreadRate] = 1 - v
	}

	// Promo ratio and frequency are "high is bad" metrics with upper-tail
	// cut points.
	if v, ok := Quantile(promoRatios, 0.75); ok {
		thresholds[ThresholdHighPromo] = v
	}
	if v, ok := Quantile(promoRatios, 0.90); ok {
		thresholds[ThresholdVeryHighPromo] = v
	}
	if v, ok := Quantile(freqs, 0.75); ok {
		thresholds[ThresholdHighFrequency] = v
	}
	if v, ok := Quantile(freqs, 0.90); ok {
		thresholds[ThresholdVeryHighFrequency] = v
	}

	// Medians double as the newsletter-identification thresholds.
	if v, ok := Quantile(promoRatios, 0.5); ok {
		thresholds[ThresholdNewsletterPromo] = v
	}
	if v, ok := Quantile(freqs, 0.5); ok {
		thresholds[ThresholdNewsletterFrequency] = v
	}

	d.logger.Info("Derived data-driven thresholds",
		zap.Int("senders", len(profiles)),
		zap.Int("keys", len(thresholds)))
	for _, key := range sortedThresholdKeys(thresholds) {
		d.logger.Debug("Threshold", zap.String("key", key), zap.Float64("value", thresholds[key]))
	}

	return thresholds
}

func sortedThresholdKeys(t ThresholdSet) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
