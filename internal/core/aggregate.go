package core

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// AggregateOptions controls how the dataset is grouped.
type AggregateOptions struct {
	// FocusInbox restricts aggregation to records whose SourceInbox matches.
	// Empty means no filtering. A filter that matches nothing yields an
	// empty profile map, not an error.
	FocusInbox string
}

// Aggregator reduces a message dataset to per-sender profiles. Grouping is
// by the raw sender string exactly as it appears; display-name variants of
// the same mailbox are distinct senders.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates a new aggregator.
func NewAggregator(logger *zap.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate groups records by sender and computes summary statistics for
// each group. Records with an empty sender are dropped before grouping; the
// dropped count is returned alongside the profiles. An empty input produces
// an empty map.
func (a *Aggregator) Aggregate(records []MessageRecord, opts AggregateOptions) (map[string]*SenderProfile, int) {
	profiles := make(map[string]*SenderProfile)
	dropped := 0

	for i := range records {
		rec := &records[i]
		if rec.Sender == "" {
			dropped++
			continue
		}
		if opts.FocusInbox != "" && rec.SourceInbox != opts.FocusInbox {
			continue
		}

		p, ok := profiles[rec.Sender]
		if !ok {
			p = &SenderProfile{
				Sender:         rec.Sender,
				Domain:         rec.Domain,
				FirstEmailDate: rec.ArrivalTime,
				LastEmailDate:  rec.ArrivalTime,
			}
			profiles[rec.Sender] = p
		}

		p.TotalEmails++
		if rec.Unread {
			p.UnreadCount++
		}
		if rec.Starred {
			p.StarredCount++
		}
		if rec.Important {
			p.ImportantCount++
		}
		if rec.Promotions {
			p.PromotionsCount++
		}
		if rec.Updates {
			p.UpdatesCount++
		}
		if rec.Social {
			p.SocialCount++
		}
		if rec.Forums {
			p.ForumsCount++
		}
		if rec.Personal {
			p.PersonalCount++
		}
		if rec.HasUnsubscribe() {
			p.UnsubscribeCount++
		}
		if rec.ArrivalTime.Before(p.FirstEmailDate) {
			p.FirstEmailDate = rec.ArrivalTime
		}
		if rec.ArrivalTime.After(p.LastEmailDate) {
			p.LastEmailDate = rec.ArrivalTime
		}
	}

	for _, p := range profiles {
		finalizeProfile(p)
	}
	markLikelyNewsletters(profiles)

	if dropped > 0 {
		a.logger.Warn("Dropped records without a sender", zap.Int("dropped", dropped))
	}
	a.logger.Info("Aggregated sender profiles",
		zap.Int("senders", len(profiles)),
		zap.Int("records", len(records)),
		zap.String("focus_inbox", opts.FocusInbox))

	return profiles, dropped
}

// finalizeProfile computes the derived engagement metrics. TotalEmails is
// always >= 1 here since a profile only exists once a record was seen.
func finalizeProfile(p *SenderProfile) {
	total := float64(p.TotalEmails)
	p.ReadRate = (total - float64(p.UnreadCount)) / total
	p.EngagementScore = 0.4*float64(p.StarredCount) + 0.3*float64(p.ImportantCount) + 0.3*p.ReadRate

	days := int(p.LastEmailDate.Sub(p.FirstEmailDate) / (24 * time.Hour))
	if days < 1 {
		days = 1
	}
	p.DaysActive = days
	p.EmailsPerDay = total / float64(days)

	p.PromoRatio = float64(p.PromotionsCount) / total
	p.UpdateRatio = float64(p.UpdatesCount) / total
	p.SocialRatio = float64(p.SocialCount) / total
}

// markLikelyNewsletters sets the newsletter heuristic against the
// population medians: above-median promo ratio, above-median frequency, or
// any unsubscribe header ever seen.
func markLikelyNewsletters(profiles map[string]*SenderProfile) {
	if len(profiles) == 0 {
		return
	}
	promoRatios := make([]float64, 0, len(profiles))
	freqs := make([]float64, 0, len(profiles))
	for _, p := range profiles {
		promoRatios = append(promoRatios, p.PromoRatio)
		freqs = append(freqs, p.EmailsPerDay)
	}
	promoMedian, _ := Quantile(promoRatios, 0.5)
	freqMedian, _ := Quantile(freqs, 0.5)

	for _, p := range profiles {
		p.IsLikelyNewsletter = p.PromoRatio > promoMedian ||
			p.UnsubscribeCount > 0 ||
			p.EmailsPerDay > freqMedian
	}
}

// SortedSenders returns the profile keys in lexical order. Scoring iterates
// in this order so repeated runs over the same dataset produce identical
// output.
func SortedSenders(profiles map[string]*SenderProfile) []string {
	senders := make([]string, 0, len(profiles))
	for sender := range profiles {
		senders = append(senders, sender)
	}
	sort.Strings(senders)
	return senders
}
