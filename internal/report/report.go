package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/mikey/smart-unsubscribe/internal/core"
)

// Priority bands for the human-readable report.
const (
	highPriorityCutoff   = 0.8
	mediumPriorityCutoff = 0.6
)

// RenderMarkdown produces the human-readable unsubscribe report:
// recommendations grouped into three priority bands, per-sender detail and
// a trailing section with the exact threshold values used, so a reader can
// audit why each sender was flagged.
func RenderMarkdown(result *core.AnalysisResult) string {
	if len(result.Recommendations) == 0 {
		return "No unsubscribe recommendations found.\n"
	}

	var b strings.Builder
	b.WriteString("# Unsubscribe Recommendations Report\n\n")
	fmt.Fprintf(&b, "Generated on: %s\n", result.AnalyzedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Run ID: %s\n", result.RunID)
	fmt.Fprintf(&b, "Total recommendations: %d\n\n", len(result.Recommendations))

	var high, medium, low []core.Recommendation
	for _, rec := range result.Recommendations {
		switch {
		case rec.RecommendationScore >= highPriorityCutoff:
			high = append(high, rec)
		case rec.RecommendationScore >= mediumPriorityCutoff:
			medium = append(medium, rec)
		default:
			low = append(low, rec)
		}
	}

	if len(high) > 0 {
		b.WriteString("## High Priority (Strongly Recommended)\n\n")
		writeRecommendations(&b, high, result.Links)
	}
	if len(medium) > 0 {
		b.WriteString("## Medium Priority (Consider Unsubscribing)\n\n")
		writeRecommendations(&b, medium, result.Links)
	}
	if len(low) > 0 {
		b.WriteString("## Low Priority (Optional)\n\n")
		writeRecommendations(&b, low, result.Links)
	}

	b.WriteString("## Summary Statistics\n\n")
	fmt.Fprintf(&b, "- High priority: %d\n", len(high))
	fmt.Fprintf(&b, "- Medium priority: %d\n", len(medium))
	fmt.Fprintf(&b, "- Low priority: %d\n", len(low))
	totalEmails := 0
	for _, rec := range result.Recommendations {
		totalEmails += rec.TotalEmails
	}
	fmt.Fprintf(&b, "- Total emails from recommended senders: %d\n", totalEmails)
	fmt.Fprintf(&b, "- Potential inbox reduction: %d emails\n\n", totalEmails)

	writeThresholds(&b, result.Thresholds)

	return b.String()
}

func writeRecommendations(b *strings.Builder, recs []core.Recommendation, links map[string][]string) {
	for _, rec := range recs {
		fmt.Fprintf(b, "### %s\n\n", rec.Sender)
		fmt.Fprintf(b, "- **Domain**: %s\n", rec.Domain)
		fmt.Fprintf(b, "- **Score**: %.2f\n", rec.RecommendationScore)
		fmt.Fprintf(b, "- **Confidence**: %s\n", rec.Confidence)
		fmt.Fprintf(b, "- **Total emails**: %d\n", rec.TotalEmails)
		fmt.Fprintf(b, "- **Engagement**: %.2f\n", rec.EngagementScore)
		fmt.Fprintf(b, "- **Read rate**: %.1f%%\n", rec.ReadRate*100)
		fmt.Fprintf(b, "- **Promo ratio**: %.1f%%\n", rec.PromoRatio*100)
		fmt.Fprintf(b, "- **Frequency**: %.2f emails/day\n", rec.EmailsPerDay)
		fmt.Fprintf(b, "- **Active for**: %d days\n", rec.DaysActive)
		if len(rec.Reasons) > 0 {
			fmt.Fprintf(b, "- **Reasons**: %s\n", strings.Join(rec.Reasons, ", "))
		}
		if senderLinks := links[rec.Sender]; len(senderLinks) > 0 {
			fmt.Fprintf(b, "- **Unsubscribe links**: %d found\n", len(senderLinks))
			for i, link := range senderLinks {
				if i >= 3 {
					fmt.Fprintf(b, "  ... and %d more\n", len(senderLinks)-3)
					break
				}
				fmt.Fprintf(b, "  %d. %s\n", i+1, link)
			}
		}
		b.WriteString("\n")
	}
}

func writeThresholds(b *strings.Builder, thresholds core.ThresholdSet) {
	b.WriteString("## Data-Driven Thresholds Used\n\n")
	if v, ok := thresholds.Get(core.ThresholdLowEngagement); ok {
		fmt.Fprintf(b, "- **Low engagement threshold**: %.3f (25th percentile)\n", v)
	}
	if v, ok := thresholds.Get(core.ThresholdVeryLowEngagement); ok {
		fmt.Fprintf(b, "- **Very low engagement threshold**: %.3f (10th percentile)\n", v)
	}
	if v, ok := thresholds.Get(core.ThresholdHighUnreadRate); ok {
		fmt.Fprintf(b, "- **High unread rate threshold**: %.1f%% (75th percentile)\n", v*100)
	}
	if v, ok := thresholds.Get(core.ThresholdVeryHighUnreadRate); ok {
		fmt.Fprintf(b, "- **Very high unread rate threshold**: %.1f%% (90th percentile)\n", v*100)
	}
	if v, ok := thresholds.Get(core.ThresholdHighPromo); ok {
		fmt.Fprintf(b, "- **High promotional threshold**: %.1f%% (75th percentile)\n", v*100)
	}
	if v, ok := thresholds.Get(core.ThresholdVeryHighPromo); ok {
		fmt.Fprintf(b, "- **Very high promotional threshold**: %.1f%% (90th percentile)\n", v*100)
	}
	if v, ok := thresholds.Get(core.ThresholdHighFrequency); ok {
		fmt.Fprintf(b, "- **High frequency threshold**: %.3f emails/day (75th percentile)\n", v)
	}
	if v, ok := thresholds.Get(core.ThresholdVeryHighFrequency); ok {
		fmt.Fprintf(b, "- **Very high frequency threshold**: %.3f emails/day (90th percentile)\n", v)
	}
	if v, ok := thresholds.Get(core.ThresholdNewsletterPromo); ok {
		fmt.Fprintf(b, "- **Newsletter promo threshold**: %.1f%% (median)\n", v*100)
	}
	if v, ok := thresholds.Get(core.ThresholdNewsletterFrequency); ok {
		fmt.Fprintf(b, "- **Newsletter frequency threshold**: %.3f emails/day (median)\n", v)
	}
	b.WriteString("\nThese thresholds are calculated from the mailbox's actual data, not fixed constants.\n")
}

// RenderTriageMarkdown produces the daily triage report: the label tally
// plus the urgent items in full.
func RenderTriageMarkdown(dateLabel string, summary core.TriageSummary, records []core.MessageRecord, results []core.TriageResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Gmail Triage — %s\n\n", dateLabel)
	fmt.Fprintf(&b, "- **Urgent:** %d  |  **Non-urgent:** %d  |  **Promo:** %d  |  **Total:** %d\n\n",
		summary.Urgent, summary.NonUrgent, summary.Promo, summary.Total)

	bySender := make(map[string]*core.MessageRecord, len(records))
	for i := range records {
		bySender[records[i].ID] = &records[i]
	}

	b.WriteString("## Urgent\n\n")
	urgent := 0
	for _, r := range results {
		if r.Label != core.TriageUrgent {
			continue
		}
		urgent++
		msg := bySender[r.MessageID]
		if msg == nil {
			continue
		}
		fmt.Fprintf(&b, "- **%s** — from %s — %s  \n  %s\n",
			msg.Subject, msg.Sender, msg.ArrivalTime.Format(time.RFC1123Z),
			strings.ReplaceAll(msg.Snippet, "\n", " "))
	}
	if urgent == 0 {
		b.WriteString("_None_\n")
	}

	return b.String()
}
