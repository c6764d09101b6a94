package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func day(d int, hour int) time.Time {
	return time.Date(2026, 3, d, hour, 0, 0, 0, time.UTC)
}

func TestAggregateGroupsByRawSender(t *testing.T) {
	agg := NewAggregator(zap.NewNop())
	records := []MessageRecord{
		{ID: "1", Sender: "news@example.com", ArrivalTime: day(1, 9)},
		{ID: "2", Sender: "news@example.com", ArrivalTime: day(2, 9)},
		{ID: "3", Sender: "other@example.com", ArrivalTime: day(1, 9)},
	}

	profiles, dropped := agg.Aggregate(records, AggregateOptions{})
	require.Len(t, profiles, 2)
	assert.Zero(t, dropped)
	assert.Equal(t, 2, profiles["news@example.com"].TotalEmails)
	assert.Equal(t, 1, profiles["other@example.com"].TotalEmails)
}

func TestAggregateDropsEmptySenders(t *testing.T) {
	agg := NewAggregator(zap.NewNop())
	records := []MessageRecord{
		{ID: "1", Sender: "", ArrivalTime: day(1, 9)},
		{ID: "2", Sender: "a@x.com", ArrivalTime: day(1, 9)},
		{ID: "3", Sender: "", ArrivalTime: day(1, 9)},
	}

	profiles, dropped := agg.Aggregate(records, AggregateOptions{})
	assert.Len(t, profiles, 1)
	assert.Equal(t, 2, dropped)
}

func TestAggregateEmptyInput(t *testing.T) {
	agg := NewAggregator(zap.NewNop())
	profiles, dropped := agg.Aggregate(nil, AggregateOptions{})
	assert.Empty(t, profiles)
	assert.Zero(t, dropped)
}

func TestAggregateFocusInbox(t *testing.T) {
	agg := NewAggregator(zap.NewNop())
	records := []MessageRecord{
		{ID: "1", Sender: "a@x.com", SourceInbox: "work", ArrivalTime: day(1, 9)},
		{ID: "2", Sender: "b@x.com", SourceInbox: "personal", ArrivalTime: day(1, 9)},
	}

	profiles, _ := agg.Aggregate(records, AggregateOptions{FocusInbox: "work"})
	require.Len(t, profiles, 1)
	assert.Contains(t, profiles, "a@x.com")

	// A filter matching nothing is a valid empty result, not an error.
	profiles, _ = agg.Aggregate(records, AggregateOptions{FocusInbox: "missing"})
	assert.Empty(t, profiles)
}

func TestAggregateDerivedMetrics(t *testing.T) {
	agg := NewAggregator(zap.NewNop())
	// Four messages over two and a half days, three unread, one starred.
	records := []MessageRecord{
		{ID: "1", Sender: "s@x.com", ArrivalTime: day(1, 0), Unread: true, Promotions: true},
		{ID: "2", Sender: "s@x.com", ArrivalTime: day(2, 0), Unread: true},
		{ID: "3", Sender: "s@x.com", ArrivalTime: day(3, 0), Unread: true},
		{ID: "4", Sender: "s@x.com", ArrivalTime: day(3, 12), Starred: true},
	}

	profiles, _ := agg.Aggregate(records, AggregateOptions{})
	p := profiles["s@x.com"]
	require.NotNil(t, p)

	assert.Equal(t, 4, p.TotalEmails)
	assert.Equal(t, 3, p.UnreadCount)
	assert.InDelta(t, 0.25, p.ReadRate, 1e-9)
	assert.InDelta(t, 0.75, p.UnreadRate(), 1e-9)
	// 0.4*starred + 0.3*important + 0.3*read_rate
	assert.InDelta(t, 0.4*1+0.3*0+0.3*0.25, p.EngagementScore, 1e-9)
	// Whole days between first and last arrival, 2.5 truncates to 2.
	assert.Equal(t, 2, p.DaysActive)
	assert.InDelta(t, 2.0, p.EmailsPerDay, 1e-9)
	assert.InDelta(t, 0.25, p.PromoRatio, 1e-9)
	assert.Equal(t, day(1, 0), p.FirstEmailDate)
	assert.Equal(t, day(3, 12), p.LastEmailDate)
}

func TestAggregateDaysActiveFloorsAtOne(t *testing.T) {
	agg := NewAggregator(zap.NewNop())
	// All mail on the same day still counts as one active day.
	records := []MessageRecord{
		{ID: "1", Sender: "s@x.com", ArrivalTime: day(1, 9)},
		{ID: "2", Sender: "s@x.com", ArrivalTime: day(1, 17)},
	}

	profiles, _ := agg.Aggregate(records, AggregateOptions{})
	p := profiles["s@x.com"]
	assert.Equal(t, 1, p.DaysActive)
	assert.InDelta(t, 2.0, p.EmailsPerDay, 1e-9)
}

func TestAggregateNewsletterHeuristic(t *testing.T) {
	agg := NewAggregator(zap.NewNop())
	var records []MessageRecord
	// Promo-heavy daily sender with an unsubscribe header.
	for d := 1; d <= 6; d++ {
		records = append(records, MessageRecord{
			ID: "p" + string(rune('0'+d)), Sender: "promo@x.com",
			ArrivalTime: day(d, 9), Promotions: true,
			ListUnsubscribe: "<https://x.com/unsub>",
		})
	}
	// Sparse personal correspondent.
	records = append(records,
		MessageRecord{ID: "h1", Sender: "human@y.com", ArrivalTime: day(1, 9)},
		MessageRecord{ID: "h2", Sender: "human@y.com", ArrivalTime: day(6, 9)},
	)

	profiles, _ := agg.Aggregate(records, AggregateOptions{})
	assert.True(t, profiles["promo@x.com"].IsLikelyNewsletter)
	assert.False(t, profiles["human@y.com"].IsLikelyNewsletter)
}

func TestSortedSenders(t *testing.T) {
	profiles := map[string]*SenderProfile{
		"c@x.com": {}, "a@x.com": {}, "b@x.com": {},
	}
	assert.Equal(t, []string{"a@x.com", "b@x.com", "c@x.com"}, SortedSenders(profiles))
}
