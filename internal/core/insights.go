package core

import (
	"sort"
)

// InboxInsights summarizes the dataset per source-inbox category. It
// returns nil when the records carry no inbox-origin labeling.
func InboxInsights(records []MessageRecord) []InboxInsight {
	byInbox := make(map[string]*InboxInsight)
	total := 0

	for i := range records {
		rec := &records[i]
		if rec.SourceInbox == "" {
			continue
		}
		total++
		ins, ok := byInbox[rec.SourceInbox]
		if !ok {
			ins = &InboxInsight{SourceInbox: rec.SourceInbox}
			byInbox[rec.SourceInbox] = ins
		}
		ins.TotalEmails++
		if rec.Unread {
			ins.UnreadCount++
		}
		if rec.Promotions {
			ins.PromotionsCount++
		}
		if rec.Updates {
			ins.UpdatesCount++
		}
		if rec.Social {
			ins.SocialCount++
		}
		if rec.Forums {
			ins.ForumsCount++
		}
		if rec.Personal {
			ins.PersonalCount++
		}
		if rec.HasUnsubscribe() {
			ins.UnsubscribeCount++
		}
	}

	if len(byInbox) == 0 {
		return nil
	}

	insights := make([]InboxInsight, 0, len(byInbox))
	for _, ins := range byInbox {
		ins.UnreadRate = float64(ins.UnreadCount) / float64(ins.TotalEmails)
		ins.ShareOfDataset = float64(ins.TotalEmails) / float64(total)
		insights = append(insights, *ins)
	}
	sort.Slice(insights, func(i, j int) bool {
		return insights[i].SourceInbox < insights[j].SourceInbox
	})
	return insights
}
