package gmail

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mikey/smart-unsubscribe/internal/core"
	"go.uber.org/zap"
	gmailv1 "google.golang.org/api/gmail/v1"
)

const metadataWorkers = 8

// Collector fetches message metadata from a Gmail mailbox. It implements
// the MessageSource port and never downloads message bodies: snippets and
// headers are enough for engagement analysis.
type Collector struct {
	svc         *gmailv1.Service
	sourceInbox string
	daysBack    int
	maxEmails   int
	pageSize    int64
	categories  []string
	logger      *zap.Logger
}

// NewCollector creates a new Gmail metadata collector. sourceInbox is a
// free-form label recorded on every collected message so that reports can
// attribute senders to the mailbox they came from.
func NewCollector(
	svc *gmailv1.Service,
	sourceInbox string,
	daysBack int,
	maxEmails int,
	pageSize int64,
	categories []string,
	logger *zap.Logger,
) *Collector {
	if len(categories) == 0 {
		categories = []string{"primary"}
	}
	return &Collector{
		svc:         svc,
		sourceInbox: sourceInbox,
		daysBack:    daysBack,
		maxEmails:   maxEmails,
		pageSize:    pageSize,
		categories:  categories,
		logger:      logger,
	}
}

// FetchMessages collects metadata for all messages in the configured
// categories newer than the collection window.
func (c *Collector) FetchMessages(ctx context.Context) ([]core.MessageRecord, error) {
	after := time.Now().AddDate(0, 0, -c.daysBack).Format("2006/01/02")

	var ids []string
	seen := make(map[string]bool)
	for _, category := range c.categories {
		query := fmt.Sprintf("after:%s category:%s", after, category)
		categoryIDs, err := c.listMessageIDs(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to list messages for category %s: %w", category, err)
		}
		for _, id := range categoryIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		c.logger.Info("Listed messages",
			zap.String("category", category),
			zap.Int("count", len(categoryIDs)))
		if c.maxEmails > 0 && len(ids) >= c.maxEmails {
			ids = ids[:c.maxEmails]
			break
		}
	}

	records, err := c.fetchMetadata(ctx, ids)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Collected message metadata",
		zap.String("source_inbox", c.sourceInbox),
		zap.Int("messages", len(records)))
	return records, nil
}

// FetchUnreadMessages collects metadata for unread messages newer than the
// given number of hours. Used by the triage command, which only looks at
// mail that still needs attention.
func (c *Collector) FetchUnreadMessages(ctx context.Context, newerThanHours int) ([]core.MessageRecord, error) {
	var ids []string
	seen := make(map[string]bool)
	for _, category := range c.categories {
		query := fmt.Sprintf("is:unread category:%s newer_than:%dh", category, newerThanHours)
		categoryIDs, err := c.listMessageIDs(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to list unread messages for category %s: %w", category, err)
		}
		for _, id := range categoryIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	records, err := c.fetchMetadata(ctx, ids)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Collected unread message metadata",
		zap.Int("newer_than_hours", newerThanHours),
		zap.Int("messages", len(records)))
	return records, nil
}

func (c *Collector) listMessageIDs(ctx context.Context, query string) ([]string, error) {
	var ids []string
	pageToken := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		call := c.svc.Users.Messages.List("me").Q(query).MaxResults(c.pageSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}
		if resp.NextPageToken == "" || (c.maxEmails > 0 && len(ids) >= c.maxEmails) {
			break
		}
		pageToken = resp.NextPageToken
	}
	return ids, nil
}

// fetchMetadata retrieves per-message metadata with a bounded worker pool.
func (c *Collector) fetchMetadata(ctx context.Context, ids []string) ([]core.MessageRecord, error) {
	type result struct {
		record core.MessageRecord
		err    error
	}

	jobs := make(chan string, len(ids))
	results := make(chan result, len(ids))

	var wg sync.WaitGroup
	wg.Add(metadataWorkers)
	for i := 0; i < metadataWorkers; i++ {
		go func() {
			defer wg.Done()
			for id := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				msg, err := c.svc.Users.Messages.Get("me", id).
					Format("metadata").
					MetadataHeaders("From", "Subject", "List-Unsubscribe").
					Context(ctx).
					Do()
				if err != nil {
					results <- result{err: err}
					continue
				}
				results <- result{record: c.buildRecord(msg)}
			}
		}()
	}

	for _, id := range ids {
		jobs <- id
	}
	close(jobs)
	wg.Wait()
	close(results)

	records := make([]core.MessageRecord, 0, len(ids))
	failed := 0
	for r := range results {
		if r.err != nil {
			failed++
			continue
		}
		records = append(records, r.record)
	}
	if failed > 0 {
		c.logger.Warn("Some messages could not be fetched", zap.Int("failed", failed))
	}
	if err := ctx.Err(); err != nil {
		return records, err
	}
	return records, nil
}

func (c *Collector) buildRecord(msg *gmailv1.Message) core.MessageRecord {
	record := core.MessageRecord{
		ID:          msg.Id,
		SourceInbox: c.sourceInbox,
		Snippet:     msg.Snippet,
		ArrivalTime: time.UnixMilli(msg.InternalDate),
	}

	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch strings.ToLower(h.Name) {
			case "from":
				record.Sender = parseSenderAddress(h.Value)
				record.Domain = domainOf(record.Sender)
			case "subject":
				record.Subject = h.Value
			case "list-unsubscribe":
				record.ListUnsubscribe = h.Value
			}
		}
	}

	for _, label := range msg.LabelIds {
		switch label {
		case "UNREAD":
			record.Unread = true
		case "STARRED":
			record.Starred = true
		case "IMPORTANT":
			record.Important = true
		case "CATEGORY_PROMOTIONS":
			record.Promotions = true
		case "CATEGORY_UPDATES":
			record.Updates = true
		case "CATEGORY_SOCIAL":
			record.Social = true
		case "CATEGORY_FORUMS":
			record.Forums = true
		case "CATEGORY_PERSONAL":
			record.Personal = true
		}
	}

	return record
}

// parseSenderAddress extracts the lowercase address from a From header,
// e.g. "Alerts <alerts@example.com>" becomes "alerts@example.com".
func parseSenderAddress(from string) string {
	if start := strings.Index(from, "<"); start != -1 {
		if end := strings.Index(from[start:], ">"); end != -1 {
			return strings.ToLower(strings.TrimSpace(from[start+1 : start+end]))
		}
	}
	return strings.ToLower(strings.TrimSpace(from))
}

func domainOf(address string) string {
	if at := strings.LastIndex(address, "@"); at != -1 {
		return address[at+1:]
	}
	return ""
}
