package core

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// List-Unsubscribe headers offer one or more comma-separated methods, each
// usually wrapped in angle brackets: <https://x/unsub>, <mailto:u@x>.
var (
	httpLinkPattern   = regexp.MustCompile(`https?://[^\s>]+`)
	mailtoLinkPattern = regexp.MustCompile(`mailto:[^\s>]+`)
)

// LinkExtractor parses List-Unsubscribe header text into normalized
// unsubscribe actions per sender. It runs independently of scoring and
// never errors on malformed headers.
type LinkExtractor struct {
	logger *zap.Logger
}

// NewLinkExtractor creates a new link extractor.
func NewLinkExtractor(logger *zap.Logger) *LinkExtractor {
	return &LinkExtractor{logger: logger}
}

// Extract maps each sender to its unique unsubscribe links across the
// dataset. Links are sorted per sender so artifacts are stable.
func (e *LinkExtractor) Extract(records []MessageRecord) map[string][]string {
	seen := make(map[string]map[string]struct{})

	for i := range records {
		rec := &records[i]
		if rec.Sender == "" || !rec.HasUnsubscribe() {
			continue
		}
		links := ParseUnsubscribeLinks(rec.ListUnsubscribe)
		if len(links) == 0 {
			continue
		}
		set, ok := seen[rec.Sender]
		if !ok {
			set = make(map[string]struct{})
			seen[rec.Sender] = set
		}
		for _, link := range links {
			set[link] = struct{}{}
		}
	}

	result := make(map[string][]string, len(seen))
	for sender, set := range seen {
		links := make([]string, 0, len(set))
		for link := range set {
			links = append(links, link)
		}
		sort.Strings(links)
		result[sender] = links
	}

	e.logger.Info("Extracted unsubscribe links", zap.Int("senders", len(result)))
	return result
}

// ParseUnsubscribeLinks splits a raw List-Unsubscribe header on commas and
// pulls the first HTTP(S) URL and the first mailto action out of each
// segment. A segment may yield zero, one or both; segments matching neither
// are skipped.
func ParseUnsubscribeLinks(headerText string) []string {
	var links []string
	for _, part := range strings.Split(headerText, ",") {
		part = strings.TrimSpace(part)
		if url := httpLinkPattern.FindString(part); url != "" {
			links = append(links, url)
		}
		if action := mailtoLinkPattern.FindString(part); action != "" {
			links = append(links, action)
		}
	}
	return links
}
