package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseUnsubscribeLinks(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   []string
	}{
		{
			"http only",
			"<https://example.com/unsub?id=1>",
			[]string{"https://example.com/unsub?id=1"},
		},
		{
			"mailto only",
			"<mailto:unsub@example.com>",
			[]string{"mailto:unsub@example.com"},
		},
		{
			"http and mailto segments",
			"<https://example.com/unsub>, <mailto:unsub@example.com>",
			[]string{"https://example.com/unsub", "mailto:unsub@example.com"},
		},
		{
			"both in one segment",
			"<https://example.com/unsub> <mailto:unsub@example.com>",
			[]string{"https://example.com/unsub", "mailto:unsub@example.com"},
		},
		{
			"plain http scheme",
			"<http://example.com/u>",
			[]string{"http://example.com/u"},
		},
		{"no match", "call us to unsubscribe", nil},
		{"empty header", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseUnsubscribeLinks(tt.header))
		})
	}
}

func TestExtractDedupesAndSorts(t *testing.T) {
	extractor := NewLinkExtractor(zap.NewNop())
	records := []MessageRecord{
		{Sender: "a@x.com", ListUnsubscribe: "<https://x.com/b>"},
		{Sender: "a@x.com", ListUnsubscribe: "<https://x.com/a>"},
		{Sender: "a@x.com", ListUnsubscribe: "<https://x.com/b>"},
		{Sender: "b@x.com", ListUnsubscribe: "<mailto:u@x.com>"},
		{Sender: "c@x.com"},
		{Sender: "", ListUnsubscribe: "<https://x.com/orphan>"},
	}

	links := extractor.Extract(records)
	require.Len(t, links, 2)
	assert.Equal(t, []string{"https://x.com/a", "https://x.com/b"}, links["a@x.com"])
	assert.Equal(t, []string{"mailto:u@x.com"}, links["b@x.com"])
	assert.NotContains(t, links, "c@x.com")
}

func TestExtractEmptyDataset(t *testing.T) {
	extractor := NewLinkExtractor(zap.NewNop())
	assert.Empty(t, extractor.Extract(nil))
}
