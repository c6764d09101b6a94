package gmail

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gmailv1 "google.golang.org/api/gmail/v1"
)

func TestParseSenderAddress(t *testing.T) {
	tests := []struct {
		name string
		from string
		want string
	}{
		{"display name", "Newsletter <News@Example.com>", "news@example.com"},
		{"bare address", "alerts@example.com", "alerts@example.com"},
		{"uppercase bare", " ALERTS@EXAMPLE.COM ", "alerts@example.com"},
		{"quoted name with comma", `"Doe, Jane" <jane@example.com>`, "jane@example.com"},
		{"unclosed bracket", "Broken <foo@example.com", "broken <foo@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSenderAddress(tt.from))
		})
	}
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "example.com", domainOf("news@example.com"))
	assert.Equal(t, "", domainOf("not-an-address"))
}

func TestBuildRecord(t *testing.T) {
	c := NewCollector(nil, "work", 90, 0, 500, nil, zap.NewNop())

	msg := &gmailv1.Message{
		Id:           "m1",
		Snippet:      "Spring sale ends soon",
		InternalDate: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC).UnixMilli(),
		LabelIds:     []string{"UNREAD", "CATEGORY_PROMOTIONS", "INBOX"},
		Payload: &gmailv1.MessagePart{
			Headers: []*gmailv1.MessagePartHeader{
				{Name: "From", Value: "Shop <shop@store.com>"},
				{Name: "Subject", Value: "Spring sale"},
				{Name: "List-Unsubscribe", Value: "<https://store.com/unsub>"},
			},
		},
	}

	record := c.buildRecord(msg)
	assert.Equal(t, "m1", record.ID)
	assert.Equal(t, "shop@store.com", record.Sender)
	assert.Equal(t, "store.com", record.Domain)
	assert.Equal(t, "work", record.SourceInbox)
	assert.Equal(t, "Spring sale", record.Subject)
	assert.Equal(t, "Spring sale ends soon", record.Snippet)
	assert.True(t, record.Unread)
	assert.True(t, record.Promotions)
	assert.False(t, record.Starred)
	assert.Equal(t, "<https://store.com/unsub>", record.ListUnsubscribe)
	require.True(t, record.ArrivalTime.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
	assert.True(t, record.HasUnsubscribe())
}

func TestNewCollectorDefaultsCategories(t *testing.T) {
	c := NewCollector(nil, "", 90, 0, 500, nil, zap.NewNop())
	assert.Equal(t, []string{"primary"}, c.categories)
}
