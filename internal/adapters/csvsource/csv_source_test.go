package csvsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "messages.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFetchMessagesParsesRecords(t *testing.T) {
	path := writeCSV(t, `id,sender,arrival_time,unread,promotions,list_unsubscribe
m1,News <NEWS@Example.com>,2026-03-01T09:00:00Z,1,true,<https://example.com/unsub>
m2,friend@home.com,2026-03-02T10:30:00Z,0,,
`)
	source := NewSource(path, zap.NewNop())

	records, err := source.FetchMessages(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "m1", first.ID)
	assert.Equal(t, "news@example.com", first.Sender)
	assert.Equal(t, "example.com", first.Domain)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), first.ArrivalTime)
	assert.True(t, first.Unread)
	assert.True(t, first.Promotions)
	assert.Equal(t, "<https://example.com/unsub>", first.ListUnsubscribe)

	second := records[1]
	assert.Equal(t, "friend@home.com", second.Sender)
	assert.Equal(t, "home.com", second.Domain)
	assert.False(t, second.Unread)
}

func TestFetchMessagesColumnOrderIndependent(t *testing.T) {
	path := writeCSV(t, `arrival_time,id,sender
2026-03-01T09:00:00Z,m1,a@x.com
`)
	source := NewSource(path, zap.NewNop())
	records, err := source.FetchMessages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "m1", records[0].ID)
}

func TestFetchMessagesMissingRequiredColumn(t *testing.T) {
	path := writeCSV(t, `id,arrival_time
m1,2026-03-01T09:00:00Z
`)
	source := NewSource(path, zap.NewNop())
	_, err := source.FetchMessages(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"sender"`)
}

func TestFetchMessagesBadArrivalTime(t *testing.T) {
	path := writeCSV(t, `id,sender,arrival_time
m1,a@x.com,yesterday
`)
	source := NewSource(path, zap.NewNop())
	_, err := source.FetchMessages(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestFetchMessagesBadBoolean(t *testing.T) {
	path := writeCSV(t, `id,sender,arrival_time,unread
m1,a@x.com,2026-03-01T09:00:00Z,maybe
`)
	source := NewSource(path, zap.NewNop())
	_, err := source.FetchMessages(context.Background())
	assert.Error(t, err)
}

func TestFetchMessagesMissingFile(t *testing.T) {
	source := NewSource(filepath.Join(t.TempDir(), "absent.csv"), zap.NewNop())
	_, err := source.FetchMessages(context.Background())
	assert.Error(t, err)
}
