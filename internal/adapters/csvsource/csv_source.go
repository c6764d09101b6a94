package csvsource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mikey/smart-unsubscribe/internal/core"
	"go.uber.org/zap"
)

// Columns a message CSV must carry, in any order. Extra columns are ignored.
var requiredColumns = []string{"id", "sender", "arrival_time"}

var optionalColumns = []string{
	"domain", "source_inbox", "subject", "snippet",
	"unread", "starred", "important",
	"promotions", "updates", "social", "forums", "personal",
	"list_unsubscribe",
}

// Source reads message metadata from a CSV export. It implements the
// MessageSource port and fails fast on a malformed file rather than
// silently analyzing a partial dataset.
type Source struct {
	path   string
	logger *zap.Logger
}

// NewSource creates a CSV-backed message source.
func NewSource(path string, logger *zap.Logger) *Source {
	return &Source{path: path, logger: logger}
}

// FetchMessages parses the whole file into records.
func (s *Source) FetchMessages(ctx context.Context) ([]core.MessageRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("CSV file is missing required column %q", col)
		}
	}

	var records []core.MessageRecord
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		line++

		record, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("invalid CSV row at line %d: %w", line, err)
		}
		records = append(records, record)
	}

	s.logger.Info("Loaded messages from CSV",
		zap.String("path", s.path),
		zap.Int("messages", len(records)))
	return records, nil
}

func parseRow(row []string, index map[string]int) (core.MessageRecord, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	arrival, err := time.Parse(time.RFC3339, field("arrival_time"))
	if err != nil {
		return core.MessageRecord{}, fmt.Errorf("bad arrival_time: %w", err)
	}

	record := core.MessageRecord{
		ID:              field("id"),
		Sender:          parseSenderAddress(field("sender")),
		Domain:          field("domain"),
		SourceInbox:     field("source_inbox"),
		Subject:         field("subject"),
		Snippet:         field("snippet"),
		ArrivalTime:     arrival,
		ListUnsubscribe: field("list_unsubscribe"),
	}
	if record.ID == "" {
		return core.MessageRecord{}, fmt.Errorf("empty id")
	}
	if record.Sender == "" {
		return core.MessageRecord{}, fmt.Errorf("empty sender")
	}
	if record.Domain == "" {
		if at := strings.LastIndex(record.Sender, "@"); at != -1 {
			record.Domain = record.Sender[at+1:]
		}
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"unread", &record.Unread},
		{"starred", &record.Starred},
		{"important", &record.Important},
		{"promotions", &record.Promotions},
		{"updates", &record.Updates},
		{"social", &record.Social},
		{"forums", &record.Forums},
		{"personal", &record.Personal},
	}
	for _, f := range flags {
		v, err := parseBool(field(f.name))
		if err != nil {
			return core.MessageRecord{}, fmt.Errorf("bad %s: %w", f.name, err)
		}
		*f.dst = v
	}

	return record, nil
}

// parseSenderAddress accepts either a bare address or a full From header
// value like "News <news@example.com>".
func parseSenderAddress(from string) string {
	if start := strings.Index(from, "<"); start != -1 {
		if end := strings.Index(from[start:], ">"); end != -1 {
			return strings.ToLower(strings.TrimSpace(from[start+1 : start+end]))
		}
	}
	return strings.ToLower(strings.TrimSpace(from))
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "", "0", "false", "no":
		return false, nil
	case "1", "true", "yes":
		return true, nil
	default:
		return false, fmt.Errorf("unrecognized boolean value %q", v)
	}
}
