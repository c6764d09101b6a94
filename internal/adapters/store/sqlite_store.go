package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/smart-unsubscribe/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore persists collected message metadata so that analysis runs can
// be repeated without hitting the mailbox API again. It implements the
// MessageSource port for replay.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (and if necessary initializes) a message store.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &SQLiteStore{db: db, logger: logger}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			sender TEXT NOT NULL,
			domain TEXT,
			source_inbox TEXT,
			subject TEXT,
			snippet TEXT,
			arrival_time TIMESTAMP NOT NULL,
			unread INTEGER NOT NULL DEFAULT 0,
			starred INTEGER NOT NULL DEFAULT 0,
			important INTEGER NOT NULL DEFAULT 0,
			promotions INTEGER NOT NULL DEFAULT 0,
			updates INTEGER NOT NULL DEFAULT 0,
			social INTEGER NOT NULL DEFAULT 0,
			forums INTEGER NOT NULL DEFAULT 0,
			personal INTEGER NOT NULL DEFAULT 0,
			list_unsubscribe TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender);
		CREATE INDEX IF NOT EXISTS idx_messages_arrival_time ON messages(arrival_time);
	`)
	if err != nil {
		return fmt.Errorf("failed to create message store schema: %w", err)
	}
	return nil
}

// SaveMessages upserts a batch of collected records in a single transaction.
func (s *SQLiteStore) SaveMessages(ctx context.Context, records []core.MessageRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (
			id, sender, domain, source_inbox, subject, snippet, arrival_time,
			unread, starred, important, promotions, updates, social, forums, personal,
			list_unsubscribe
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			unread = excluded.unread,
			starred = excluded.starred,
			important = excluded.important,
			list_unsubscribe = excluded.list_unsubscribe
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		_, err := stmt.ExecContext(ctx,
			r.ID, r.Sender, r.Domain, r.SourceInbox, r.Subject, r.Snippet, r.ArrivalTime,
			r.Unread, r.Starred, r.Important, r.Promotions, r.Updates, r.Social, r.Forums, r.Personal,
			r.ListUnsubscribe,
		)
		if err != nil {
			return fmt.Errorf("failed to insert message %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Info("Saved messages to store", zap.Int("count", len(records)))
	return nil
}

// FetchMessages returns all stored records ordered by arrival time.
func (s *SQLiteStore) FetchMessages(ctx context.Context) ([]core.MessageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender, domain, source_inbox, subject, snippet, arrival_time,
			unread, starred, important, promotions, updates, social, forums, personal,
			list_unsubscribe
		FROM messages
		ORDER BY arrival_time
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var records []core.MessageRecord
	for rows.Next() {
		var r core.MessageRecord
		err := rows.Scan(
			&r.ID, &r.Sender, &r.Domain, &r.SourceInbox, &r.Subject, &r.Snippet, &r.ArrivalTime,
			&r.Unread, &r.Starred, &r.Important, &r.Promotions, &r.Updates, &r.Social, &r.Forums, &r.Personal,
			&r.ListUnsubscribe,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}
	return records, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
