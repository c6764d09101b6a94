package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/smart-unsubscribe/internal/core"
	"go.uber.org/zap"
)

// SQLiteCache is a SQLite implementation of the TriageCache interface
type SQLiteCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewSQLiteCache creates a new SQLite cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	cache := &SQLiteCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	// Start background cleanup
	go cache.startCleanupTask()

	return cache, nil
}

func (c *SQLiteCache) initSchema() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS triage_cache (
			message_id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			reason TEXT,
			model_used TEXT,
			classified_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_triage_cache_expires_at ON triage_cache(expires_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create triage cache schema: %w", err)
	}
	return nil
}

// Get retrieves a cached verdict for a message ID
func (c *SQLiteCache) Get(ctx context.Context, messageID string) (*core.TriageCacheEntry, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT message_id, label, reason, model_used, classified_at, expires_at
		FROM triage_cache
		WHERE message_id = ?
	`, messageID)

	var entry core.TriageCacheEntry
	var label string
	err := row.Scan(&entry.MessageID, &label, &entry.Reason, &entry.ModelUsed, &entry.ClassifiedAt, &entry.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query triage cache: %w", err)
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, ErrExpired
	}
	entry.Label = core.TriageLabel(label)

	return &entry, nil
}

// Set stores a verdict
func (c *SQLiteCache) Set(ctx context.Context, entry *core.TriageCacheEntry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO triage_cache (message_id, label, reason, model_used, classified_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET
			label = excluded.label,
			reason = excluded.reason,
			model_used = excluded.model_used,
			classified_at = excluded.classified_at,
			expires_at = excluded.expires_at
	`, entry.MessageID, string(entry.Label), entry.Reason, entry.ModelUsed, entry.ClassifiedAt, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to store triage cache entry: %w", err)
	}
	return nil
}

// Delete removes a cached verdict
func (c *SQLiteCache) Delete(ctx context.Context, messageID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM triage_cache WHERE message_id = ?`, messageID)
	if err != nil {
		return fmt.Errorf("failed to delete triage cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM triage_cache WHERE expires_at < ?`, time.Now())
	if err != nil {
		return fmt.Errorf("failed to clean up triage cache: %w", err)
	}
	if removed, err := res.RowsAffected(); err == nil && removed > 0 {
		c.logger.Debug("Cleaned up expired triage cache entries", zap.Int64("removed", removed))
	}
	return nil
}

// Stop stops the background cleanup task and closes the database
func (c *SQLiteCache) Stop() error {
	close(c.stopCh)
	return c.db.Close()
}

func (c *SQLiteCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}
