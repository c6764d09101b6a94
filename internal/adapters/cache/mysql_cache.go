package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/smart-unsubscribe/internal/core"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the TriageCache interface
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}

	cache := &MySQLCache{
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

func (c *MySQLCache) initSchema() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS triage_cache (
			message_id VARCHAR(128) PRIMARY KEY,
			label VARCHAR(16) NOT NULL,
			reason TEXT,
			model_used VARCHAR(128),
			classified_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL,
			INDEX idx_triage_cache_expires_at (expires_at)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create triage cache schema: %w", err)
	}
	return nil
}

// Get retrieves a cached verdict for a message ID
func (c *MySQLCache) Get(ctx context.Context, messageID string) (*core.TriageCacheEntry, error) {
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
func (c *MySQLCache) Set(ctx context.Context, entry *core.TriageCacheEntry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO triage_cache (message_id, label, reason, model_used, classified_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			label = VALUES(label),
			reason = VALUES(reason),
			model_used = VALUES(model_used),
			classified_at = VALUES(classified_at),
			expires_at = VALUES(expires_at)
	`, entry.MessageID, string(entry.Label), entry.Reason, entry.ModelUsed, entry.ClassifiedAt, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to store triage cache entry: %w", err)
	}
	return nil
}

// Delete removes a cached verdict
func (c *MySQLCache) Delete(ctx context.Context, messageID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM triage_cache WHERE message_id = ?`, messageID)
	if err != nil {
		return fmt.Errorf("failed to delete triage cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *MySQLCache) Cleanup(ctx context.Context) error {
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
func (c *MySQLCache) Stop() error {
	close(c.stopCh)
	return c.db.Close()
}

func (c *MySQLCache) startCleanupTask() {
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
