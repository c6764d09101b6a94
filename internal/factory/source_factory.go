package factory

import (
	"context"
	"fmt"

	"github.com/mikey/smart-unsubscribe/internal/adapters/csvsource"
	"github.com/mikey/smart-unsubscribe/internal/adapters/gmail"
	"github.com/mikey/smart-unsubscribe/internal/adapters/store"
	"github.com/mikey/smart-unsubscribe/internal/config"
	"github.com/mikey/smart-unsubscribe/internal/ports"
	"go.uber.org/zap"
)

// SourceFactory creates message sources based on configuration
type SourceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSourceFactory creates a new source factory
func NewSourceFactory(cfg *config.Config, logger *zap.Logger) *SourceFactory {
	return &SourceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMessageSource creates a message source based on the configuration.
// "gmail" collects fresh metadata from the mailbox, "store" replays a
// previous collection, "csv" reads an exported dataset.
func (f *SourceFactory) CreateMessageSource(ctx context.Context) (ports.MessageSource, error) {
	sourceType := f.cfg.GetString("source.type")

	switch sourceType {
	case "gmail":
		return f.CreateGmailCollector(ctx)
	case "store":
		storeCfg := f.cfg.GetStore()
		return store.NewSQLiteStore(storeCfg.SQLitePath, f.logger)
	case "csv":
		storeCfg := f.cfg.GetStore()
		if storeCfg.CSVPath == "" {
			return nil, fmt.Errorf("store.csv_path must be set for the csv source")
		}
		return csvsource.NewSource(storeCfg.CSVPath, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", sourceType)
	}
}

// CreateGmailCollector creates a Gmail metadata collector regardless of the
// configured source type. The triage command uses it directly because it
// always works against the live mailbox.
func (f *SourceFactory) CreateGmailCollector(ctx context.Context) (*gmail.Collector, error) {
	gmailCfg := f.cfg.GetGmail()
	svc, err := gmail.NewService(ctx, gmailCfg.CredentialsFile, gmailCfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return gmail.NewCollector(
		svc,
		gmailCfg.SourceInbox,
		gmailCfg.DaysBack,
		gmailCfg.MaxEmails,
		int64(gmailCfg.PageSize),
		gmailCfg.Categories,
		f.logger,
	), nil
}

// CreateMessageStore creates the persistent message store.
func (f *SourceFactory) CreateMessageStore() (*store.SQLiteStore, error) {
	storeCfg := f.cfg.GetStore()
	return store.NewSQLiteStore(storeCfg.SQLitePath, f.logger)
}
