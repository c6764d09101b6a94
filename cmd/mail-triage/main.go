package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mikey/smart-unsubscribe/internal/core"
	"github.com/mikey/smart-unsubscribe/internal/di"
	"github.com/mikey/smart-unsubscribe/internal/factory"
	"github.com/mikey/smart-unsubscribe/internal/report"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseTriageFlags()

	// Build the dependency injection container
	container, err := di.BuildTriageContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	flags *di.TriageFlags,
	sourceFactory *factory.SourceFactory,
	triageService *core.TriageService,
	triageClient core.TriageClient,
	writer *report.Writer,
) error {
	defer logger.Sync()
	ctx := context.Background()

	collector, err := sourceFactory.CreateGmailCollector(ctx)
	if err != nil {
		logger.Error("Failed to create Gmail collector", zap.Error(err))
		return err
	}

	records, err := collector.FetchUnreadMessages(ctx, flags.HoursBack)
	if err != nil {
		logger.Error("Failed to fetch unread messages", zap.Error(err))
		return err
	}

	startTime := time.Now()
	results, summary, err := triageService.ClassifyAll(ctx, records)
	if err != nil {
		logger.Error("Triage run failed", zap.Error(err))
		return err
	}
	duration := time.Since(startTime)

	dateLabel := time.Now().Format("2006-01-02")
	md := report.RenderTriageMarkdown(dateLabel, summary, records, results)
	path, err := writer.WriteTriageReport(md)
	if err != nil {
		logger.Error("Failed to write triage report", zap.Error(err))
		return err
	}

	fmt.Printf("\n=== Triage Summary (%s) ===\n", dateLabel)
	fmt.Printf("Urgent: %d\n", summary.Urgent)
	fmt.Printf("Non-urgent: %d\n", summary.NonUrgent)
	fmt.Printf("Promo: %d\n", summary.Promo)
	fmt.Printf("Total: %d\n", summary.Total)
	fmt.Printf("Processing time: %v\n", duration)
	fmt.Printf("Report: %s\n", path)

	// Close any resources that need closing
	if closer, ok := triageClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}

	return nil
}
