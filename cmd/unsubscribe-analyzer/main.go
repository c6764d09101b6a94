package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mikey/smart-unsubscribe/internal/config"
	"github.com/mikey/smart-unsubscribe/internal/core"
	"github.com/mikey/smart-unsubscribe/internal/di"
	"github.com/mikey/smart-unsubscribe/internal/factory"
	"github.com/mikey/smart-unsubscribe/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildAnalyzerContainer()
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
	cfg *config.Config,
	source ports.MessageSource,
	sourceFactory *factory.SourceFactory,
	service *core.AnalysisService,
	writer ports.ArtifactWriter,
) error {
	defer logger.Sync()
	ctx := context.Background()

	records, err := source.FetchMessages(ctx)
	if err != nil {
		logger.Error("Failed to fetch messages", zap.Error(err))
		return err
	}
	if len(records) == 0 {
		logger.Warn("No messages to analyze")
	}

	// Persist fresh collections so later runs can replay them offline.
	if cfg.GetString("source.type") == "gmail" && cfg.GetString("store.sqlite_path") != "" {
		messageStore, err := sourceFactory.CreateMessageStore()
		if err != nil {
			logger.Error("Failed to open message store", zap.Error(err))
			return err
		}
		defer messageStore.Close()
		if err := messageStore.SaveMessages(ctx, records); err != nil {
			logger.Error("Failed to save messages", zap.Error(err))
			return err
		}
	}

	opts := core.AggregateOptions{FocusInbox: cfg.GetAnalysis().FocusInbox}
	result := service.Analyze(records, opts)

	recsPath, err := writer.WriteRecommendations(result)
	if err != nil {
		logger.Error("Failed to write recommendations", zap.Error(err))
		return err
	}
	linksPath, err := writer.WriteLinks(result)
	if err != nil {
		logger.Error("Failed to write unsubscribe links", zap.Error(err))
		return err
	}
	reportPath, err := writer.WriteReport(result)
	if err != nil {
		logger.Error("Failed to write report", zap.Error(err))
		return err
	}

	printSummary(result, recsPath, linksPath, reportPath)
	return nil
}

func printSummary(result *core.AnalysisResult, recsPath, linksPath, reportPath string) {
	fmt.Printf("\n=== Analysis Summary ===\n")
	fmt.Printf("Messages analyzed: %d\n", result.TotalMessages)
	fmt.Printf("Messages dropped: %d\n", result.DroppedMessages)
	fmt.Printf("Unique senders: %d\n", len(result.Profiles))
	fmt.Printf("Recommendations: %d\n", len(result.Recommendations))
	fmt.Printf("Senders with unsubscribe links: %d\n", len(result.Links))

	if len(result.Insights) > 0 {
		fmt.Printf("\n=== Inbox Breakdown ===\n")
		for _, insight := range result.Insights {
			fmt.Printf("%s: %d emails (%.1f%% of dataset), %.1f%% unread, %d promotional\n",
				insight.SourceInbox,
				insight.TotalEmails,
				insight.ShareOfDataset*100,
				insight.UnreadRate*100,
				insight.PromotionsCount)
		}
	}

	if len(result.Recommendations) > 0 {
		fmt.Printf("\n=== Top Recommendations ===\n")
		for i, rec := range result.Recommendations {
			if i >= 10 {
				fmt.Printf("... and %d more (see report)\n", len(result.Recommendations)-10)
				break
			}
			fmt.Printf("%2d. %s (score %.2f, %s confidence, %d emails)\n",
				i+1, rec.Sender, rec.RecommendationScore, rec.Confidence, rec.TotalEmails)
		}
	}

	fmt.Printf("\n=== Artifacts ===\n")
	fmt.Printf("Recommendations: %s\n", recsPath)
	fmt.Printf("Unsubscribe links: %s\n", linksPath)
	fmt.Printf("Report: %s\n", reportPath)
}
