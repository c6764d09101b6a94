package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/smart-unsubscribe/internal/config"
	"github.com/mikey/smart-unsubscribe/internal/core"
	"github.com/mikey/smart-unsubscribe/internal/factory"
	"github.com/mikey/smart-unsubscribe/internal/logging"
	"github.com/mikey/smart-unsubscribe/internal/ports"
	"github.com/mikey/smart-unsubscribe/internal/protectlist"
	"github.com/mikey/smart-unsubscribe/internal/report"
)

// BuildAnalyzerContainer creates and configures a dependency injection
// container for the unsubscribe analyzer.
func BuildAnalyzerContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register protected domains
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *protectlist.Checker {
		return protectlist.NewChecker(cfg.GetAnalysis().ProtectedDomains, logger)
	}); err != nil {
		return nil, err
	}

	// Register engine stages
	if err := container.Provide(core.NewAggregator); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewThresholdDeriver); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *core.Scorer {
		return core.NewScorer(logger, cfg.GetAnalysis().MinEmails)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewLinkExtractor); err != nil {
		return nil, err
	}

	// Register analysis service
	if err := container.Provide(func(
		aggregator *core.Aggregator,
		deriver *core.ThresholdDeriver,
		scorer *core.Scorer,
		extractor *core.LinkExtractor,
		logger *zap.Logger,
		checker *protectlist.Checker,
	) *core.AnalysisService {
		return core.NewAnalysisService(aggregator, deriver, scorer, extractor, logger, checker.IsProtected)
	}); err != nil {
		return nil, err
	}

	// Register message source
	if err := container.Provide(factory.NewSourceFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.SourceFactory) (ports.MessageSource, error) {
		return f.CreateMessageSource(context.Background())
	}); err != nil {
		return nil, err
	}

	// Register artifact writer
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*report.Writer, error) {
		return report.NewWriter(cfg.GetReport().OutputDir, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(w *report.Writer) ports.ArtifactWriter {
		return w
	}); err != nil {
		return nil, err
	}

	return container, nil
}
