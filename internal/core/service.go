package core

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnalysisService runs the full engine pipeline over one immutable dataset:
// aggregation, threshold derivation, scoring and link extraction. All
// derived state (profiles, thresholds) is local to a single Analyze call,
// so concurrent runs over different snapshots share nothing.
type AnalysisService struct {
	aggregator  *Aggregator
	deriver     *ThresholdDeriver
	scorer      *Scorer
	extractor   *LinkExtractor
	logger      *zap.Logger
	isProtected func(sender string) bool
}

// NewAnalysisService creates a new analysis service. isProtected reports
// senders the user never wants recommendations for; they still participate
// in threshold derivation but are excluded from scoring. A nil predicate
// protects nothing.
func NewAnalysisService(
	aggregator *Aggregator,
	deriver *ThresholdDeriver,
	scorer *Scorer,
	extractor *LinkExtractor,
	logger *zap.Logger,
	isProtected func(sender string) bool,
) *AnalysisService {
	return &AnalysisService{
		aggregator:  aggregator,
		deriver:     deriver,
		scorer:      scorer,
		extractor:   extractor,
		logger:      logger,
		isProtected: isProtected,
	}
}

// Analyze runs the pipeline over the records. Empty input is a valid
// terminal state and produces empty outputs at every stage. Aggregation is
// a full barrier: thresholds are only derived once the complete sender
// population has been built.
func (s *AnalysisService) Analyze(records []MessageRecord, opts AggregateOptions) *AnalysisResult {
	result := &AnalysisResult{
		RunID:         uuid.New().String(),
		AnalyzedAt:    time.Now(),
		TotalMessages: len(records),
	}

	profiles, dropped := s.aggregator.Aggregate(records, opts)
	result.DroppedMessages = dropped
	result.Profiles = profiles

	result.Thresholds = s.deriver.Derive(profiles)

	scorable := profiles
	if s.isProtected != nil {
		scorable = make(map[string]*SenderProfile, len(profiles))
		for sender, p := range profiles {
			if s.isProtected(sender) {
				s.logger.Debug("Skipping protected sender",
					zap.String("sender", sender),
					zap.String("domain", p.Domain))
				continue
			}
			scorable[sender] = p
		}
	}
	result.Recommendations = s.scorer.Score(scorable, result.Thresholds)

	result.Links = s.extractor.Extract(records)
	result.Insights = InboxInsights(records)

	s.logger.Info("Analysis complete",
		zap.String("run_id", result.RunID),
		zap.Int("messages", result.TotalMessages),
		zap.Int("dropped", result.DroppedMessages),
		zap.Int("senders", len(result.Profiles)),
		zap.Int("recommendations", len(result.Recommendations)))

	return result
}
