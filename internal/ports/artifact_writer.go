package ports

import (
	"github.com/mikey/smart-unsubscribe/internal/core"
)

// ArtifactWriter defines the interface for collaborators that persist the
// engine's output artifacts
type ArtifactWriter interface {
	// WriteRecommendations persists the recommendation sequence
	WriteRecommendations(result *core.AnalysisResult) (string, error)

	// WriteLinks persists the sender-to-links mapping
	WriteLinks(result *core.AnalysisResult) (string, error)

	// WriteReport persists the human-readable report
	WriteReport(result *core.AnalysisResult) (string, error)
}
