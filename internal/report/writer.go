package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mikey/smart-unsubscribe/internal/core"
	"go.uber.org/zap"
)

// Writer persists the engine's output artifacts to timestamped files under
// a single output directory. It implements ports.ArtifactWriter.
type Writer struct {
	outputDir string
	logger    *zap.Logger
}

// NewWriter creates a new artifact writer.
func NewWriter(outputDir string, logger *zap.Logger) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Writer{outputDir: outputDir, logger: logger}, nil
}

func (w *Writer) timestamp(result *core.AnalysisResult) string {
	return result.AnalyzedAt.Format("20060102_150405")
}

func (w *Writer) writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

// WriteRecommendations persists the recommendation sequence as JSON.
func (w *Writer) WriteRecommendations(result *core.AnalysisResult) (string, error) {
	path := filepath.Join(w.outputDir, fmt.Sprintf("unsubscribe_recommendations_%s.json", w.timestamp(result)))
	recs := result.Recommendations
	if recs == nil {
		recs = []core.Recommendation{}
	}
	if err := w.writeJSON(path, recs); err != nil {
		return "", err
	}
	w.logger.Info("Saved recommendations", zap.String("path", path), zap.Int("count", len(recs)))
	return path, nil
}

// WriteLinks persists the sender-to-links mapping as JSON.
func (w *Writer) WriteLinks(result *core.AnalysisResult) (string, error) {
	path := filepath.Join(w.outputDir, fmt.Sprintf("unsubscribe_links_%s.json", w.timestamp(result)))
	links := result.Links
	if links == nil {
		links = map[string][]string{}
	}
	if err := w.writeJSON(path, links); err != nil {
		return "", err
	}
	w.logger.Info("Saved unsubscribe links", zap.String("path", path), zap.Int("senders", len(links)))
	return path, nil
}

// WriteReport persists the human-readable markdown report.
func (w *Writer) WriteReport(result *core.AnalysisResult) (string, error) {
	path := filepath.Join(w.outputDir, fmt.Sprintf("unsubscribe_report_%s.md", w.timestamp(result)))
	if err := os.WriteFile(path, []byte(RenderMarkdown(result)), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	w.logger.Info("Saved report", zap.String("path", path))
	return path, nil
}

// WriteTriageReport persists a triage markdown report named after the day.
func (w *Writer) WriteTriageReport(md string) (string, error) {
	path := filepath.Join(w.outputDir, fmt.Sprintf("%s_triage.md", time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, []byte(md), 0644); err != nil {
		return "", fmt.Errorf("failed to write triage report: %w", err)
	}
	w.logger.Info("Saved triage report", zap.String("path", path))
	return path, nil
}
