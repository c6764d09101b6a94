package factory

import (
	"fmt"

	"github.com/mikey/smart-unsubscribe/internal/config"
	"github.com/mikey/smart-unsubscribe/internal/core"
	"github.com/mikey/smart-unsubscribe/internal/utils"
	"go.uber.org/zap"
)

// LLMFactory creates triage LLM clients
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateTriageClient creates a new triage client based on the configuration
func (f *LLMFactory) CreateTriageClient() (core.TriageClient, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case "bedrock":
		return NewBedrockFactory(f.cfg, f.logger, f.textProcessor).CreateTriageClient()
	case "gemini":
		return NewGeminiFactory(f.cfg, f.logger, f.textProcessor).CreateTriageClient()
	case "openai":
		return NewOpenAIFactory(f.cfg, f.logger, f.textProcessor).CreateTriageClient()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}
