package di

import (
	"flag"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/smart-unsubscribe/internal/config"
	"github.com/mikey/smart-unsubscribe/internal/core"
	"github.com/mikey/smart-unsubscribe/internal/factory"
	"github.com/mikey/smart-unsubscribe/internal/logging"
	"github.com/mikey/smart-unsubscribe/internal/report"
	"github.com/mikey/smart-unsubscribe/internal/utils"
)

// TriageFlags contains all command line flags for the triage command
type TriageFlags struct {
	// LLM provider flags
	Provider       string
	MaxTokens      int
	Temperature    float64
	TopP           float64
	MaxSnippetSize int

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string

	// Triage flags
	HoursBack int
	NoCache   bool

	// Input flags
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseTriageFlags parses command line flags and returns a TriageFlags struct
func ParseTriageFlags() *TriageFlags {
	flags := &TriageFlags{}

	// LLM provider flags
	flag.StringVar(&flags.Provider, "provider", "bedrock", "LLM provider (bedrock, gemini, openai)")
	flag.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for LLM response")
	flag.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for LLM generation")
	flag.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for LLM generation")
	flag.IntVar(&flags.MaxSnippetSize, "max-snippet-size", 600, "Maximum snippet size to send to LLM")

	// Bedrock flags
	flag.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	flag.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	flag.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	flag.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-1.5-flash", "Gemini model name")

	// OpenAI flags
	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	flag.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4", "OpenAI model name")

	// Triage flags
	flag.IntVar(&flags.HoursBack, "hours-back", 24, "How many hours of unread mail to triage")
	flag.BoolVar(&flags.NoCache, "no-cache", false, "Skip the triage verdict cache")

	// Input flags
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildTriageContainer creates and configures a dependency injection
// container for the triage command.
func BuildTriageContainer(flags *TriageFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *TriageFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *TriageFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *TriageFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromTriageFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewSourceFactory); err != nil {
		return nil, err
	}

	// Register triage client
	if err := container.Provide(func(f *factory.LLMFactory) (core.TriageClient, error) {
		return f.CreateTriageClient()
	}); err != nil {
		return nil, err
	}

	// Register triage service
	if err := container.Provide(func(
		flags *TriageFlags,
		client core.TriageClient,
		cacheFactory *factory.CacheFactory,
		logger *zap.Logger,
	) (*core.TriageService, error) {
		if flags.NoCache || !cacheFactory.IsCacheEnabled() {
			return core.NewTriageService(client, nil, logger, false, time.Duration(0)), nil
		}
		triageCache, err := cacheFactory.CreateTriageCache()
		if err != nil {
			return nil, err
		}
		ttl, err := cacheFactory.GetCacheTTL()
		if err != nil {
			return nil, err
		}
		return core.NewTriageService(client, triageCache, logger, true, ttl), nil
	}); err != nil {
		return nil, err
	}

	// Register artifact writer
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*report.Writer, error) {
		return report.NewWriter(cfg.GetReport().OutputDir, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromTriageFlags creates a configuration from command line flags
func createConfigFromTriageFlags(flags *TriageFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set LLM provider
	v.Set("llm.provider", flags.Provider)

	// Set provider-specific configuration
	switch flags.Provider {
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
		v.Set("bedrock.max_snippet_size", flags.MaxSnippetSize)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
		v.Set("gemini.max_snippet_size", flags.MaxSnippetSize)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
		v.Set("openai.max_snippet_size", flags.MaxSnippetSize)
	}

	if flags.NoCache {
		v.Set("cache.enabled", false)
	}

	return config.NewFromViper(v)
}
