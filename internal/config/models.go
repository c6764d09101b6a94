package config

// AnalysisConfig represents the configuration for the unsubscribe engine
type AnalysisConfig struct {
	MinEmails        int
	FocusInbox       string
	ProtectedDomains []string
}

// GmailConfig represents the configuration for Gmail metadata collection
type GmailConfig struct {
	SourceInbox     string
	CredentialsFile string
	TokenFile       string
	DaysBack        int
	MaxEmails       int
	Categories      []string
	PageSize        int
}

// StoreConfig represents the configuration for the local message store
type StoreConfig struct {
	SQLitePath string
	CSVPath    string
}

// ReportConfig represents the configuration for report artifacts
type ReportConfig struct {
	OutputDir string
}

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region         string
	ModelID        string
	MaxTokens      int
	Temperature    float32
	TopP           float32
	MaxSnippetSize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey         string
	ModelName      string
	MaxTokens      int
	Temperature    float32
	TopP           float32
	MaxSnippetSize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey         string
	ModelName      string
	MaxTokens      int
	Temperature    float32
	TopP           float32
	MaxSnippetSize int
}

// GetAnalysis returns the analysis configuration
func (c *Config) GetAnalysis() AnalysisConfig {
	return AnalysisConfig{
		MinEmails:        c.GetInt("analysis.min_emails"),
		FocusInbox:       c.GetString("analysis.focus_inbox"),
		ProtectedDomains: c.GetStringSlice("analysis.protected_domains"),
	}
}

// GetGmail returns the Gmail collection configuration
func (c *Config) GetGmail() GmailConfig {
	return GmailConfig{
		SourceInbox:     c.GetString("gmail.source_inbox"),
		CredentialsFile: c.GetString("gmail.credentials_file"),
		TokenFile:       c.GetString("gmail.token_file"),
		DaysBack:        c.GetInt("gmail.days_back"),
		MaxEmails:       c.GetInt("gmail.max_emails"),
		Categories:      c.GetStringSlice("gmail.categories"),
		PageSize:        c.GetInt("gmail.page_size"),
	}
}

// GetStore returns the message store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		SQLitePath: c.GetString("store.sqlite_path"),
		CSVPath:    c.GetString("store.csv_path"),
	}
}

// GetReport returns the report configuration
func (c *Config) GetReport() ReportConfig {
	return ReportConfig{
		OutputDir: c.GetString("report.output_dir"),
	}
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:         c.GetString("bedrock.region"),
		ModelID:        c.GetString("bedrock.model_id"),
		MaxTokens:      c.GetInt("bedrock.max_tokens"),
		Temperature:    float32(c.GetFloat64("bedrock.temperature")),
		TopP:           float32(c.GetFloat64("bedrock.top_p")),
		MaxSnippetSize: c.GetInt("bedrock.max_snippet_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:         c.GetString("gemini.api_key"),
		ModelName:      c.GetString("gemini.model_name"),
		MaxTokens:      c.GetInt("gemini.max_tokens"),
		Temperature:    float32(c.GetFloat64("gemini.temperature")),
		TopP:           float32(c.GetFloat64("gemini.top_p")),
		MaxSnippetSize: c.GetInt("gemini.max_snippet_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:         c.GetString("openai.api_key"),
		ModelName:      c.GetString("openai.model_name"),
		MaxTokens:      c.GetInt("openai.max_tokens"),
		Temperature:    float32(c.GetFloat64("openai.temperature")),
		TopP:           float32(c.GetFloat64("openai.top_p")),
		MaxSnippetSize: c.GetInt("openai.max_snippet_size"),
	}
}
