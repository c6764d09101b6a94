package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/smart-unsubscribe/internal/core"
	"github.com/mikey/smart-unsubscribe/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient is an implementation of the TriageClient interface using Google Gemini
type GeminiClient struct {
	client         *genai.Client
	model          *genai.GenerativeModel
	modelName      string
	maxSnippetSize int
	logger         *zap.Logger
	promptFormat   string
	textProcessor  *utils.TextProcessor
}

// TriageResponse represents the structured response from the LLM
type TriageResponse struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxSnippetSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClient{
		client:         client,
		model:          model,
		modelName:      modelName,
		maxSnippetSize: maxSnippetSize,
		logger:         logger,
		textProcessor:  textProcessor,
		promptFormat: `You are labeling emails for daily triage.

Labels:
- urgent: Needs timely attention or action (deadlines, failed payments, account/security, advisor/school items, interviews, time-sensitive updates).
- promo: Marketing/newsletters/sales/bulk promos/social notifications.
- non-urgent: Everything else (FYI, general discussions, low-priority updates).

Return STRICT JSON only:
{"label":"urgent|non-urgent|promo","reason":"<very short why>"}

If torn between urgent vs non-urgent, choose urgent. Never include extra text.

Subject: %s
From: %s
Snippet: %s`,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ClassifyMessage labels a message as urgent, non-urgent or promo
func (c *GeminiClient) ClassifyMessage(ctx context.Context, msg *core.MessageRecord) (*core.TriageResult, error) {
	subject := msg.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	snippet := c.textProcessor.ProcessText(msg.Snippet, c.maxSnippetSize)
	prompt := fmt.Sprintf(c.promptFormat, subject, msg.Sender, snippet)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	// Parse the LLM's JSON response
	var triageResponse TriageResponse
	if err := json.Unmarshal([]byte(responseText), &triageResponse); err != nil {
		// Try to extract JSON from the text response
		jsonStart := strings.Index(responseText, "{")
		jsonEnd := strings.LastIndex(responseText, "}")
		if jsonStart == -1 || jsonEnd == -1 || jsonStart > jsonEnd {
			return nil, fmt.Errorf("failed to extract JSON from LLM response: %w", err)
		}
		if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd+1]), &triageResponse); err != nil {
			return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
		}
	}

	label := strings.ToLower(strings.TrimSpace(triageResponse.Label))
	if !core.ValidTriageLabel(label) {
		label = string(core.TriageNonUrgent)
	}

	return &core.TriageResult{
		MessageID:    msg.ID,
		Label:        core.TriageLabel(label),
		Reason:       triageResponse.Reason,
		ModelUsed:    c.modelName,
		ClassifiedAt: time.Now(),
	}, nil
}
