package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/smart-unsubscribe/internal/core"
	"github.com/mikey/smart-unsubscribe/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient is an implementation of the TriageClient interface using OpenAI
type OpenAIClient struct {
	client         *openai.Client
	modelName      string
	maxTokens      int
	temperature    float32
	topP           float32
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

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxSnippetSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIClient {
	client := openai.NewClient(apiKey)

	return &OpenAIClient{
		client:         client,
		modelName:      modelName,
		maxTokens:      maxTokens,
		temperature:    temperature,
		topP:           topP,
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
	}
}

// ClassifyMessage labels a message as urgent, non-urgent or promo
func (c *OpenAIClient) ClassifyMessage(ctx context.Context, msg *core.MessageRecord) (*core.TriageResult, error) {
	subject := msg.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	snippet := c.textProcessor.ProcessText(msg.Snippet, c.maxSnippetSize)
	prompt := fmt.Sprintf(c.promptFormat, subject, msg.Sender, snippet)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an email triage system. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	responseText := resp.Choices[0].Message.Content

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
