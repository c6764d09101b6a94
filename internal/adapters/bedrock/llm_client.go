package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/smart-unsubscribe/internal/core"
	"github.com/mikey/smart-unsubscribe/internal/utils"
	"go.uber.org/zap"
)

// BedrockClient is an implementation of the TriageClient interface using Amazon Bedrock
type BedrockClient struct {
	client         *bedrockruntime.Client
	modelID        string
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

// NewBedrockClient creates a new Bedrock client
func NewBedrockClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxSnippetSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *BedrockClient {
	return &BedrockClient{
		client:         client,
		modelID:        modelID,
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
func (c *BedrockClient) ClassifyMessage(ctx context.Context, msg *core.MessageRecord) (*core.TriageResult, error) {
	subject := msg.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	snippet := c.textProcessor.ProcessText(msg.Snippet, c.maxSnippetSize)
	prompt := fmt.Sprintf(c.promptFormat, subject, msg.Sender, snippet)

	// Create the request based on the model family
	var payload []byte
	var err error

	if c.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	} else if c.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	// Parse the response based on the model family
	var responseText string

	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(resp.Body, &claudeResp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		responseText = claudeResp.Completion
	} else if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(resp.Body, &titanResp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return nil, fmt.Errorf("empty response from Titan model")
		}
		responseText = titanResp.Results[0].OutputText
	} else {
		var genericResp struct {
			Output   string `json:"output"`
			Text     string `json:"text"`
			Response string `json:"response"`
		}
		if err := json.Unmarshal(resp.Body, &genericResp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		if genericResp.Output != "" {
			responseText = genericResp.Output
		} else if genericResp.Text != "" {
			responseText = genericResp.Text
		} else if genericResp.Response != "" {
			responseText = genericResp.Response
		} else {
			responseText = string(resp.Body)
		}
	}

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
		ModelUsed:    c.modelID,
		ClassifiedAt: time.Now(),
	}, nil
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *BedrockClient) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *BedrockClient) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}
