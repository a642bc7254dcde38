package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	domain "github.com/bryanwahyu/emergency-response/internal/domain/analysis"
	"github.com/bryanwahyu/emergency-response/internal/infra/ai/prompt"
)

const (
	maxTokens = 1024

	// hardTimeout bounds every provider call. The adapter tries once and
	// reports the outcome; it never retries and never falls back itself.
	hardTimeout = 5 * time.Second

	// temperature is kept low to bias toward repeatable triage output.
	temperature = 0.1
)

type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// Analyze issues one chat completion under the hard timeout and normalizes
// the reply into a fully populated result.
//
// The timeout context derives from context.Background() on purpose: a caller
// disconnect should not cancel an in-flight completion, because the result
// is still worth caching for the next identical request.
func (c *Client) Analyze(_ context.Context, req domain.Request) (*domain.Result, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	ctx, cancel := context.WithTimeout(context.Background(), hardTimeout)
	defer cancel()

	resp, err := c.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(
				req.Message, req.Location.Latitude, req.Location.Longitude, req.ScenarioType)},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrProviderTimeout
		}
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, domain.ErrProviderMalformed
	}

	return parseResult(resp.Choices[0].Message.Content)
}

// rawResult mirrors the prompt schema. Provider output is untrusted; every
// field is optional and backfilled.
type rawResult struct {
	EmergencyType      string   `json:"emergency_type"`
	Severity           string   `json:"severity"`
	Assessment         string   `json:"assessment"`
	RecommendedActions []string `json:"recommended_actions"`
	FirstAidSteps      []string `json:"first_aid_steps"`
	WarningSigns       []string `json:"warning_signs"`
	EstimatedResponse  string   `json:"estimated_response_time"`
}

// parseResult normalizes loose provider JSON into a complete result, or
// reports ErrProviderMalformed. It never returns a partially populated
// struct.
func parseResult(content string) (*domain.Result, error) {
	content = strings.TrimSpace(content)
	// Some models still wrap JSON in fences despite instructions.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw rawResult
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, domain.ErrProviderMalformed
	}

	severity := domain.NormalizeSeverity(strings.ToLower(raw.Severity))

	category := strings.TrimSpace(raw.EmergencyType)
	if category == "" {
		category = "Emergency Situation"
	}
	assessment := strings.TrimSpace(raw.Assessment)
	if assessment == "" {
		assessment = "AI assessment unavailable, treat with standard caution"
	}

	steps := raw.FirstAidSteps
	if len(steps) == 0 {
		steps = []string{
			"Ensure scene safety",
			"Call emergency services immediately",
			"Provide basic first aid if trained",
			"Stay calm and reassuring",
		}
	}
	if len(steps) > domain.MaxFirstAidSteps {
		steps = steps[:domain.MaxFirstAidSteps]
	}

	actions := raw.RecommendedActions
	if len(actions) == 0 {
		actions = []string{
			"Call emergency services (911)",
			"Stay with the person until help arrives",
		}
	}
	signs := raw.WarningSigns
	if len(signs) == 0 {
		signs = []string{"Worsening condition", "Loss of consciousness"}
	}
	eta := strings.TrimSpace(raw.EstimatedResponse)
	if eta == "" {
		eta = domain.ResponseTimeLabel(severity)
	}

	return &domain.Result{
		EmergencyType:      category,
		Severity:           severity,
		Assessment:         assessment,
		RecommendedActions: actions,
		FirstAidSteps:      steps,
		WarningSigns:       signs,
		EstimatedResponse:  eta,
		PriorityLevel:      domain.PriorityLabel(severity),
		Source:             "ai_enhanced",
	}, nil
}
