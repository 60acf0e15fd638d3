package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/remitlab/reclaim/internal/model"
)

// OpenAIClassifier asks an OpenAI chat model to classify ambiguous denial
// reasons. Requests are rate limited with a shared token bucket so a large
// batch cannot flood the API.
type OpenAIClassifier struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

// NewOpenAIClassifier creates a model-backed classifier
func NewOpenAIClassifier(cfg model.ClassifierConfig) (*OpenAIClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	chatModel := cfg.Model
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	return &OpenAIClassifier{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   chatModel,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

// Name returns the provider name
func (c *OpenAIClassifier) Name() string {
	return "openai"
}

const classifyPrompt = `You are classifying denial reasons on rejected healthcare insurance claims.
Decide whether a claim denied for the given reason could plausibly be corrected and resubmitted.

Respond with ONLY a JSON object of the form:
{"eligible": true|false, "confidence": 0.0-1.0, "explanation": "one sentence"}

Denial reason: %q`

type classifyReply struct {
	Eligible    bool    `json:"eligible"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// Classify sends the reason to the chat model and parses its verdict
func (c *OpenAIClassifier) Classify(ctx context.Context, reason string) (model.ReasonAnalysis, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return model.ReasonAnalysis{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(classifyPrompt, reason),
			},
		},
		MaxTokens:   200,
		Temperature: 0, // Deterministic as possible for a rule substitute
	})
	if err != nil {
		return model.ReasonAnalysis{}, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return model.ReasonAnalysis{}, fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.Trim(content, "`")

	var reply classifyReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return model.ReasonAnalysis{}, fmt.Errorf("parse classifier reply: %w", err)
	}

	if reply.Confidence < 0 {
		reply.Confidence = 0
	}
	if reply.Confidence > 1 {
		reply.Confidence = 1
	}

	return model.ReasonAnalysis{
		Eligible:   reply.Eligible,
		Confidence: reply.Confidence,
		Reason:     fmt.Sprintf("LLM classified: %s", reply.Explanation),
	}, nil
}
