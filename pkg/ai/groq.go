package ai

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/johnquangdev/voice-guard/pkg/config"
)

// GroqClient is a minimal client for Groq's OpenAI-compatible chat API
type GroqClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewGroqClient creates a Groq client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewGroqClient(cfg *config.GroqConfig) *GroqClient {
	var apiKey, base, model string
	var timeout time.Duration
	if cfg != nil {
		apiKey = cfg.APIKey
		base = cfg.BaseURL
		model = cfg.Model
		timeout = cfg.RequestTimeout
	}
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	if base == "" {
		base = os.Getenv("GROQ_API_URL")
		if base == "" {
			base = "https://api.groq.com/openai/v1"
		}
	}
	if model == "" {
		model = "llama-3.1-8b-instant"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(base))
	return &GroqClient{
		client:  &client,
		model:   model,
		timeout: timeout,
	}
}

// WithModel returns a copy of the client bound to another model
func (g *GroqClient) WithModel(model string) *GroqClient {
	if model == "" {
		return g
	}
	cp := *g
	cp.model = model
	return &cp
}

// Complete sends a system and user prompt and returns the assistant content
func (g *GroqClient) Complete(ctx context.Context, system, user string, maxTokens int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(maxTokens)
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("groq chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from groq")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// extractJSON strips markdown code fences the model may wrap JSON in
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	if start, end := strings.Index(content, "{"), strings.LastIndex(content, "}"); start >= 0 && end > start {
		content = content[start : end+1]
	}
	return strings.TrimSpace(content)
}
