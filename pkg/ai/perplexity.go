package ai

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/johnquangdev/voice-guard/pkg/config"
)

// LogprobPerplexity scores text with a causal language model served behind an
// OpenAI-compatible completions endpoint. The prompt is echoed with token
// logprobs and no new tokens are generated.
type LogprobPerplexity struct {
	client *openai.Client
	model  string
}

// NewLogprobPerplexity creates a perplexity model client
func NewLogprobPerplexity(cfg *config.PerplexityConfig) *LogprobPerplexity {
	var apiKey, base, model string
	if cfg != nil {
		apiKey, base, model = cfg.APIKey, cfg.BaseURL, cfg.Model
	}
	if apiKey == "" {
		apiKey = os.Getenv("PERPLEXITY_API_KEY")
	}
	if model == "" {
		model = "gpt2"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	client := openai.NewClient(opts...)
	return &LogprobPerplexity{client: &client, model: model}
}

// Perplexity returns exp of the mean negative log-likelihood of text
func (p *LogprobPerplexity) Perplexity(ctx context.Context, text string) (float64, error) {
	resp, err := p.client.Completions.New(ctx, openai.CompletionNewParams{
		Model:     openai.CompletionNewParamsModel(p.model),
		Prompt:    openai.CompletionNewParamsPromptUnion{OfString: openai.String(text)},
		Echo:      openai.Bool(true),
		Logprobs:  openai.Int(0),
		MaxTokens: openai.Int(0),
	})
	if err != nil {
		return 0, fmt.Errorf("perplexity completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("empty perplexity response")
	}
	return perplexityFromLogprobs(resp.Choices[0].Logprobs.TokenLogprobs)
}

// perplexityFromLogprobs skips the first token, which has no context
func perplexityFromLogprobs(logprobs []float64) (float64, error) {
	if len(logprobs) < 2 {
		return 0, fmt.Errorf("need at least two tokens, got %d", len(logprobs))
	}
	sum := 0.0
	for _, lp := range logprobs[1:] {
		sum += lp
	}
	mean := sum / float64(len(logprobs)-1)
	return math.Exp(-mean), nil
}
