package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/johnquangdev/voice-guard/pkg/config"
)

// LogisticWeights is a pretrained logistic-regression head over sentence
// embeddings, stored as JSON
type LogisticWeights struct {
	EmbeddingModel string    `json:"embedding_model"`
	Weights        []float64 `json:"weights"`
	Bias           float64   `json:"bias"`
}

// LoadLogisticWeights reads weights from path; called once at startup
func LoadLogisticWeights(path string) (*LogisticWeights, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier weights: %w", err)
	}
	var w LogisticWeights
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("failed to parse classifier weights: %w", err)
	}
	if len(w.Weights) == 0 {
		return nil, fmt.Errorf("classifier weights are empty")
	}
	return &w, nil
}

// Embedder returns a fixed-size vector for text
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// OpenAIEmbedder calls the embeddings endpoint
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder creates an embedder for model
func NewOpenAIEmbedder(cfg *config.OpenAIConfig, model string) *OpenAIEmbedder {
	var apiKey, base string
	if cfg != nil {
		apiKey, base = cfg.APIKey, cfg.BaseURL
		if model == "" {
			model = cfg.EmbeddingModel
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	client := openai.NewClient(opts...)
	return &OpenAIEmbedder{client: &client, model: model}
}

// Embed returns the embedding of text
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return resp.Data[0].Embedding, nil
}

// LogisticClassifier is the supervised scam classifier
type LogisticClassifier struct {
	embedder Embedder
	weights  *LogisticWeights
}

// NewLogisticClassifier creates a classifier from an embedder and loaded weights
func NewLogisticClassifier(embedder Embedder, weights *LogisticWeights) *LogisticClassifier {
	return &LogisticClassifier{embedder: embedder, weights: weights}
}

// Probability returns sigmoid(w·embed(text) + b)
func (c *LogisticClassifier) Probability(ctx context.Context, text string) (float64, error) {
	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return 0, err
	}
	if len(vec) != len(c.weights.Weights) {
		return 0, fmt.Errorf("embedding has %d dims, weights expect %d", len(vec), len(c.weights.Weights))
	}
	z := c.weights.Bias
	for i, v := range vec {
		z += v * c.weights.Weights[i]
	}
	return 1 / (1 + math.Exp(-z)), nil
}
