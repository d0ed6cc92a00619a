package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const zeroShotSystemPrompt = `You are a zero-shot text classifier for phone call transcripts.
Candidate labels: "scam", "legitimate".
Return ONLY a JSON object mapping each label to its probability, for example {"scam": 0.2, "legitimate": 0.8}.`

// ChatClassifier is a zero-shot scam classifier backed by a chat model
type ChatClassifier struct {
	groq  *GroqClient
	label string
}

// NewChatClassifier creates a classifier; label is the positive class name
func NewChatClassifier(groq *GroqClient, label string) *ChatClassifier {
	if label == "" {
		label = "scam"
	}
	return &ChatClassifier{groq: groq, label: label}
}

// ScamProbability returns the normalized probability of the scam label
func (c *ChatClassifier) ScamProbability(ctx context.Context, text string) (float64, error) {
	content, err := c.groq.Complete(ctx, zeroShotSystemPrompt, text, 50)
	if err != nil {
		return 0, err
	}
	return parseLabelScores(content, c.label)
}

func parseLabelScores(content, label string) (float64, error) {
	var scores map[string]float64
	if err := json.Unmarshal([]byte(extractJSON(content)), &scores); err != nil {
		return 0, fmt.Errorf("failed to parse classifier response: %w", err)
	}

	total := 0.0
	positive := -1.0
	for k, v := range scores {
		if v < 0 {
			v = 0
		}
		total += v
		if strings.EqualFold(strings.TrimSpace(k), label) {
			positive = v
		}
	}
	if positive < 0 {
		return 0, fmt.Errorf("classifier response missing %q label", label)
	}
	if total <= 0 {
		return 0, nil
	}
	p := positive / total
	if p > 1 {
		p = 1
	}
	return p, nil
}
