package ai

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/johnquangdev/voice-guard/pkg/config"
)

func TestLogprobPerplexity(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["echo"] != true {
			t.Errorf("expected echo=true, got %v", body["echo"])
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "cmpl-1",
			"object":  "text_completion",
			"created": 0,
			"model":   "gpt2",
			"choices": []map[string]interface{}{{
				"index":         0,
				"text":          "hello there friend",
				"finish_reason": "length",
				"logprobs": map[string]interface{}{
					"tokens":         []string{"hello", " there", " friend"},
					"token_logprobs": []float64{0, -1, -3},
					"text_offset":    []int{0, 5, 11},
				},
			}},
		})
	}))
	defer ts.Close()

	p := NewLogprobPerplexity(&config.PerplexityConfig{BaseURL: ts.URL, APIKey: "none", Model: "gpt2"})
	ppl, err := p.Perplexity(context.Background(), "hello there friend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(ppl-math.Exp(2)) > 1e-9 {
		t.Fatalf("expected e^2, got %f", ppl)
	}
}

func TestPerplexityNeedsTwoTokens(t *testing.T) {
	if _, err := perplexityFromLogprobs([]float64{0}); err == nil {
		t.Fatal("expected error for single token")
	}
}

type fixedEmbedder []float64

func (f fixedEmbedder) Embed(context.Context, string) ([]float64, error) { return f, nil }

func TestLogisticClassifier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.json")
	os.WriteFile(path, []byte(`{"embedding_model":"text-embedding-3-small","weights":[2,-1],"bias":-1}`), 0o600)

	w, err := LoadLogisticWeights(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// z = 2*1 + -1*1 - 1 = 0
	p, err := NewLogisticClassifier(fixedEmbedder{1, 1}, w).Probability(context.Background(), "x")
	if err != nil || math.Abs(p-0.5) > 1e-9 {
		t.Fatalf("expected 0.5, got %f %v", p, err)
	}

	if _, err := NewLogisticClassifier(fixedEmbedder{1}, w).Probability(context.Background(), "x"); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestLoadLogisticWeightsErrors(t *testing.T) {
	if _, err := LoadLogisticWeights(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "empty.json")
	os.WriteFile(path, []byte(`{"weights":[]}`), 0o600)
	if _, err := LoadLogisticWeights(path); err == nil {
		t.Fatal("expected error for empty weights")
	}
}

func TestOpenAIEmbedder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"model":  "text-embedding-3-small",
			"data": []map[string]interface{}{{
				"object":    "embedding",
				"index":     0,
				"embedding": []float64{0.25, -0.5},
			}},
			"usage": map[string]int{"prompt_tokens": 2, "total_tokens": 2},
		})
	}))
	defer ts.Close()

	e := NewOpenAIEmbedder(&config.OpenAIConfig{APIKey: "k", BaseURL: ts.URL}, "text-embedding-3-small")
	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.25 || vec[1] != -0.5 {
		t.Fatalf("unexpected embedding %v", vec)
	}
}

func TestParseVerboseTranscription(t *testing.T) {
	segs, err := parseVerboseTranscription(`{"text":"hi there. bye","duration":4.2,"segments":[{"start":0,"end":1.5,"text":" hi there."},{"start":2.0,"end":4.2,"text":" bye"}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segs) != 2 || segs[0].Text != "hi there." || segs[1].Start != 2.0 {
		t.Fatalf("unexpected segments %+v", segs)
	}

	segs, err = parseVerboseTranscription(`{"text":"only text","duration":3}`)
	if err != nil || len(segs) != 1 || segs[0].End != 3 {
		t.Fatalf("expected single fallback segment, got %+v %v", segs, err)
	}
}

func TestSegmentsFromWords(t *testing.T) {
	words := []timedWord{
		{"Hello", 0, 400},
		{"sir.", 450, 900},
		{"This", 1000, 1200},
		{"is", 1250, 1400},
		{"your", 2300, 2500},
		{"bank", 2550, 2900},
	}
	segs := segmentsFromWords(words)
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(segs), segs)
	}
	if segs[0].Text != "Hello sir." || segs[0].Start != 0 || segs[0].End != 0.9 {
		t.Fatalf("unexpected first segment %+v", segs[0])
	}
	if segs[1].Text != "This is" {
		t.Fatalf("expected pause split, got %+v", segs[1])
	}
	if segs[2].Text != "your bank" || segs[2].Start != 2.3 {
		t.Fatalf("unexpected last segment %+v", segs[2])
	}
}
