package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
	"github.com/johnquangdev/voice-guard/pkg/config"
)

// WhisperTranscriber transcribes audio with the OpenAI audio API
type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

// NewWhisperTranscriber creates a whisper transcriber
func NewWhisperTranscriber(cfg *config.OpenAIConfig) *WhisperTranscriber {
	var apiKey, base, model string
	if cfg != nil {
		apiKey, base, model = cfg.APIKey, cfg.BaseURL, cfg.WhisperModel
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if model == "" {
		model = "whisper-1"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	client := openai.NewClient(opts...)
	return &WhisperTranscriber{client: &client, model: model}
}

type verboseTranscription struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe returns whisper's own segments in the spoken language
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte) ([]entities.RawSegment, error) {
	resp, err := w.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:           openai.File(bytes.NewReader(audio), "call.wav", "audio/wav"),
		Model:          openai.AudioModel(w.model),
		ResponseFormat: openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper transcription: %w", err)
	}
	return parseVerboseTranscription(resp.RawJSON())
}

func parseVerboseTranscription(raw string) ([]entities.RawSegment, error) {
	var vt verboseTranscription
	if err := json.Unmarshal([]byte(raw), &vt); err != nil {
		return nil, fmt.Errorf("failed to parse whisper response: %w", err)
	}

	segments := make([]entities.RawSegment, 0, len(vt.Segments))
	for _, s := range vt.Segments {
		segments = append(segments, entities.RawSegment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}
	if len(segments) == 0 && strings.TrimSpace(vt.Text) != "" && vt.Duration > 0 {
		segments = append(segments, entities.RawSegment{Start: 0, End: vt.Duration, Text: strings.TrimSpace(vt.Text)})
	}
	return segments, nil
}
