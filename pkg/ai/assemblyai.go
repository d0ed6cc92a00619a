package ai

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
	"github.com/johnquangdev/voice-guard/pkg/config"
)

// segmentGapMillis splits word runs at pauses of at least this length
const segmentGapMillis = 800

// AssemblyAITranscriber transcribes call audio with the official SDK and
// regroups timed words into segments
type AssemblyAITranscriber struct {
	client *aai.Client
}

// NewAssemblyAITranscriber creates a transcriber using the provided config.
// If cfg is nil, falls back to environment variables.
func NewAssemblyAITranscriber(cfg *config.AssemblyAIConfig, opts ...aai.ClientOption) *AssemblyAITranscriber {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}
	opts = append([]aai.ClientOption{aai.WithAPIKey(apiKey)}, opts...)
	return &AssemblyAITranscriber{client: aai.NewClientWithOptions(opts...)}
}

// Transcribe uploads audio, waits for completion and returns segments in the
// spoken language
func (t *AssemblyAITranscriber) Transcribe(ctx context.Context, audio []byte) ([]entities.RawSegment, error) {
	params := &aai.TranscriptOptionalParams{
		LanguageDetection: aai.Bool(true),
		Punctuate:         aai.Bool(true),
		FormatText:        aai.Bool(true),
	}

	transcript, err := t.client.Transcripts.TranscribeFromReader(ctx, bytes.NewReader(audio), params)
	if err != nil {
		return nil, fmt.Errorf("assemblyai transcription: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		msg := "unknown error"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return nil, fmt.Errorf("assemblyai transcription failed: %s", msg)
	}

	words := make([]timedWord, 0, len(transcript.Words))
	for _, w := range transcript.Words {
		if w.Text == nil || w.Start == nil || w.End == nil {
			continue
		}
		words = append(words, timedWord{text: *w.Text, startMs: *w.Start, endMs: *w.End})
	}
	return segmentsFromWords(words), nil
}

type timedWord struct {
	text    string
	startMs int64
	endMs   int64
}

// segmentsFromWords closes a segment after sentence-ending punctuation or
// before a pause of segmentGapMillis or more
func segmentsFromWords(words []timedWord) []entities.RawSegment {
	var segments []entities.RawSegment
	var current []string
	var start, end int64

	flush := func() {
		if len(current) == 0 {
			return
		}
		segments = append(segments, entities.RawSegment{
			Start: float64(start) / 1000.0,
			End:   float64(end) / 1000.0,
			Text:  strings.Join(current, " "),
		})
		current = nil
	}

	for _, w := range words {
		text := strings.TrimSpace(w.text)
		if text == "" {
			continue
		}
		if len(current) > 0 && w.startMs-end >= segmentGapMillis {
			flush()
		}
		if len(current) == 0 {
			start = w.startMs
		}
		current = append(current, text)
		end = w.endMs
		if strings.ContainsAny(text[len(text)-1:], ".?!") {
			flush()
		}
	}
	flush()
	return segments
}
