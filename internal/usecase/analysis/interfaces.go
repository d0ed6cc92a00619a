package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
)

// SpoofDetector scores audio authenticity
type SpoofDetector interface {
	DetectSpoof(ctx context.Context, audio []byte) (entities.SpoofResult, error)
}

// Transcriber turns audio into time-ordered text segments
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) ([]entities.RawSegment, error)
}

// ZeroShotClassifier returns the probability of the "scam" label against "legitimate"
type ZeroShotClassifier interface {
	ScamProbability(ctx context.Context, text string) (float64, error)
}

// SupervisedClassifier returns a learned scam probability in [0,1]
type SupervisedClassifier interface {
	Probability(ctx context.Context, text string) (float64, error)
}

// PerplexityModel returns the language-model perplexity of text
type PerplexityModel interface {
	Perplexity(ctx context.Context, text string) (float64, error)
}

// LanguageService detects languages and translates to English
type LanguageService interface {
	Detect(ctx context.Context, text string) string
	Translate(ctx context.Context, text, sourceLang string) (string, string, bool)
}

// TurnDetector infers speaker turns from raw timed segments
type TurnDetector interface {
	AssignSpeakers(ctx context.Context, raw []entities.RawSegment) ([]entities.Segment, error)
}

// ResultCache stores finished results keyed by audio digest
type ResultCache interface {
	Get(ctx context.Context, key string) (*entities.AnalysisResult, bool)
	Set(ctx context.Context, key string, result *entities.AnalysisResult, ttl time.Duration) error
}

// AudioArchive keeps a copy of submitted audio and returns its object key
type AudioArchive interface {
	ArchiveAudio(ctx context.Context, id uuid.UUID, ext string, audio []byte) (string, error)
}
