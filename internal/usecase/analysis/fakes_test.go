package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
	"github.com/johnquangdev/voice-guard/internal/domain/repositories"
	"github.com/johnquangdev/voice-guard/internal/usecase/language"
	"github.com/johnquangdev/voice-guard/pkg/config"
)

var errModel = errors.New("model unavailable")

// fixedLanguage reports one language for every text and prefixes
// translations with "EN:"
type fixedLanguage struct {
	lang         string
	translations atomic.Int32
}

func (f *fixedLanguage) Detect(_ context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return language.Unknown
	}
	return f.lang
}

func (f *fixedLanguage) Translate(_ context.Context, text, src string) (string, string, bool) {
	if src == language.English || src == language.Unknown {
		return text, src, false
	}
	f.translations.Add(1)
	return "EN: " + text, src, true
}

type fakeProb struct {
	p     float64
	err   error
	calls atomic.Int32
}

func (f *fakeProb) ScamProbability(_ context.Context, _ string) (float64, error) {
	f.calls.Add(1)
	return f.p, f.err
}

func (f *fakeProb) Probability(_ context.Context, _ string) (float64, error) {
	f.calls.Add(1)
	return f.p, f.err
}

// crashingClassifier panics on the nth call and scores 0 otherwise
type crashingClassifier struct {
	nth   int32
	calls atomic.Int32
}

func (c *crashingClassifier) ScamProbability(_ context.Context, _ string) (float64, error) {
	if c.calls.Add(1) == c.nth {
		panic("classifier crashed on speaker text")
	}
	return 0, nil
}

// crashingTranslator detects one non-English language and panics on
// translation
type crashingTranslator struct {
	fixedLanguage
}

func (c *crashingTranslator) Translate(context.Context, string, string) (string, string, bool) {
	panic("translator crashed")
}

type fakePerplexity struct {
	ppl   float64
	err   error
	calls atomic.Int32
}

func (f *fakePerplexity) Perplexity(_ context.Context, _ string) (float64, error) {
	f.calls.Add(1)
	return f.ppl, f.err
}

type fakeSpoof struct {
	result entities.SpoofResult
	err    error
	panics bool
	calls  atomic.Int32
}

func (f *fakeSpoof) DetectSpoof(_ context.Context, _ []byte) (entities.SpoofResult, error) {
	f.calls.Add(1)
	if f.panics {
		panic("spoof model crashed")
	}
	return f.result, f.err
}

type fakeTranscriber struct {
	segments []entities.RawSegment
	err      error
	calls    atomic.Int32
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte) ([]entities.RawSegment, error) {
	f.calls.Add(1)
	return f.segments, f.err
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*entities.AnalysisResult
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*entities.AnalysisResult{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (*entities.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	return r, ok
}

func (c *memoryCache) Set(_ context.Context, key string, result *entities.AnalysisResult, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = result
	return nil
}

type memoryRepo struct {
	mu      sync.Mutex
	records []*entities.AnalysisRecord
	err     error
}

func (r *memoryRepo) Create(_ context.Context, record *entities.AnalysisRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.AnalysisRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *memoryRepo) FindLatestByDigest(_ context.Context, sha string) (*entities.AnalysisRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].AudioSHA256 == sha && !r.records[i].Failed {
			return r.records[i], nil
		}
	}
	return nil, nil
}

func (r *memoryRepo) List(_ context.Context, f repositories.AnalysisFilters) ([]*entities.AnalysisRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.AnalysisRecord
	for _, rec := range r.records {
		if f.RiskLevel != nil && rec.RiskLevel != *f.RiskLevel {
			continue
		}
		out = append(out, rec)
	}
	total := int64(len(out))
	if f.Offset < len(out) {
		out = out[f.Offset:]
	} else {
		out = nil
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

type failingArchive struct{}

func (failingArchive) ArchiveAudio(context.Context, uuid.UUID, string, []byte) (string, error) {
	return "", errors.New("bucket unreachable")
}

func newTestScorer(lang LanguageService, semantic, learned float64, ppl float64) *TextScorer {
	return NewTextScorer(
		lang,
		&fakeProb{p: semantic},
		&fakeProb{p: learned},
		&fakePerplexity{ppl: ppl},
		config.DefaultRiskConfig(),
		nil,
	)
}

func repositoriesFilters(offset int) repositories.AnalysisFilters {
	return repositories.AnalysisFilters{Limit: 10, Offset: offset}
}
