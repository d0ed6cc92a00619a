package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/voice-guard/internal/usecase/errors"
	"github.com/johnquangdev/voice-guard/pkg/config"
)

type serviceFixture struct {
	svc         Service
	spoof       *fakeSpoof
	transcriber *fakeTranscriber
	cache       *memoryCache
	repo        *memoryRepo
}

func newServiceFixture(t *testing.T, mutate func(*Deps)) *serviceFixture {
	t.Helper()
	lang := &fixedLanguage{lang: "en"}
	f := &serviceFixture{
		spoof: &fakeSpoof{result: entities.SpoofResult{
			IsAuthentic:      true,
			SpoofProbability: 0.1,
			Label:            entities.LabelBonafide,
			Confidence:       0.9,
			RiskLevel:        entities.RiskLow,
			AudioDuration:    7,
		}},
		transcriber: &fakeTranscriber{segments: rawCall()},
		cache:       newMemoryCache(),
		repo:        &memoryRepo{},
	}
	deps := Deps{
		Spoof:       f.spoof,
		Transcriber: f.transcriber,
		Language:    lang,
		Scorer:      newTestScorer(lang, 0.2, 0.1, 45),
		Repo:        f.repo,
		Cache:       f.cache,
	}
	if mutate != nil {
		mutate(&deps)
	}
	f.svc = NewService(deps, config.DefaultRiskConfig(), config.AnalysisConfig{
		Workers:        2,
		Timeout:        5 * time.Second,
		MaxUploadBytes: 1024,
		CacheTTL:       time.Minute,
		StoreHistory:   true,
	}, nil)
	return f
}

func TestAnalyzeVoiceCall(t *testing.T) {
	f := newServiceFixture(t, nil)

	result, err := f.svc.AnalyzeVoiceCall(context.Background(), VoiceCallRequest{Audio: []byte("RIFF-call"), Ext: ".wav", CallID: "call-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Failed {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if result.ID == uuid.Nil || result.CallID != "call-1" || result.AudioSize != 9 || len(result.AudioSHA256) != 64 {
		t.Fatalf("unexpected metadata %+v", result)
	}
	if len(result.Segments) != 5 || len(result.SpeakerProfiles) != 3 {
		t.Fatalf("expected 5 segments and 3 speakers, got %d and %d", len(result.Segments), len(result.SpeakerProfiles))
	}
	if !strings.HasPrefix(result.Transcript, "hello this is your bank") || result.Language != "en" {
		t.Fatalf("unexpected transcript %q (%s)", result.Transcript, result.Language)
	}
	if result.RiskScore < 0 || result.RiskScore > 1 || result.RiskLevel != LevelFor(result.RiskScore, config.DefaultRiskConfig()) {
		t.Fatalf("inconsistent verdict %s %f", result.RiskLevel, result.RiskScore)
	}
	if result.AudioDuration != 7 {
		t.Fatalf("expected duration from spoof stage, got %f", result.AudioDuration)
	}

	if len(f.repo.records) != 1 || f.repo.records[0].ID != result.ID {
		t.Fatalf("expected record saved, got %+v", f.repo.records)
	}
	if _, ok := f.cache.entries[result.AudioSHA256]; !ok {
		t.Fatal("expected result cached by digest")
	}

	stats := f.svc.Stats()
	if stats.AnalysisCount != 1 || stats.FailedCount != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestAnalyzeVoiceCallCacheHit(t *testing.T) {
	f := newServiceFixture(t, nil)
	req := VoiceCallRequest{Audio: []byte("same audio"), Ext: "wav"}

	first, _ := f.svc.AnalyzeVoiceCall(context.Background(), req)
	second, err := f.svc.AnalyzeVoiceCall(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("expected cached result for identical audio")
	}
	if f.transcriber.calls.Load() != 1 || f.spoof.calls.Load() != 1 {
		t.Fatal("cached submission must not call models again")
	}
	if f.svc.Stats().CacheHits != 1 {
		t.Fatalf("expected one cache hit, got %+v", f.svc.Stats())
	}
}

func TestAnalyzeVoiceCallCacheHitRestampsCaller(t *testing.T) {
	f := newServiceFixture(t, nil)
	audio := []byte("shared recording")

	first, _ := f.svc.AnalyzeVoiceCall(context.Background(), VoiceCallRequest{Audio: audio, CallID: "call-a"})
	second, err := f.svc.AnalyzeVoiceCall(context.Background(), VoiceCallRequest{Audio: audio, CallID: "call-b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.CallID != "call-b" || second.RiskScore != first.RiskScore || second.ID != first.ID {
		t.Fatalf("expected first verdict under second call id, got %+v", second)
	}
	if second.Timestamp.Before(first.Timestamp) {
		t.Fatal("expected cache hit stamped at serve time")
	}
	if first.CallID != "call-a" || f.cache.entries[first.AudioSHA256].CallID != "call-a" {
		t.Fatal("cached entry must not be mutated by a later caller")
	}
}

func TestAnalyzeVoiceCallSpoofFailureIsFailSafe(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.spoof.err = errors.New("model server down")

	result, err := f.svc.AnalyzeVoiceCall(context.Background(), VoiceCallRequest{Audio: []byte("audio")})
	if err != nil {
		t.Fatalf("pipeline failure must not surface as error: %v", err)
	}
	if !result.Failed || result.RiskLevel != entities.RiskHigh || result.RiskScore != 1.0 || result.Confidence != 0 {
		t.Fatalf("expected fail-safe verdict, got %+v", result)
	}
	if len(result.RiskFactors) != 1 || !strings.Contains(result.RiskFactors[0], "spoof_detection") || !strings.Contains(result.RiskFactors[0], "model server down") {
		t.Fatalf("expected factor naming the failure, got %v", result.RiskFactors)
	}
	if result.Spoof.SpoofProbability != 1.0 || result.Spoof.IsAuthentic {
		t.Fatalf("expected worst-case spoof verdict, got %+v", result.Spoof)
	}
	if len(f.cache.entries) != 0 {
		t.Fatal("failed results must not be cached")
	}
	if len(f.repo.records) != 1 || !f.repo.records[0].Failed {
		t.Fatal("failed results are still recorded")
	}
	if f.svc.Stats().FailedCount != 1 {
		t.Fatalf("expected failure counted, got %+v", f.svc.Stats())
	}
}

func TestAnalyzeVoiceCallPanicIsFailSafe(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.spoof.panics = true

	result, err := f.svc.AnalyzeVoiceCall(context.Background(), VoiceCallRequest{Audio: []byte("audio")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Failed || result.RiskLevel != entities.RiskHigh || !strings.Contains(result.RiskFactors[0], "panic") {
		t.Fatalf("expected fail-safe verdict after panic, got %+v", result)
	}
}

func TestAnalyzeVoiceCallProfilingPanicIsFailSafe(t *testing.T) {
	lang := &fixedLanguage{lang: "en"}
	classifier := &crashingClassifier{nth: 2}
	f := newServiceFixture(t, func(d *Deps) {
		// first call scores the full transcript, the second a speaker
		d.Scorer = NewTextScorer(lang, classifier, &fakeProb{}, &fakePerplexity{ppl: 45}, config.DefaultRiskConfig(), nil)
	})

	result, err := f.svc.AnalyzeVoiceCall(context.Background(), VoiceCallRequest{Audio: []byte("audio")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Failed || result.RiskLevel != entities.RiskHigh || result.RiskScore != 1.0 || result.Confidence != 0 {
		t.Fatalf("expected fail-safe verdict, got %+v", result)
	}
	if !strings.Contains(result.RiskFactors[0], string(entities.StageProfiling)) || !strings.Contains(result.RiskFactors[0], "panic") {
		t.Fatalf("expected factor naming the profiling panic, got %v", result.RiskFactors)
	}
}

func TestAnalyzeVoiceCallTranslationPanicIsFailSafe(t *testing.T) {
	lang := &crashingTranslator{fixedLanguage{lang: "es"}}
	f := newServiceFixture(t, func(d *Deps) {
		d.Language = lang
		d.Scorer = newTestScorer(lang, 0.2, 0.1, 45)
	})

	result, err := f.svc.AnalyzeVoiceCall(context.Background(), VoiceCallRequest{Audio: []byte("audio")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Failed || result.RiskLevel != entities.RiskHigh || result.RiskScore != 1.0 {
		t.Fatalf("expected fail-safe verdict, got %+v", result)
	}
	if !strings.Contains(result.RiskFactors[0], string(entities.StageTranslation)) {
		t.Fatalf("expected factor naming translation, got %v", result.RiskFactors)
	}
}

func TestAnalyzeVoiceCallTranscriberFailure(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.transcriber.err = errors.New("quota exceeded")

	result, _ := f.svc.AnalyzeVoiceCall(context.Background(), VoiceCallRequest{Audio: []byte("audio")})
	if !result.Failed || !strings.Contains(result.RiskFactors[0], "transcription") {
		t.Fatalf("expected transcription failure, got %v", result.RiskFactors)
	}
}

func TestAnalyzeVoiceCallInputErrors(t *testing.T) {
	f := newServiceFixture(t, nil)
	tests := []struct {
		name string
		req  VoiceCallRequest
		want error
	}{
		{"missing", VoiceCallRequest{}, usecaseErrors.ErrMissingAudio},
		{"empty", VoiceCallRequest{Audio: []byte{}}, usecaseErrors.ErrEmptyAudio},
		{"too large", VoiceCallRequest{Audio: make([]byte, 2048)}, usecaseErrors.ErrAudioTooLarge},
		{"unsupported", VoiceCallRequest{Audio: []byte("x"), Ext: ".txt"}, usecaseErrors.ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AnalyzeVoiceCall(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if f.spoof.calls.Load() != 0 || f.transcriber.calls.Load() != 0 {
		t.Fatal("input errors must be rejected before any model call")
	}
}

func TestAnalyzeVoiceCallSideEffectFailuresIgnored(t *testing.T) {
	f := newServiceFixture(t, func(d *Deps) {
		d.Archive = failingArchive{}
	})
	f.repo.err = errors.New("db down")

	result, err := f.svc.AnalyzeVoiceCall(context.Background(), VoiceCallRequest{Audio: []byte("audio"), Ext: ".mp3"})
	if err != nil || result.Failed {
		t.Fatalf("persistence failures must not change the result: %v %+v", err, result)
	}
	if result.ArchiveKey != "" {
		t.Fatalf("expected no archive key, got %q", result.ArchiveKey)
	}
}

func TestAnalyzeVoiceCallCancelledWhileWaiting(t *testing.T) {
	f := newServiceFixture(t, func(d *Deps) {})
	svc := f.svc.(*analysisService)
	// occupy every worker slot
	for len(svc.slots) > 0 {
		<-svc.slots
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.AnalyzeVoiceCall(ctx, VoiceCallRequest{Audio: []byte("audio")}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAnalyzeText(t *testing.T) {
	f := newServiceFixture(t, nil)
	if _, err := f.svc.AnalyzeText(context.Background(), "  "); !errors.Is(err, usecaseErrors.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	risk, err := f.svc.AnalyzeText(context.Background(), "buy a gift card")
	if err != nil || risk.RuleScore != 0.4 {
		t.Fatalf("unexpected text risk %+v %v", risk, err)
	}
}

func TestDetectSpoofFailureUsesWorstCase(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.spoof.err = errors.New("timeout")

	res, err := f.svc.DetectSpoof(context.Background(), []byte("audio"), ".wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SpoofProbability != 1.0 || res.Confidence != 0 || res.IsAuthentic || res.RiskLevel != entities.RiskHigh {
		t.Fatalf("expected worst-case verdict, got %+v", res)
	}
	if _, err := f.svc.DetectSpoof(context.Background(), nil, ""); !errors.Is(err, usecaseErrors.ErrMissingAudio) {
		t.Fatalf("expected ErrMissingAudio, got %v", err)
	}
}

func TestGetAndListAnalyses(t *testing.T) {
	f := newServiceFixture(t, nil)
	result, _ := f.svc.AnalyzeVoiceCall(context.Background(), VoiceCallRequest{Audio: []byte("audio")})

	rec, err := f.svc.GetAnalysis(context.Background(), result.ID)
	if err != nil || rec.ID != result.ID {
		t.Fatalf("expected stored record, got %+v %v", rec, err)
	}
	if _, err := f.svc.GetAnalysis(context.Background(), uuid.New()); !errors.Is(err, usecaseErrors.ErrAnalysisNotFound) {
		t.Fatalf("expected ErrAnalysisNotFound, got %v", err)
	}

	records, total, err := f.svc.ListAnalyses(context.Background(), repositoriesFilters(0))
	if err != nil || total != 1 || len(records) != 1 {
		t.Fatalf("unexpected list %d %d %v", len(records), total, err)
	}

	noRepo := newServiceFixture(t, func(d *Deps) { d.Repo = nil })
	if _, err := noRepo.svc.GetAnalysis(context.Background(), result.ID); !errors.Is(err, usecaseErrors.ErrHistoryDisabled) {
		t.Fatalf("expected ErrHistoryDisabled, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	f := newServiceFixture(t, func(d *Deps) {
		d.Probes = map[string]Probe{
			"spoof_model": func(context.Context) error { return nil },
			"redis":       func(context.Context) error { return errors.New("refused") },
		}
	})
	h := f.svc.Health(context.Background())
	if !h["spoof_model"] || h["redis"] || !h["transcriber"] || h["archive"] {
		t.Fatalf("unexpected health %v", h)
	}
}

func TestNormalizeExt(t *testing.T) {
	for in, want := range map[string]string{
		"wav":       ".wav",
		".MP3":      ".mp3",
		"call.FLAC": ".flac",
		"":          "",
	} {
		if got := NormalizeExt(in); got != want {
			t.Errorf("NormalizeExt(%q) = %q, want %q", in, got, want)
		}
	}
}
