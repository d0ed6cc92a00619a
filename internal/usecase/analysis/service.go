package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
	"github.com/johnquangdev/voice-guard/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/voice-guard/internal/usecase/errors"
	"github.com/johnquangdev/voice-guard/pkg/config"
	"github.com/johnquangdev/voice-guard/pkg/jobcontext"
)

const jobTypeVoiceCall = "voice_call"

// SupportedExtensions are the accepted audio upload extensions
var SupportedExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
}

// Service defines the voice-call analysis use case
type Service interface {
	// AnalyzeVoiceCall runs the full pipeline. Input errors are returned;
	// pipeline failures come back as a Failed result, never as an error.
	AnalyzeVoiceCall(ctx context.Context, req VoiceCallRequest) (*entities.AnalysisResult, error)

	// AnalyzeText scores a single text
	AnalyzeText(ctx context.Context, text string) (entities.TextRisk, error)

	// DetectSpoof runs only the spoof detector; detector failures yield the
	// worst-case verdict
	DetectSpoof(ctx context.Context, audio []byte, ext string) (entities.SpoofResult, error)

	// GetAnalysis retrieves a stored analysis
	GetAnalysis(ctx context.Context, id uuid.UUID) (*entities.AnalysisRecord, error)

	// ListAnalyses retrieves stored analyses with filters
	ListAnalyses(ctx context.Context, filters repositories.AnalysisFilters) ([]*entities.AnalysisRecord, int64, error)

	// Stats returns process-lifetime counters
	Stats() entities.ProcessingStats

	// Health reports component availability
	Health(ctx context.Context) map[string]bool
}

// VoiceCallRequest is one submitted recording
type VoiceCallRequest struct {
	Audio  []byte
	Ext    string // file extension including the dot; empty when unknown
	CallID string
}

// Probe checks one external component
type Probe func(ctx context.Context) error

// Deps are the collaborators of the analysis service. Spoof, Transcriber,
// Language and Scorer are required; the rest may be nil.
type Deps struct {
	Spoof       SpoofDetector
	Transcriber Transcriber
	Language    LanguageService
	Turns       TurnDetector
	Scorer      *TextScorer

	Repo    repositories.AnalysisRepository
	Cache   ResultCache
	Archive AudioArchive
	Probes  map[string]Probe

	// LanguageCacheSize reports the language cache entry count for Stats
	LanguageCacheSize func() int
}

type analysisService struct {
	deps      Deps
	segmenter *Segmenter
	profiler  *Profiler
	flow      *FlowAnalyzer
	fuser     *Fuser
	cfg       config.AnalysisConfig
	logger    *zap.Logger

	slots chan int
	stats statsCounter
}

// NewService constructs the analysis service
func NewService(deps Deps, riskCfg config.RiskConfig, cfg config.AnalysisConfig, logger *zap.Logger) Service {
	if deps.Turns == nil {
		deps.Turns = NewHeuristicTurns(riskCfg.TurnGapSeconds, riskCfg.TurnModulus)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	slots := make(chan int, workers)
	for i := 0; i < workers; i++ {
		slots <- i
	}

	return &analysisService{
		deps:      deps,
		segmenter: NewSegmenter(deps.Turns, deps.Language, logger),
		profiler:  NewProfiler(deps.Scorer, logger),
		flow:      NewFlowAnalyzer(riskCfg),
		fuser:     NewFuser(riskCfg),
		cfg:       cfg,
		logger:    logger,
		slots:     slots,
	}
}

// ValidateAudio rejects input before any model runs
func ValidateAudio(audio []byte, ext string, maxBytes int64) error {
	if audio == nil {
		return usecaseErrors.ErrMissingAudio
	}
	if len(audio) == 0 {
		return usecaseErrors.ErrEmptyAudio
	}
	if maxBytes > 0 && int64(len(audio)) > maxBytes {
		return usecaseErrors.ErrAudioTooLarge
	}
	if ext != "" && !SupportedExtensions[NormalizeExt(ext)] {
		return usecaseErrors.ErrUnsupportedFormat
	}
	return nil
}

// NormalizeExt lowercases an extension or filename suffix and ensures the
// leading dot
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if e := filepath.Ext(ext); e != "" {
		ext = e
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func digest(audio []byte) string {
	sum := sha256.Sum256(audio)
	return hex.EncodeToString(sum[:])
}

// AnalyzeVoiceCall implements Service
func (s *analysisService) AnalyzeVoiceCall(ctx context.Context, req VoiceCallRequest) (*entities.AnalysisResult, error) {
	if err := ValidateAudio(req.Audio, req.Ext, s.cfg.MaxUploadBytes); err != nil {
		return nil, err
	}
	sum := digest(req.Audio)

	if s.deps.Cache != nil {
		if cached, ok := s.deps.Cache.Get(ctx, sum); ok {
			s.stats.hit()
			// The verdict is reused; the submission metadata belongs to
			// this caller. ID still names the analysis that produced it.
			served := *cached
			served.CallID = req.CallID
			served.Timestamp = time.Now().UTC()
			if s.logger != nil {
				s.logger.Info("✅ Analysis served from cache",
					zap.String("analysis_id", served.ID.String()),
					zap.String("call_id", req.CallID),
					zap.String("digest", sum),
				)
			}
			return &served, nil
		}
	}

	var worker int
	select {
	case worker = <-s.slots:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { s.slots <- worker }()

	id := uuid.New()
	started := time.Now()
	jobCtx, cancel := jobcontext.JobBegin(ctx, id, jobTypeVoiceCall, worker, s.cfg.Timeout)
	defer cancel()

	if s.logger != nil {
		s.logger.Info("🔄 Analysis started",
			zap.String("analysis_id", id.String()),
			zap.String("call_id", req.CallID),
			zap.Int("worker_id", worker),
			zap.Int("audio_size", len(req.Audio)),
		)
	}

	var result *entities.AnalysisResult
	err := jobcontext.JobEnd(jobCtx, func(jctx context.Context) error {
		r, err := s.runPipeline(jctx, req.Audio)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		result = s.failedResult(entities.NewStageError(entities.StagePipeline, err))
		if s.logger != nil {
			s.logger.Error("❌ Analysis failed, returning fail-safe verdict",
				zap.String("analysis_id", id.String()),
				zap.Error(err),
			)
		}
	}

	elapsed := time.Since(started)
	result.ID = id
	result.CallID = req.CallID
	result.Timestamp = started.UTC()
	result.ProcessingTime = elapsed.Seconds()
	result.AudioSize = len(req.Audio)
	result.AudioSHA256 = sum
	s.stats.record(elapsed, result.Failed)

	// Side effects run on the caller's context; the job deadline may have
	// already fired.
	s.persist(ctx, req, result)

	if s.logger != nil && !result.Failed {
		s.logger.Info("✅ Analysis completed",
			zap.String("analysis_id", id.String()),
			zap.String("risk_level", string(result.RiskLevel)),
			zap.Float64("risk_score", result.RiskScore),
			zap.Float64("processing_time", result.ProcessingTime),
		)
	}
	return result, nil
}

// runPipeline executes the stages in order. Any returned error is a
// StageError and turns into the fail-safe result.
func (s *analysisService) runPipeline(ctx context.Context, audio []byte) (*entities.AnalysisResult, error) {
	var (
		spoof entities.SpoofResult
		raw   []entities.RawSegment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(guard(entities.StageSpoof, func() error {
		r, err := s.deps.Spoof.DetectSpoof(gctx, audio)
		if err != nil {
			return entities.NewStageError(entities.StageSpoof, err)
		}
		spoof = r
		return nil
	}))
	g.Go(guard(entities.StageTranscribe, func() error {
		r, err := s.deps.Transcriber.Transcribe(gctx, audio)
		if err != nil {
			return entities.NewStageError(entities.StageTranscribe, err)
		}
		raw = r
		return nil
	}))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	segments, lang, err := s.segmenter.Segment(ctx, raw)
	if err != nil {
		return nil, entities.NewStageError(entities.StageSegmentation, err)
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	transcript := strings.Join(texts, " ")

	textRisk := s.deps.Scorer.Score(ctx, transcript)
	if err := ctx.Err(); err != nil {
		return nil, entities.NewStageError(entities.StageScoring, err)
	}

	profiles, err := s.profiler.Profile(ctx, segments)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, entities.NewStageError(entities.StageProfiling, err)
	}

	flow := s.flow.Flow(segments)
	convRisk := s.flow.Risk(profiles, flow)
	fused := s.fuser.Fuse(spoof, textRisk, convRisk)

	return &entities.AnalysisResult{
		AudioDuration:    spoof.AudioDuration,
		Transcript:       transcript,
		Language:         lang,
		Segments:         segments,
		SpeakerProfiles:  profiles,
		ConversationFlow: flow,
		Spoof:            spoof,
		TextRisk:         textRisk,
		ConversationRisk: convRisk,
		RiskLevel:        fused.RiskLevel,
		RiskScore:        fused.RiskScore,
		RiskFactors:      fused.RiskFactors,
		Confidence:       fused.Confidence,
		Recommendations:  fused.Recommendations,
	}, nil
}

// guard turns a panic in a stage goroutine into a StageError. Every g.Go in
// this package runs through it; JobEnd only recovers panics on its own
// goroutine.
func guard(stage entities.Stage, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = entities.NewStageError(stage, fmt.Errorf("%w: %v", jobcontext.ErrPanic, p))
			}
		}()
		return fn()
	}
}

func (s *analysisService) failedResult(err error) *entities.AnalysisResult {
	fused := s.fuser.Failure(err)
	return &entities.AnalysisResult{
		Segments:        []entities.Segment{},
		SpeakerProfiles: []entities.SpeakerProfile{},
		ConversationFlow: entities.ConversationFlow{
			SpeakerDominance:    map[string]float64{},
			ConversationBalance: entities.BalanceUnknown,
		},
		Spoof: entities.FailedSpoofResult(err),
		TextRisk: entities.TextRisk{
			BotOrHuman: entities.BotUnknown,
		},
		ConversationRisk: entities.ConversationRisk{
			RiskAssessment: entities.RiskAssessment{RiskLevel: entities.RiskLow, RiskFactors: []string{}},
		},
		RiskLevel:       fused.RiskLevel,
		RiskScore:       fused.RiskScore,
		RiskFactors:     fused.RiskFactors,
		Confidence:      fused.Confidence,
		Recommendations: fused.Recommendations,
		Failed:          true,
		Error:           err.Error(),
	}
}

// persist archives, stores and caches result. Failures are logged only.
func (s *analysisService) persist(ctx context.Context, req VoiceCallRequest, result *entities.AnalysisResult) {
	if s.deps.Archive != nil {
		key, err := s.deps.Archive.ArchiveAudio(ctx, result.ID, NormalizeExt(req.Ext), req.Audio)
		if err != nil {
			s.warn("audio archive failed", result.ID, err)
		} else {
			result.ArchiveKey = key
		}
	}

	if s.deps.Repo != nil && s.cfg.StoreHistory {
		if err := s.deps.Repo.Create(ctx, entities.NewAnalysisRecord(result)); err != nil {
			s.warn("analysis record save failed", result.ID, err)
		}
	}

	if s.deps.Cache != nil && !result.Failed {
		if err := s.deps.Cache.Set(ctx, result.AudioSHA256, result, s.cfg.CacheTTL); err != nil {
			s.warn("result cache write failed", result.ID, err)
		}
	}
}

func (s *analysisService) warn(msg string, id uuid.UUID, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, zap.String("analysis_id", id.String()), zap.Error(err))
	}
}

// AnalyzeText implements Service
func (s *analysisService) AnalyzeText(ctx context.Context, text string) (entities.TextRisk, error) {
	if strings.TrimSpace(text) == "" {
		return entities.TextRisk{}, usecaseErrors.ErrEmptyText
	}
	return s.deps.Scorer.Score(ctx, text), nil
}

// DetectSpoof implements Service
func (s *analysisService) DetectSpoof(ctx context.Context, audio []byte, ext string) (entities.SpoofResult, error) {
	if err := ValidateAudio(audio, ext, s.cfg.MaxUploadBytes); err != nil {
		return entities.SpoofResult{}, err
	}
	result, err := s.deps.Spoof.DetectSpoof(ctx, audio)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Spoof detection failed", zap.Error(err))
		}
		return entities.FailedSpoofResult(entities.NewStageError(entities.StageSpoof, err)), nil
	}
	return result, nil
}

// GetAnalysis implements Service
func (s *analysisService) GetAnalysis(ctx context.Context, id uuid.UUID) (*entities.AnalysisRecord, error) {
	if s.deps.Repo == nil {
		return nil, usecaseErrors.ErrHistoryDisabled
	}
	record, err := s.deps.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	if record == nil {
		return nil, usecaseErrors.ErrAnalysisNotFound
	}
	return record, nil
}

// ListAnalyses implements Service
func (s *analysisService) ListAnalyses(ctx context.Context, filters repositories.AnalysisFilters) ([]*entities.AnalysisRecord, int64, error) {
	if s.deps.Repo == nil {
		return nil, 0, usecaseErrors.ErrHistoryDisabled
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	records, total, err := s.deps.Repo.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list analyses: %w", err)
	}
	return records, total, nil
}

// Stats implements Service
func (s *analysisService) Stats() entities.ProcessingStats {
	stats := s.stats.snapshot()
	if s.deps.LanguageCacheSize != nil {
		stats.LanguageCacheSize = s.deps.LanguageCacheSize()
	}
	return stats
}

// Health implements Service
func (s *analysisService) Health(ctx context.Context) map[string]bool {
	status := map[string]bool{
		"spoof_detector": s.deps.Spoof != nil,
		"transcriber":    s.deps.Transcriber != nil,
		"text_scorer":    s.deps.Scorer != nil,
		"language":       s.deps.Language != nil,
		"history":        s.deps.Repo != nil,
		"cache":          s.deps.Cache != nil,
		"archive":        s.deps.Archive != nil,
	}
	for name, probe := range s.deps.Probes {
		status[name] = probe(ctx) == nil
	}
	return status
}
