package analysis

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
	"github.com/johnquangdev/voice-guard/internal/usecase/language"
)

const (
	indicatorScamThreshold  = 0.7
	fastSpeechWPM           = 200
	slowSpeechWPM           = 50
	translationRatioLimit   = 0.5
	durationVarianceLimit   = 10
	profileScoreConcurrency = 4
)

// Speaker risk indicator tags
const (
	IndicatorHighScam     = "high scam probability"
	IndicatorBotLike      = "bot-like patterns"
	IndicatorFastSpeech   = "unusually fast speech"
	IndicatorSlowSpeech   = "unusually slow speech"
	IndicatorTranslated   = "high translated content"
	IndicatorFiller       = "filler words detected"
	IndicatorInconsistent = "inconsistent speech patterns"
)

type textRiskScorer interface {
	Score(ctx context.Context, text string) entities.TextRisk
}

// Profiler builds per-speaker behavioral profiles
type Profiler struct {
	scorer textRiskScorer
	logger *zap.Logger
}

// NewProfiler creates a profiler
func NewProfiler(scorer textRiskScorer, logger *zap.Logger) *Profiler {
	return &Profiler{scorer: scorer, logger: logger}
}

// Profile groups segments by speaker in first-seen order and profiles each
// group. Speaker text scoring runs concurrently; output order is stable. A
// panicking scorer comes back as a speaker_profiling StageError.
func (p *Profiler) Profile(ctx context.Context, segments []entities.Segment) ([]entities.SpeakerProfile, error) {
	order, groups := groupBySpeaker(segments)
	profiles := make([]entities.SpeakerProfile, len(order))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(profileScoreConcurrency)
	for i, id := range order {
		i, id := i, id
		g.Go(guard(entities.StageProfiling, func() error {
			profiles[i] = p.profile(gctx, id, groups[id])
			return nil
		}))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if p.logger != nil {
		p.logger.Info("speaker profiles built", zap.Int("speakers", len(profiles)))
	}
	return profiles, nil
}

func groupBySpeaker(segments []entities.Segment) ([]string, map[string][]entities.Segment) {
	var order []string
	groups := make(map[string][]entities.Segment)
	for _, seg := range segments {
		if _, ok := groups[seg.SpeakerID]; !ok {
			order = append(order, seg.SpeakerID)
		}
		groups[seg.SpeakerID] = append(groups[seg.SpeakerID], seg)
	}
	return order, groups
}

func (p *Profiler) profile(ctx context.Context, speakerID string, segs []entities.Segment) entities.SpeakerProfile {
	durations := make([]float64, len(segs))
	texts := make([]string, 0, len(segs))
	totalDuration := 0.0
	translated := 0
	lang := language.Unknown
	for i, seg := range segs {
		durations[i] = seg.Duration()
		totalDuration += durations[i]
		if seg.IsTranslated {
			translated++
		}
		if i == 0 && seg.DetectedLanguage != "" {
			lang = seg.DetectedLanguage
		}
		if t := strings.TrimSpace(seg.Text); t != "" {
			texts = append(texts, t)
		}
	}

	allText := strings.Join(texts, " ")
	risk := p.scorer.Score(ctx, allText)

	totalWords := len(strings.Fields(allText))
	wpm := 0.0
	if totalDuration > 0 {
		wpm = float64(totalWords) / (totalDuration / 60)
	}

	patterns := entities.SpeechPatterns{
		ScamScore:          risk.ScamScore,
		BotHumanScore:      risk.BotOrHuman,
		Perplexity:         risk.Perplexity,
		HasFillerWords:     risk.HasFiller,
		WordsPerMinute:     wpm,
		AvgSegmentDuration: mean(durations),
		DurationVariance:   populationVariance(durations),
		TranslationRatio:   float64(translated) / float64(len(segs)),
		TotalWords:         totalWords,
	}

	return entities.SpeakerProfile{
		SpeakerID:        speakerID,
		TotalSegments:    len(segs),
		TotalDuration:    totalDuration,
		Language:         lang,
		AvgSegmentLength: totalDuration / float64(len(segs)),
		SpeechPatterns:   patterns,
		RiskIndicators:   speakerIndicators(patterns),
	}
}

func speakerIndicators(sp entities.SpeechPatterns) []string {
	indicators := []string{}
	if sp.ScamScore > indicatorScamThreshold {
		indicators = append(indicators, IndicatorHighScam)
	}
	if sp.BotHumanScore == entities.BotLike {
		indicators = append(indicators, IndicatorBotLike)
	}
	if sp.WordsPerMinute > fastSpeechWPM {
		indicators = append(indicators, IndicatorFastSpeech)
	}
	if sp.WordsPerMinute < slowSpeechWPM {
		indicators = append(indicators, IndicatorSlowSpeech)
	}
	if sp.TranslationRatio > translationRatioLimit {
		indicators = append(indicators, IndicatorTranslated)
	}
	if sp.HasFillerWords {
		indicators = append(indicators, IndicatorFiller)
	}
	if sp.DurationVariance > durationVarianceLimit {
		indicators = append(indicators, IndicatorInconsistent)
	}
	return indicators
}
