package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
	"github.com/johnquangdev/voice-guard/internal/usecase/language"
)

const translateConcurrency = 4

// HeuristicTurns assigns speakers with a gap/modulus rule: a new nominal
// speaker starts whenever the silence before a segment exceeds GapSeconds or
// the segment index is a multiple of Modulus. Labels are turn clusters, not
// verified identities.
type HeuristicTurns struct {
	GapSeconds float64
	Modulus    int
}

// NewHeuristicTurns creates the default turn detector
func NewHeuristicTurns(gapSeconds float64, modulus int) *HeuristicTurns {
	if modulus <= 0 {
		modulus = 3
	}
	return &HeuristicTurns{GapSeconds: gapSeconds, Modulus: modulus}
}

// AssignSpeakers implements TurnDetector
func (h *HeuristicTurns) AssignSpeakers(_ context.Context, raw []entities.RawSegment) ([]entities.Segment, error) {
	ordered := normalizeRaw(raw)
	segments := make([]entities.Segment, 0, len(ordered))

	turn := 0
	for i, r := range ordered {
		if i > 0 {
			gap := r.Start - ordered[i-1].End
			if gap > h.GapSeconds || i%h.Modulus == 0 {
				turn++
			}
		}
		segments = append(segments, entities.Segment{
			SpeakerID:    speakerLabel(turn),
			StartTime:    r.Start,
			EndTime:      r.End,
			Text:         r.Text,
			OriginalText: r.Text,
		})
	}
	return segments, nil
}

func speakerLabel(turn int) string {
	return fmt.Sprintf("Speaker %d", turn+1)
}

// normalizeRaw drops blank or zero-length segments, clamps negative starts
// and sorts by start time
func normalizeRaw(raw []entities.RawSegment) []entities.RawSegment {
	out := make([]entities.RawSegment, 0, len(raw))
	for _, r := range raw {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		if r.Start < 0 {
			r.Start = 0
		}
		if r.End <= r.Start {
			continue
		}
		r.Text = text
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Segmenter attributes speakers, stamps the dominant language and translates
// non-English segments
type Segmenter struct {
	turns  TurnDetector
	lang   LanguageService
	logger *zap.Logger
}

// NewSegmenter creates a segmenter
func NewSegmenter(turns TurnDetector, lang LanguageService, logger *zap.Logger) *Segmenter {
	return &Segmenter{turns: turns, lang: lang, logger: logger}
}

// Segment returns speaker segments in start order and the dominant language.
// Translation writes each segment's Text before Segment returns.
func (s *Segmenter) Segment(ctx context.Context, raw []entities.RawSegment) ([]entities.Segment, string, error) {
	segments, err := s.turns.AssignSpeakers(ctx, raw)
	if err != nil {
		return nil, "", entities.NewStageError(entities.StageSegmentation, err)
	}
	if len(segments) == 0 {
		return segments, language.Unknown, nil
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	lang := s.lang.Detect(ctx, strings.Join(texts, " "))

	for i := range segments {
		segments[i].DetectedLanguage = lang
		if segments[i].OriginalText == "" {
			segments[i].OriginalText = segments[i].Text
		}
	}

	if lang != language.English && lang != language.Unknown {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(translateConcurrency)
		for i := range segments {
			i := i
			g.Go(guard(entities.StageTranslation, func() error {
				translated, _, ok := s.lang.Translate(gctx, segments[i].OriginalText, lang)
				if ok {
					segments[i].Text = translated
					segments[i].IsTranslated = true
				}
				return nil
			}))
		}
		if err := g.Wait(); err != nil {
			return nil, "", err
		}

		if s.logger != nil {
			translated := 0
			for _, seg := range segments {
				if seg.IsTranslated {
					translated++
				}
			}
			s.logger.Info("segments translated",
				zap.String("language", lang),
				zap.Int("segments", len(segments)),
				zap.Int("translated", translated),
			)
		}
	}

	return segments, lang, nil
}
