package analysis

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
	"github.com/johnquangdev/voice-guard/internal/usecase/language"
	"github.com/johnquangdev/voice-guard/pkg/config"
)

var fillerPatterns = compileFillers()

func compileFillers() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(fillerWords))
	for lang, words := range fillerWords {
		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = regexp.QuoteMeta(w)
		}
		out[lang] = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return out
}

// TextScorer computes scam probability and a bot/human label for text
type TextScorer struct {
	lang       LanguageService
	zeroShot   ZeroShotClassifier
	supervised SupervisedClassifier
	perplexity PerplexityModel
	cfg        config.RiskConfig
	logger     *zap.Logger
}

// NewTextScorer creates a scorer
func NewTextScorer(
	lang LanguageService,
	zeroShot ZeroShotClassifier,
	supervised SupervisedClassifier,
	perplexity PerplexityModel,
	cfg config.RiskConfig,
	logger *zap.Logger,
) *TextScorer {
	return &TextScorer{
		lang:       lang,
		zeroShot:   zeroShot,
		supervised: supervised,
		perplexity: perplexity,
		cfg:        cfg,
		logger:     logger,
	}
}

// Score evaluates text. Blank text returns the neutral default without
// calling any model. Collaborator failures default that signal to 0 (or
// UNKNOWN for perplexity) and are listed in Degraded.
func (s *TextScorer) Score(ctx context.Context, text string) entities.TextRisk {
	if strings.TrimSpace(text) == "" {
		return entities.TextRisk{
			BotOrHuman: entities.BotUnknown,
			Language:   language.Unknown,
		}
	}

	lang := s.lang.Detect(ctx, text)
	cleaned, hasFiller := CleanText(text, lang)

	risk := entities.TextRisk{
		Language:  lang,
		HasFiller: hasFiller,
		RuleScore: RuleScore(cleaned),
	}

	if cleaned != "" && s.zeroShot != nil {
		p, err := s.zeroShot.ScamProbability(ctx, cleaned)
		if err != nil {
			s.degrade(&risk, "semantic", err)
		} else {
			risk.SemanticScore = clamp01(p)
		}
	}

	if cleaned != "" && s.supervised != nil {
		p, err := s.supervised.Probability(ctx, cleaned)
		if err != nil {
			s.degrade(&risk, "learned", err)
		} else {
			risk.LearnedScore = clamp01(p)
		}
	}

	combined := s.cfg.SemanticWeight*risk.SemanticScore + s.cfg.RuleWeight*risk.RuleScore
	risk.ScamScore = clamp01((1-s.cfg.LearnedWeight)*combined + s.cfg.LearnedWeight*risk.LearnedScore)
	risk.IsScam = risk.ScamScore > s.cfg.ScamThreshold

	risk.BotOrHuman = entities.BotUnknown
	if s.perplexity != nil {
		ppl, err := s.perplexity.Perplexity(ctx, text)
		if err != nil || ppl < 0 {
			s.degrade(&risk, "perplexity", err)
		} else {
			risk.Perplexity = ppl
			if ppl < s.cfg.PerplexityThreshold {
				risk.BotOrHuman = entities.BotLike
			} else {
				risk.BotOrHuman = entities.HumanLike
			}
		}
	}

	return risk
}

func (s *TextScorer) degrade(risk *entities.TextRisk, signal string, err error) {
	risk.Degraded = append(risk.Degraded, signal)
	if s.logger != nil {
		s.logger.Warn("text scoring signal unavailable",
			zap.String("signal", signal),
			zap.Error(err),
		)
	}
}

// CleanText lowercases text, strips the language's filler words by whole-word
// match, collapses whitespace and trims trailing punctuation. It reports
// whether any filler was present.
func CleanText(text, lang string) (string, bool) {
	lower := strings.ToLower(text)
	re, ok := fillerPatterns[lang]
	if !ok {
		re = fillerPatterns[language.English]
	}
	hasFiller := re.MatchString(lower)
	if hasFiller {
		lower = re.ReplaceAllString(lower, " ")
	}
	cleaned := strings.Join(strings.Fields(lower), " ")
	cleaned = strings.TrimRight(cleaned, ".,!?;: ")
	return cleaned, hasFiller
}

// RuleScore sums keyword weights found as case-insensitive substrings, each
// counted once, clipped to 1
func RuleScore(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.0
	for _, k := range scamKeywords {
		if strings.Contains(lower, k.phrase) {
			score += k.weight
		}
	}
	return clamp01(score)
}
