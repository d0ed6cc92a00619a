package analysis

import (
	"fmt"
	"math"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
	"github.com/johnquangdev/voice-guard/pkg/config"
)

// Unified risk factor tags
const (
	FactorHighSpoof    = "high spoof probability"
	FactorHighScam     = "high scam probability"
	FactorBotSpeech    = "bot-like speech patterns"
	FactorFillerSpeech = "filler words detected"
)

// FusedRisk is the unified verdict with its advice
type FusedRisk struct {
	entities.RiskAssessment
	Recommendations []string
}

// Fuser combines spoof, text and conversation signals into one verdict
type Fuser struct {
	cfg config.RiskConfig
}

// NewFuser creates a fuser
func NewFuser(cfg config.RiskConfig) *Fuser {
	return &Fuser{cfg: cfg}
}

// Fuse computes the unified risk. The score is clipped to [0,1] and the level
// is a pure function of it.
func (f *Fuser) Fuse(spoof entities.SpoofResult, text entities.TextRisk, conv entities.ConversationRisk) FusedRisk {
	spoofProb := clamp01(spoof.SpoofProbability)

	bot := 0.0
	if text.IsBotLike() {
		bot = 1
	}
	flow := 0.0
	switch conv.RiskLevel {
	case entities.RiskHigh:
		flow = f.cfg.FlowHighBonus
	case entities.RiskMedium:
		flow = f.cfg.FlowMediumBonus
	}

	score := clamp01(f.cfg.SpoofWeight*spoofProb + f.cfg.ScamWeight*text.ScamScore + f.cfg.BotWeight*bot + flow)
	level := LevelFor(score, f.cfg)

	var factors []string
	if spoofProb > f.cfg.SpoofFactorThreshold {
		factors = append(factors, FactorHighSpoof)
	}
	if text.ScamScore > f.cfg.ScamFactorThreshold {
		factors = append(factors, FactorHighScam)
	}
	if text.IsBotLike() {
		factors = append(factors, FactorBotSpeech)
	}
	if text.HasFiller {
		factors = append(factors, FactorFillerSpeech)
	}
	factors = append(factors, conv.RiskFactors...)

	return FusedRisk{
		RiskAssessment: entities.RiskAssessment{
			RiskLevel:   level,
			RiskScore:   score,
			RiskFactors: uniqueSorted(factors),
			Confidence:  fusedConfidence(spoof.Confidence, conv.Confidence, text.Perplexity),
		},
		Recommendations: UnifiedRecommendations(level, conv.Recommendations, spoof.IsAuthentic),
	}
}

func fusedConfidence(spoofConf, convConf, perplexity float64) float64 {
	textConf := 0.0
	if perplexity > 0 {
		textConf = math.Min(0.3, 0.3*perplexity/100)
	}
	return clamp01(0.3*spoofConf + 0.4*convConf + textConf)
}

// Failure builds the fail-safe verdict: maximum risk, zero confidence and a
// factor naming what failed
func (f *Fuser) Failure(err error) FusedRisk {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return FusedRisk{
		RiskAssessment: entities.RiskAssessment{
			RiskLevel:   entities.RiskHigh,
			RiskScore:   1.0,
			RiskFactors: []string{fmt.Sprintf("analysis failed: %s", msg)},
			Confidence:  0,
		},
		Recommendations: FailureRecommendations(),
	}
}
