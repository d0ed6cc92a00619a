package analysis

import (
	"sort"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
	"github.com/johnquangdev/voice-guard/pkg/config"
)

// Conversation risk factor tags
const (
	FactorBotBehavior     = "bot-like behavior"
	FactorAbnormalRate    = "abnormal speech rate"
	FactorHighTranslation = "high translation content"
	FactorFiller          = "filler words detected"
	FactorImbalanced      = "highly imbalanced conversation"
)

// FlowAnalyzer computes turn-taking statistics and the conversation-level risk
type FlowAnalyzer struct {
	cfg config.RiskConfig
}

// NewFlowAnalyzer creates a flow analyzer
func NewFlowAnalyzer(cfg config.RiskConfig) *FlowAnalyzer {
	return &FlowAnalyzer{cfg: cfg}
}

// Flow groups consecutive same-speaker segments into turns. A turn ends where
// the next speaker's first segment starts; the final turn ends at the last
// segment's end.
func (a *FlowAnalyzer) Flow(segments []entities.Segment) entities.ConversationFlow {
	flow := entities.ConversationFlow{
		SpeakerDominance:    map[string]float64{},
		ConversationBalance: entities.BalanceUnknown,
	}
	if len(segments) == 0 {
		return flow
	}

	ordered := make([]entities.Segment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].StartTime < ordered[j].StartTime })

	var turns []entities.Turn
	current := entities.Turn{Speaker: ordered[0].SpeakerID, Start: ordered[0].StartTime}
	for _, seg := range ordered[1:] {
		if seg.SpeakerID == current.Speaker {
			continue
		}
		current.End = seg.StartTime
		current.Duration = current.End - current.Start
		turns = append(turns, current)
		current = entities.Turn{Speaker: seg.SpeakerID, Start: seg.StartTime}
	}
	current.End = ordered[len(ordered)-1].EndTime
	current.Duration = current.End - current.Start
	turns = append(turns, current)

	durations := make([]float64, len(turns))
	speaking := map[string]float64{}
	total := 0.0
	for i, t := range turns {
		durations[i] = t.Duration
		speaking[t.Speaker] += t.Duration
		total += t.Duration
	}

	flow.Turns = turns
	flow.TotalTurns = len(turns)
	flow.TotalDuration = total
	flow.AvgTurnDuration = mean(durations)
	flow.TurnVariance = populationVariance(durations)

	if total > 0 {
		for speaker, t := range speaking {
			flow.SpeakerDominance[speaker] = t / total
		}
		flow.ConversationBalance = balanceFor(flow.MaxDominance())
	}
	return flow
}

func balanceFor(maxDominance float64) entities.ConversationBalance {
	switch {
	case maxDominance > 0.8:
		return entities.BalanceHighlyImbalanced
	case maxDominance > 0.6:
		return entities.BalanceImbalanced
	case maxDominance > 0.4:
		return entities.BalanceModeratelyBalanced
	default:
		return entities.BalanceWellBalanced
	}
}

// Risk scores the conversation from speaker profiles and flow. No profiles
// yields LOW with zero score and confidence.
func (a *FlowAnalyzer) Risk(profiles []entities.SpeakerProfile, flow entities.ConversationFlow) entities.ConversationRisk {
	if len(profiles) == 0 {
		return entities.ConversationRisk{
			RiskAssessment: entities.RiskAssessment{
				RiskLevel:   entities.RiskLow,
				RiskFactors: []string{},
			},
			SpeakerRisks:    []entities.SpeakerRisk{},
			Recommendations: ConversationRecommendations(entities.RiskLow, nil),
		}
	}

	speakerRisks := make([]entities.SpeakerRisk, len(profiles))
	scores := make([]float64, len(profiles))
	var factors []string
	maxRisk := 0.0
	for i, p := range profiles {
		speakerRisks[i] = speakerRisk(p)
		scores[i] = speakerRisks[i].RiskScore
		if scores[i] > maxRisk {
			maxRisk = scores[i]
		}
		factors = append(factors, speakerRisks[i].RiskFactors...)
	}

	score := 0.7*maxRisk + 0.3*mean(scores)
	if flow.ConversationBalance == entities.BalanceHighlyImbalanced {
		score += 0.1
		factors = append(factors, FactorImbalanced)
	}
	score = clamp01(score)
	level := LevelFor(score, a.cfg)
	factors = uniqueSorted(factors)

	return entities.ConversationRisk{
		RiskAssessment: entities.RiskAssessment{
			RiskLevel:   level,
			RiskScore:   score,
			RiskFactors: factors,
			Confidence:  conversationConfidence(profiles),
		},
		SpeakerRisks:    speakerRisks,
		Recommendations: ConversationRecommendations(level, factors),
	}
}

func speakerRisk(p entities.SpeakerProfile) entities.SpeakerRisk {
	sp := p.SpeechPatterns
	score := 0.4 * sp.ScamScore
	factors := []string{}
	if sp.BotHumanScore == entities.BotLike {
		score += 0.3
		factors = append(factors, FactorBotBehavior)
	}
	if sp.WordsPerMinute > fastSpeechWPM || sp.WordsPerMinute < slowSpeechWPM {
		score += 0.1
		factors = append(factors, FactorAbnormalRate)
	}
	if sp.TranslationRatio > translationRatioLimit {
		score += 0.2
		factors = append(factors, FactorHighTranslation)
	}
	if sp.HasFillerWords {
		score += 0.1
		factors = append(factors, FactorFiller)
	}
	return entities.SpeakerRisk{
		SpeakerID:   p.SpeakerID,
		RiskScore:   clamp01(score),
		RiskFactors: factors,
	}
}

func conversationConfidence(profiles []entities.SpeakerProfile) float64 {
	if len(profiles) == 0 {
		return 0
	}
	confidence := 0.3
	if len(profiles) > 1 {
		confidence += 0.2
	}

	duration := 0.0
	segments := 0
	indicators := 0
	for _, p := range profiles {
		duration += p.TotalDuration
		segments += p.TotalSegments
		indicators += len(p.RiskIndicators)
	}

	switch {
	case duration > 60:
		confidence += 0.2
	case duration > 30:
		confidence += 0.1
	}
	switch {
	case segments > 10:
		confidence += 0.2
	case segments > 5:
		confidence += 0.1
	}
	if indicators > 0 {
		confidence += 0.3
	}
	return clamp01(confidence)
}
