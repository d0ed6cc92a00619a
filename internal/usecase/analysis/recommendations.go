package analysis

import (
	"strings"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
)

var (
	highRiskAdvice = []string{
		"HIGH RISK: Exercise extreme caution",
		"Do not provide personal or financial information",
		"Report to authorities immediately",
		"End the conversation safely",
	}
	mediumRiskAdvice = []string{
		"MODERATE RISK: Proceed with caution",
		"Verify the caller's identity independently",
		"Ask for official contact information",
		"Document the conversation",
	}
	lowRiskAdvice = []string{
		"LOW RISK: No immediate concerns detected",
		"Continue normal conversation",
	}
	monitorAdvice = "Monitor for changes in behavior"

	spoofAdvice = []string{
		"Audio authenticity concerns detected",
		"Verify caller through alternative means",
	}
	failureAdvice = []string{
		"Analysis failed - exercise extreme caution",
		"Verify caller identity through other means",
		"Contact support if this persists",
	}

	// matched in order against each lowercase factor, first hit wins
	factorAdvice = []struct {
		keyword string
		advice  string
	}{
		{"scam", "Be wary of any financial requests"},
		{"bot", "Verify you're speaking with a human"},
		{"translation", "Be aware of potential language barriers"},
		{"filler", "Speaker may be deceptive or nervous"},
	}
)

func levelAdvice(level entities.RiskLevel) []string {
	switch level {
	case entities.RiskHigh:
		return highRiskAdvice
	case entities.RiskMedium:
		return mediumRiskAdvice
	default:
		return lowRiskAdvice
	}
}

// ConversationRecommendations returns the level template followed by one
// piece of advice per matching factor
func ConversationRecommendations(level entities.RiskLevel, factors []string) []string {
	recs := append([]string{}, levelAdvice(level)...)
	for _, f := range factors {
		lower := strings.ToLower(f)
		for _, fa := range factorAdvice {
			if strings.Contains(lower, fa.keyword) {
				recs = append(recs, fa.advice)
				break
			}
		}
	}
	return uniqueOrdered(recs)
}

// UnifiedRecommendations merges the fused level template, conversation advice
// and spoof advice when the audio is judged inauthentic
func UnifiedRecommendations(level entities.RiskLevel, conversation []string, authentic bool) []string {
	recs := append([]string{}, levelAdvice(level)...)
	if level != entities.RiskHigh && level != entities.RiskMedium {
		recs = append(recs, monitorAdvice)
	}
	recs = append(recs, conversation...)
	if !authentic {
		recs = append(recs, spoofAdvice...)
	}
	return uniqueOrdered(recs)
}

// FailureRecommendations is the caution-biased advice for failed analyses
func FailureRecommendations() []string {
	return append([]string{}, failureAdvice...)
}
