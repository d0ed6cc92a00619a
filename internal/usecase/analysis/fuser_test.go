package analysis

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/johnquangdev/voice-guard/internal/domain/entities"
	"github.com/johnquangdev/voice-guard/pkg/config"
)

func TestFuseHighRisk(t *testing.T) {
	f := NewFuser(config.DefaultRiskConfig())
	spoof := entities.SpoofResult{SpoofProbability: 0.9, Confidence: 0.8, IsAuthentic: false}
	text := entities.TextRisk{ScamScore: 0.8, BotOrHuman: entities.BotLike, Perplexity: 10, HasFiller: true}
	conv := entities.ConversationRisk{
		RiskAssessment:  entities.RiskAssessment{RiskLevel: entities.RiskHigh, Confidence: 0.5, RiskFactors: []string{FactorBotBehavior}},
		Recommendations: ConversationRecommendations(entities.RiskHigh, []string{FactorBotBehavior}),
	}

	got := f.Fuse(spoof, text, conv)

	// 0.36 + 0.28 + 0.15 + 0.1
	if math.Abs(got.RiskScore-0.89) > 1e-9 || got.RiskLevel != entities.RiskHigh {
		t.Fatalf("expected HIGH 0.89, got %s %f", got.RiskLevel, got.RiskScore)
	}
	wantFactors := []string{FactorBotBehavior, FactorBotSpeech, FactorFillerSpeech, FactorHighScam, FactorHighSpoof}
	if !reflect.DeepEqual(got.RiskFactors, wantFactors) {
		t.Fatalf("expected %v, got %v", wantFactors, got.RiskFactors)
	}
	// 0.24 + 0.2 + 0.03
	if math.Abs(got.Confidence-0.47) > 1e-9 {
		t.Fatalf("expected confidence 0.47, got %f", got.Confidence)
	}
	if got.Recommendations[0] != "HIGH RISK: Exercise extreme caution" {
		t.Fatalf("expected HIGH template first, got %v", got.Recommendations)
	}
	assertContains(t, got.Recommendations, "Verify you're speaking with a human")
	assertContains(t, got.Recommendations, "Audio authenticity concerns detected")
	assertUnique(t, got.Recommendations)
}

func TestFuseClipsAndLevelsDeterministically(t *testing.T) {
	cfg := config.DefaultRiskConfig()
	f := NewFuser(cfg)
	levels := []entities.RiskLevel{entities.RiskLow, entities.RiskMedium, entities.RiskHigh}
	bots := []entities.BotLabel{entities.BotLike, entities.HumanLike, entities.BotUnknown}

	for spoof := -0.5; spoof <= 1.5; spoof += 0.25 {
		for scam := 0.0; scam <= 1.0; scam += 0.2 {
			for _, bot := range bots {
				for _, lvl := range levels {
					got := f.Fuse(
						entities.SpoofResult{SpoofProbability: spoof, IsAuthentic: true},
						entities.TextRisk{ScamScore: scam, BotOrHuman: bot},
						entities.ConversationRisk{RiskAssessment: entities.RiskAssessment{RiskLevel: lvl}},
					)
					if got.RiskScore < 0 || got.RiskScore > 1 {
						t.Fatalf("score out of range: %f", got.RiskScore)
					}
					if got.Confidence < 0 || got.Confidence > 1 {
						t.Fatalf("confidence out of range: %f", got.Confidence)
					}
					if got.RiskLevel != LevelFor(got.RiskScore, cfg) {
						t.Fatalf("level %s does not match score %f", got.RiskLevel, got.RiskScore)
					}
				}
			}
		}
	}
}

func TestLevelForThresholds(t *testing.T) {
	cfg := config.DefaultRiskConfig()
	tests := []struct {
		score float64
		want  entities.RiskLevel
	}{
		{0, entities.RiskLow},
		{0.399, entities.RiskLow},
		{0.4, entities.RiskMedium},
		{0.699, entities.RiskMedium},
		{0.7, entities.RiskHigh},
		{1, entities.RiskHigh},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.score, cfg); got != tt.want {
			t.Errorf("LevelFor(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestFuseMaximumIsClipped(t *testing.T) {
	got := NewFuser(config.DefaultRiskConfig()).Fuse(
		entities.SpoofResult{SpoofProbability: 1, Confidence: 1},
		entities.TextRisk{ScamScore: 1, BotOrHuman: entities.BotLike, Perplexity: 1000},
		entities.ConversationRisk{RiskAssessment: entities.RiskAssessment{RiskLevel: entities.RiskHigh, Confidence: 1}},
	)
	if got.RiskScore != 1.0 || got.Confidence != 1.0 {
		t.Fatalf("expected clipped 1.0/1.0, got %f/%f", got.RiskScore, got.Confidence)
	}
}

func TestFailure(t *testing.T) {
	err := entities.NewStageError(entities.StageSpoof, errors.New("connection refused"))
	got := NewFuser(config.DefaultRiskConfig()).Failure(err)

	if got.RiskLevel != entities.RiskHigh || got.RiskScore != 1.0 || got.Confidence != 0 {
		t.Fatalf("expected fail-safe verdict, got %+v", got.RiskAssessment)
	}
	if len(got.RiskFactors) != 1 || got.RiskFactors[0] != "analysis failed: spoof_detection: connection refused" {
		t.Fatalf("unexpected factor %v", got.RiskFactors)
	}
	if len(got.Recommendations) == 0 || !strings.Contains(got.Recommendations[0], "Analysis failed") {
		t.Fatalf("expected caution recommendations, got %v", got.Recommendations)
	}
}

func TestUnifiedRecommendations(t *testing.T) {
	low := UnifiedRecommendations(entities.RiskLow, ConversationRecommendations(entities.RiskLow, nil), true)
	assertContains(t, low, "Monitor for changes in behavior")
	assertUnique(t, low)
	for _, r := range low {
		if r == "Audio authenticity concerns detected" {
			t.Fatal("authentic audio must not get spoof advice")
		}
	}

	medium := ConversationRecommendations(entities.RiskMedium, []string{"high scam probability", FactorHighTranslation, FactorFiller})
	assertContains(t, medium, "Be wary of any financial requests")
	assertContains(t, medium, "Be aware of potential language barriers")
	assertContains(t, medium, "Speaker may be deceptive or nervous")
}

func assertContains(t *testing.T, items []string, want string) {
	t.Helper()
	for _, it := range items {
		if it == want {
			return
		}
	}
	t.Fatalf("expected %q in %v", want, items)
}

func assertUnique(t *testing.T, items []string) {
	t.Helper()
	seen := map[string]bool{}
	for _, it := range items {
		if seen[it] {
			t.Fatalf("duplicate %q in %v", it, items)
		}
		seen[it] = true
	}
}
