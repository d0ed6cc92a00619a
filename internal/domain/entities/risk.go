package entities

// RiskLevel is the coarse risk verdict
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskAssessment is the scored output of a risk stage
type RiskAssessment struct {
	RiskLevel   RiskLevel `json:"risk_level"`
	RiskScore   float64   `json:"risk_score"`
	RiskFactors []string  `json:"risk_factors"`
	Confidence  float64   `json:"confidence"`
}

// SpeakerRisk is one speaker's contribution to the conversation risk
type SpeakerRisk struct {
	SpeakerID   string   `json:"speaker_id"`
	RiskScore   float64  `json:"risk_score"`
	RiskFactors []string `json:"risk_factors"`
}

// ConversationRisk is the conversation-level assessment fed to the fuser
type ConversationRisk struct {
	RiskAssessment
	SpeakerRisks    []SpeakerRisk `json:"speaker_risks"`
	Recommendations []string      `json:"recommendations"`
}

// TextRisk is the per-text scam/bot verdict
type TextRisk struct {
	IsScam        bool     `json:"is_scam"`
	ScamScore     float64  `json:"scam_score"`
	BotOrHuman    BotLabel `json:"bot_or_human"`
	Perplexity    float64  `json:"perplexity"`
	Language      string   `json:"language"`
	HasFiller     bool     `json:"has_filler"`
	RuleScore     float64  `json:"rule_score"`
	SemanticScore float64  `json:"semantic_score"`
	LearnedScore  float64  `json:"learned_score"`
	// Degraded lists collaborator stages that failed and were defaulted
	Degraded []string `json:"degraded,omitempty"`
}

// IsBotLike reports whether the perplexity verdict is BOT-like
func (t TextRisk) IsBotLike() bool {
	return t.BotOrHuman == BotLike
}

// SpoofLabel is the spoof detector's class label
type SpoofLabel string

const (
	LabelSpoof    SpoofLabel = "SPOOF"
	LabelBonafide SpoofLabel = "BONAFIDE"
)

// AudioFeatures are signal statistics computed on the canonical waveform
type AudioFeatures struct {
	SNR             float64 `json:"snr"`
	RMSEnergy       float64 `json:"rms_energy"`
	ZeroCrossRate   float64 `json:"zero_crossing_rate"`
	EnergyVariation float64 `json:"energy_variation"`
}

// SpoofResult is the audio authenticity verdict
type SpoofResult struct {
	IsAuthentic      bool           `json:"is_authentic"`
	SpoofProbability float64        `json:"spoof_probability"`
	Label            SpoofLabel     `json:"label"`
	Confidence       float64        `json:"confidence"`
	RiskLevel        RiskLevel      `json:"risk_level"`
	RiskFactors      []string       `json:"risk_factors,omitempty"`
	DetectionMethod  string         `json:"detection_method"`
	AudioDuration    float64        `json:"audio_duration"`
	Features         *AudioFeatures `json:"features,omitempty"`
	Error            string         `json:"error,omitempty"`
}

// FailedSpoofResult is the worst-case verdict used when detection fails
func FailedSpoofResult(err error) SpoofResult {
	return SpoofResult{
		IsAuthentic:      false,
		SpoofProbability: 1.0,
		Label:            LabelSpoof,
		Confidence:       0.0,
		RiskLevel:        RiskHigh,
		DetectionMethod:  "AASIST",
		Error:            err.Error(),
	}
}
