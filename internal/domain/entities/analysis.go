package entities

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisResult is the terminal output of one voice-call analysis
type AnalysisResult struct {
	ID               uuid.UUID        `json:"id"`
	CallID           string           `json:"call_id,omitempty"`
	Timestamp        time.Time        `json:"timestamp"`
	ProcessingTime   float64          `json:"processing_time"`
	AudioSize        int              `json:"audio_size"`
	AudioSHA256      string           `json:"audio_sha256"`
	AudioDuration    float64          `json:"audio_duration"`
	Transcript       string           `json:"transcript"`
	Language         string           `json:"language"`
	Segments         []Segment        `json:"segments"`
	SpeakerProfiles  []SpeakerProfile `json:"speaker_profiles"`
	ConversationFlow ConversationFlow `json:"conversation_flow"`
	Spoof            SpoofResult      `json:"spoof"`
	TextRisk         TextRisk         `json:"text_risk"`
	ConversationRisk ConversationRisk `json:"conversation_risk"`
	RiskLevel        RiskLevel        `json:"risk_level"`
	RiskScore        float64          `json:"risk_score"`
	RiskFactors      []string         `json:"risk_factors"`
	Confidence       float64          `json:"confidence"`
	Recommendations  []string         `json:"recommendations"`
	ArchiveKey       string           `json:"archive_key,omitempty"`
	Failed           bool             `json:"failed"`
	Error            string           `json:"error,omitempty"`
}

// Assessment returns the fused risk verdict of the result
func (r *AnalysisResult) Assessment() RiskAssessment {
	return RiskAssessment{
		RiskLevel:   r.RiskLevel,
		RiskScore:   r.RiskScore,
		RiskFactors: r.RiskFactors,
		Confidence:  r.Confidence,
	}
}

// ProcessingStats are process-lifetime analyzer counters
type ProcessingStats struct {
	AnalysisCount         int64   `json:"analysis_count"`
	FailedCount           int64   `json:"failed_count"`
	CacheHits             int64   `json:"cache_hits"`
	TotalProcessingTime   float64 `json:"total_processing_time"`
	AverageProcessingTime float64 `json:"average_processing_time"`
	LanguageCacheSize     int     `json:"language_cache_size"`
}
