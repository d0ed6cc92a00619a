package analysis

import (
	"time"

	"github.com/johnquangdev/voice-guard/internal/adapter/dto/common"
	"github.com/johnquangdev/voice-guard/internal/domain/entities"
)

// AnalysisSummaryResponse is the list view of a stored analysis
type AnalysisSummaryResponse struct {
	ID             string    `json:"id"`
	CallID         string    `json:"call_id,omitempty"`
	RiskLevel      string    `json:"risk_level"`
	RiskScore      float64   `json:"risk_score"`
	Confidence     float64   `json:"confidence"`
	SpeakerCount   int       `json:"speaker_count"`
	Language       string    `json:"language,omitempty"`
	AudioDuration  float64   `json:"audio_duration"`
	AudioSHA256    string    `json:"audio_sha256"`
	ArchiveKey     string    `json:"archive_key,omitempty"`
	Failed         bool      `json:"failed"`
	ProcessingTime float64   `json:"processing_time"`
	CreatedAt      time.Time `json:"created_at"`
}

// AnalysisDetailResponse is a stored analysis with its full result
type AnalysisDetailResponse struct {
	AnalysisSummaryResponse
	Result entities.AnalysisResult `json:"result"`
}

// AnalysisListResponse represents a paginated list of analyses
type AnalysisListResponse struct {
	Analyses   []*AnalysisSummaryResponse `json:"analyses"`
	Pagination common.PaginationResponse  `json:"pagination"`
}

// HealthResponse reports component availability
type HealthResponse struct {
	Status      string          `json:"status"`
	Environment string          `json:"environment"`
	Components  map[string]bool `json:"components"`
}
