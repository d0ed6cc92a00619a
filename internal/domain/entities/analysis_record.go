package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AnalysisRecord is the stored summary of an analysis
type AnalysisRecord struct {
	ID             uuid.UUID                          `json:"id" gorm:"type:uuid;primary_key"`
	CallID         string                             `json:"call_id,omitempty" gorm:"type:varchar(255);index"`
	AudioSHA256    string                             `json:"audio_sha256" gorm:"type:varchar(64);index"`
	AudioSize      int                                `json:"audio_size"`
	AudioDuration  float64                            `json:"audio_duration"`
	ArchiveKey     string                             `json:"archive_key,omitempty" gorm:"type:text"`
	RiskLevel      RiskLevel                          `json:"risk_level" gorm:"type:varchar(10);not null;index"`
	RiskScore      float64                            `json:"risk_score"`
	Confidence     float64                            `json:"confidence"`
	SpeakerCount   int                                `json:"speaker_count"`
	Language       string                             `json:"language,omitempty" gorm:"type:varchar(20)"`
	Failed         bool                               `json:"failed" gorm:"default:false;index"`
	ProcessingTime float64                            `json:"processing_time"`
	Result         datatypes.JSONType[AnalysisResult] `json:"result" gorm:"type:jsonb"`
	CreatedAt      time.Time                          `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (AnalysisRecord) TableName() string {
	return "analyses"
}

// NewAnalysisRecord builds a record from a finished result
func NewAnalysisRecord(r *AnalysisResult) *AnalysisRecord {
	return &AnalysisRecord{
		ID:             r.ID,
		CallID:         r.CallID,
		AudioSHA256:    r.AudioSHA256,
		AudioSize:      r.AudioSize,
		AudioDuration:  r.AudioDuration,
		ArchiveKey:     r.ArchiveKey,
		RiskLevel:      r.RiskLevel,
		RiskScore:      r.RiskScore,
		Confidence:     r.Confidence,
		SpeakerCount:   len(r.SpeakerProfiles),
		Language:       r.Language,
		Failed:         r.Failed,
		ProcessingTime: r.ProcessingTime,
		Result:         datatypes.NewJSONType(*r),
		CreatedAt:      r.Timestamp,
	}
}
