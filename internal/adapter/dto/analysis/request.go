package analysis

// AnalyzeVoiceCallRequest is the JSON form of a voice-call upload. The
// multipart form carries the same fields with the audio under "audio".
type AnalyzeVoiceCallRequest struct {
	AudioBase64 string `json:"audio_base64" validate:"required"`
	Filename    string `json:"filename,omitempty" validate:"omitempty,max=255"`
	CallID      string `json:"call_id,omitempty" validate:"omitempty,max=255"`
}

// DetectSpoofRequest is the JSON form of a spoof-only upload
type DetectSpoofRequest struct {
	AudioBase64 string `json:"audio_base64" validate:"required"`
	Filename    string `json:"filename,omitempty" validate:"omitempty,max=255"`
}

// AnalyzeTextRequest represents the request to score a piece of text
type AnalyzeTextRequest struct {
	Text string `json:"text" validate:"required,max=20000"`
}

// ListAnalysesRequest represents query parameters for listing analyses
type ListAnalysesRequest struct {
	RiskLevel string `query:"risk_level" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	CallID    string `query:"call_id" validate:"omitempty,max=255"`
	Failed    string `query:"failed" validate:"omitempty,oneof=true false"`
	Page      int    `query:"page" validate:"min=1"`
	PageSize  int    `query:"page_size" validate:"min=1,max=100"`
	SortBy    string `query:"sort_by" validate:"omitempty,oneof=created_at risk_score"`
	SortOrder string `query:"sort_order" validate:"omitempty,oneof=asc desc"`
}
