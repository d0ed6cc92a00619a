package presenter

import (
	"github.com/johnquangdev/voice-guard/internal/adapter/dto/analysis"
	"github.com/johnquangdev/voice-guard/internal/adapter/dto/common"
	"github.com/johnquangdev/voice-guard/internal/domain/entities"
)

// ToAnalysisSummary converts a stored record to its list view
func ToAnalysisSummary(r *entities.AnalysisRecord) *analysis.AnalysisSummaryResponse {
	if r == nil {
		return nil
	}

	return &analysis.AnalysisSummaryResponse{
		ID:             r.ID.String(),
		CallID:         r.CallID,
		RiskLevel:      string(r.RiskLevel),
		RiskScore:      r.RiskScore,
		Confidence:     r.Confidence,
		SpeakerCount:   r.SpeakerCount,
		Language:       r.Language,
		AudioDuration:  r.AudioDuration,
		AudioSHA256:    r.AudioSHA256,
		ArchiveKey:     r.ArchiveKey,
		Failed:         r.Failed,
		ProcessingTime: r.ProcessingTime,
		CreatedAt:      r.CreatedAt,
	}
}

// ToAnalysisDetail converts a stored record to its detail view
func ToAnalysisDetail(r *entities.AnalysisRecord) *analysis.AnalysisDetailResponse {
	if r == nil {
		return nil
	}
	return &analysis.AnalysisDetailResponse{
		AnalysisSummaryResponse: *ToAnalysisSummary(r),
		Result:                  r.Result.Data(),
	}
}

// ToAnalysisListResponse converts a page of records to AnalysisListResponse
func ToAnalysisListResponse(records []*entities.AnalysisRecord, total int64, page, pageSize int) *analysis.AnalysisListResponse {
	summaries := make([]*analysis.AnalysisSummaryResponse, len(records))
	for i, r := range records {
		summaries[i] = ToAnalysisSummary(r)
	}

	return &analysis.AnalysisListResponse{
		Analyses:   summaries,
		Pagination: common.NewPagination(total, page, pageSize),
	}
}
