package handler

import (
	"encoding/base64"
	stdErrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/voice-guard/errors"
	"github.com/johnquangdev/voice-guard/internal/adapter/dto/analysis"
	"github.com/johnquangdev/voice-guard/internal/adapter/presenter"
	analysisUsecase "github.com/johnquangdev/voice-guard/internal/usecase/analysis"
	usecaseErrors "github.com/johnquangdev/voice-guard/internal/usecase/errors"
)

// Analysis handles voice-call, text and spoof analysis endpoints
type Analysis struct {
	svc      analysisUsecase.Service
	maxBytes int64
	logger   *zap.Logger
}

// NewAnalysis creates a new analysis handler
func NewAnalysis(svc analysisUsecase.Service, maxBytes int64, logger *zap.Logger) *Analysis {
	return &Analysis{
		svc:      svc,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// audioInput is a decoded audio upload
type audioInput struct {
	data   []byte
	ext    string
	callID string
}

// readAudio accepts either a multipart "audio" file or a JSON body with
// base64 audio
func (h *Analysis) readAudio(c echo.Context) (audioInput, upload, error) {
	up := upload{limit: h.maxBytes}

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("audio")
		if err != nil {
			return audioInput{}, up, usecaseErrors.ErrMissingAudio
		}
		up.size = fh.Size
		up.ext = analysisUsecase.NormalizeExt(fh.Filename)
		if h.maxBytes > 0 && fh.Size > h.maxBytes {
			return audioInput{}, up, usecaseErrors.ErrAudioTooLarge
		}

		f, err := fh.Open()
		if err != nil {
			return audioInput{}, up, errors.ErrInvalidPayload()
		}
		defer f.Close()

		var r io.Reader = f
		if h.maxBytes > 0 {
			r = io.LimitReader(f, h.maxBytes+1)
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return audioInput{}, up, errors.ErrInvalidPayload()
		}
		up.size = int64(len(data))
		return audioInput{data: data, ext: up.ext, callID: c.FormValue("call_id")}, up, nil
	}

	var req analysis.AnalyzeVoiceCallRequest
	if err := c.Bind(&req); err != nil {
		return audioInput{}, up, errors.ErrInvalidPayload()
	}
	if strings.TrimSpace(req.AudioBase64) == "" {
		return audioInput{}, up, usecaseErrors.ErrMissingAudio
	}
	if err := c.Validate(&req); err != nil {
		return audioInput{}, up, errors.ErrInvalidArgument(err.Error())
	}

	data, err := decodeBase64Audio(req.AudioBase64)
	if err != nil {
		return audioInput{}, up, err
	}
	up.size = int64(len(data))
	up.ext = analysisUsecase.NormalizeExt(req.Filename)
	return audioInput{data: data, ext: up.ext, callID: req.CallID}, up, nil
}

// decodeBase64Audio decodes plain or data-URL base64 audio
func decodeBase64Audio(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrInvalidBase64, err)
	}
	return data, nil
}

// AnalyzeVoiceCall handles POST /v1/analyze/voice-call
// @Summary      Analyze a voice call
// @Description  Runs spoof detection, transcription, text scoring and conversation-flow analysis on a recording and returns the fused risk verdict. Pipeline failures return a HIGH risk result with failed=true.
// @Tags         Analysis
// @Accept       multipart/form-data,json
// @Produce      json
// @Security     BearerAuth
// @Param        audio    formData  file                              false  "Audio file (.mp3 .wav .m4a .flac .ogg)"
// @Param        call_id  formData  string                            false  "Caller-supplied call identifier"
// @Param        request  body      analysis.AnalyzeVoiceCallRequest  false  "Base64 audio"
// @Success      200      {object}  entities.AnalysisResult           "Analysis result"
// @Failure      400      {object}  map[string]interface{}            "Missing or invalid audio"
// @Failure      413      {object}  map[string]interface{}            "Audio too large"
// @Failure      415      {object}  map[string]interface{}            "Unsupported audio format"
// @Failure      503      {object}  map[string]interface{}            "Analyzer unavailable"
// @Router       /analyze/voice-call [post]
func (h *Analysis) AnalyzeVoiceCall(c echo.Context) error {
	in, up, err := h.readAudio(c)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, up))
	}

	result, err := h.svc.AnalyzeVoiceCall(c.Request().Context(), analysisUsecase.VoiceCallRequest{
		Audio:  in.data,
		Ext:    in.ext,
		CallID: in.callID,
	})
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, up))
	}

	if h.logger != nil {
		h.logger.Info("voice call analyzed",
			zap.String("analysis_id", result.ID.String()),
			zap.String("risk_level", string(result.RiskLevel)),
			zap.Float64("risk_score", result.RiskScore),
			zap.Bool("failed", result.Failed),
		)
	}

	return HandleSuccess(h.logger, c, result)
}

// AnalyzeText handles POST /v1/analyze/text
// @Summary      Score text for scam and bot signals
// @Description  Runs the keyword rules, zero-shot and learned classifiers and the perplexity estimate on a single text
// @Tags         Analysis
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      analysis.AnalyzeTextRequest  true  "Text to score"
// @Success      200      {object}  entities.TextRisk            "Text risk"
// @Failure      400      {object}  map[string]interface{}       "Empty text"
// @Router       /analyze/text [post]
func (h *Analysis) AnalyzeText(c echo.Context) error {
	var req analysis.AnalyzeTextRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if strings.TrimSpace(req.Text) == "" {
		return HandleError(h.logger, c, errors.ErrEmptyText())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	risk, err := h.svc.AnalyzeText(c.Request().Context(), req.Text)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, upload{}))
	}

	return HandleSuccess(h.logger, c, risk)
}

// DetectSpoof handles POST /v1/detect/spoof
// @Summary      Detect synthetic speech
// @Description  Runs only the anti-spoofing model. A detector failure returns the worst-case verdict (probability 1.0, confidence 0).
// @Tags         Analysis
// @Accept       multipart/form-data,json
// @Produce      json
// @Security     BearerAuth
// @Param        audio    formData  file                         false  "Audio file"
// @Param        request  body      analysis.DetectSpoofRequest  false  "Base64 audio"
// @Success      200      {object}  entities.SpoofResult         "Spoof verdict"
// @Failure      400      {object}  map[string]interface{}       "Missing or invalid audio"
// @Failure      413      {object}  map[string]interface{}       "Audio too large"
// @Failure      415      {object}  map[string]interface{}       "Unsupported audio format"
// @Router       /detect/spoof [post]
func (h *Analysis) DetectSpoof(c echo.Context) error {
	in, up, err := h.readAudio(c)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, up))
	}

	result, err := h.svc.DetectSpoof(c.Request().Context(), in.data, in.ext)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, up))
	}

	return HandleSuccess(h.logger, c, result)
}

// GetAnalysis handles GET /v1/analyses/:id
// @Summary      Get analysis
// @Description  Gets a stored analysis with its full result
// @Tags         Analysis
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string                           true  "Analysis ID (UUID)"
// @Success      200  {object}  analysis.AnalysisDetailResponse  "Stored analysis"
// @Failure      400  {object}  map[string]interface{}           "Invalid analysis ID"
// @Failure      404  {object}  map[string]interface{}           "Analysis not found"
// @Failure      503  {object}  map[string]interface{}           "History disabled"
// @Router       /analyses/{id} [get]
func (h *Analysis) GetAnalysis(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("analysis ID must be a valid UUID"))
	}

	record, err := h.svc.GetAnalysis(c.Request().Context(), id)
	if err != nil {
		if stdErrors.Is(err, usecaseErrors.ErrAnalysisNotFound) {
			return HandleError(h.logger, c, errors.ErrAnalysisNotFound(id.String()))
		}
		return HandleError(h.logger, c, historyError(err, "get_analysis"))
	}

	return HandleSuccess(h.logger, c, presenter.ToAnalysisDetail(record))
}

// ListAnalyses handles GET /v1/analyses
// @Summary      List analyses
// @Description  Gets a paginated list of stored analyses with optional filters
// @Tags         Analysis
// @Produce      json
// @Security     BearerAuth
// @Param        page        query     int                            false  "Page number (default: 1)"
// @Param        page_size   query     int                            false  "Items per page (default: 20)"
// @Param        risk_level  query     string                         false  "Risk level filter (LOW/MEDIUM/HIGH)"
// @Param        call_id     query     string                         false  "Call ID filter"
// @Param        failed      query     bool                           false  "Only failed or only successful analyses"
// @Param        sort_by     query     string                         false  "Sort field (created_at/risk_score)"
// @Param        sort_order  query     string                         false  "Sort order (asc/desc)"
// @Success      200         {object}  analysis.AnalysisListResponse  "List of analyses"
// @Failure      400         {object}  map[string]interface{}         "Invalid request"
// @Failure      503         {object}  map[string]interface{}         "History disabled"
// @Router       /analyses [get]
func (h *Analysis) ListAnalyses(c echo.Context) error {
	var req analysis.ListAnalysesRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	// Set defaults
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}
	req.RiskLevel = strings.ToUpper(req.RiskLevel)

	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	records, total, err := h.svc.ListAnalyses(c.Request().Context(), buildFilters(&req))
	if err != nil {
		return HandleError(h.logger, c, historyError(err, "list_analyses"))
	}

	return HandleSuccess(h.logger, c, presenter.ToAnalysisListResponse(records, total, req.Page, req.PageSize))
}

// Stats handles GET /v1/stats
// @Summary      Processing statistics
// @Description  Returns process-lifetime analysis counters
// @Tags         Analysis
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entities.ProcessingStats  "Counters"
// @Router       /stats [get]
func (h *Analysis) Stats(c echo.Context) error {
	return HandleSuccess(h.logger, c, h.svc.Stats())
}
