package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	stdErrors "errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"

	"github.com/johnquangdev/voice-guard/errors"
	"github.com/johnquangdev/voice-guard/internal/domain/entities"
	"github.com/johnquangdev/voice-guard/internal/domain/repositories"
	analysisUsecase "github.com/johnquangdev/voice-guard/internal/usecase/analysis"
	usecaseErrors "github.com/johnquangdev/voice-guard/internal/usecase/errors"
	"github.com/johnquangdev/voice-guard/pkg/config"
	"github.com/johnquangdev/voice-guard/pkg/validator"
)

const testMaxBytes = 64

// fakeService validates input like the real analyzer and records what it
// was asked
type fakeService struct {
	lastCall    analysisUsecase.VoiceCallRequest
	lastFilters repositories.AnalysisFilters
	records     map[uuid.UUID]*entities.AnalysisRecord
	history     bool
	historyErr  error
	health      map[string]bool
	textCalls   int
}

func newFakeService() *fakeService {
	return &fakeService{
		records: map[uuid.UUID]*entities.AnalysisRecord{},
		history: true,
		health:  map[string]bool{"spoof_detector": true, "transcriber": true},
	}
}

func (f *fakeService) AnalyzeVoiceCall(_ context.Context, req analysisUsecase.VoiceCallRequest) (*entities.AnalysisResult, error) {
	if err := analysisUsecase.ValidateAudio(req.Audio, req.Ext, testMaxBytes); err != nil {
		return nil, err
	}
	f.lastCall = req
	return &entities.AnalysisResult{
		ID:        uuid.New(),
		CallID:    req.CallID,
		Timestamp: time.Now(),
		AudioSize: len(req.Audio),
		RiskLevel: entities.RiskHigh,
		RiskScore: 0.89,
	}, nil
}

func (f *fakeService) AnalyzeText(_ context.Context, text string) (entities.TextRisk, error) {
	f.textCalls++
	return entities.TextRisk{IsScam: true, ScamScore: 0.62, BotOrHuman: entities.HumanLike, Language: "en"}, nil
}

func (f *fakeService) DetectSpoof(_ context.Context, audio []byte, ext string) (entities.SpoofResult, error) {
	if err := analysisUsecase.ValidateAudio(audio, ext, testMaxBytes); err != nil {
		return entities.SpoofResult{}, err
	}
	return entities.FailedSpoofResult(errModel), nil
}

func (f *fakeService) GetAnalysis(_ context.Context, id uuid.UUID) (*entities.AnalysisRecord, error) {
	if !f.history {
		return nil, usecaseErrors.ErrHistoryDisabled
	}
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	r, ok := f.records[id]
	if !ok {
		return nil, usecaseErrors.ErrAnalysisNotFound
	}
	return r, nil
}

func (f *fakeService) ListAnalyses(_ context.Context, filters repositories.AnalysisFilters) ([]*entities.AnalysisRecord, int64, error) {
	if !f.history {
		return nil, 0, usecaseErrors.ErrHistoryDisabled
	}
	if f.historyErr != nil {
		return nil, 0, f.historyErr
	}
	f.lastFilters = filters
	out := make([]*entities.AnalysisRecord, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, 12, nil
}

func (f *fakeService) Stats() entities.ProcessingStats {
	return entities.ProcessingStats{AnalysisCount: 3, FailedCount: 1}
}

func (f *fakeService) Health(context.Context) map[string]bool {
	return f.health
}

var errModel = stdErrors.New("spoof model unavailable")

type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Info    string            `json:"info"`
	Details map[string]string `json:"details"`
	Data    json.RawMessage   `json:"data"`
}

func newTestServer(svc *fakeService) *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	cfg := &config.Config{Server: config.ServerConfig{Environment: "test"}}
	NewRouter(cfg, NewAnalysis(svc, testMaxBytes, nil), nil).Setup(e)
	return e
}

func do(t *testing.T, e *echo.Echo, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func multipartRequest(t *testing.T, path, filename string, audio []byte, callID string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("audio", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write(audio)
	if callID != "" {
		w.WriteField("call_id", callID)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestAnalyzeVoiceCallBase64(t *testing.T) {
	svc := newFakeService()
	e := newTestServer(svc)

	audio := []byte("RIFF....WAVEfmt ")
	rec, env := do(t, e, jsonRequest(http.MethodPost, "/v1/analyze/voice-call", map[string]string{
		"audio_base64": base64.StdEncoding.EncodeToString(audio),
		"filename":     "call.WAV",
		"call_id":      "call-42",
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.Code != int(errors.ErrorCode_HTTP_OK) {
		t.Fatalf("expected success code, got %d", env.Code)
	}
	var result entities.AnalysisResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.RiskLevel != entities.RiskHigh || result.CallID != "call-42" {
		t.Fatalf("unexpected result %+v", result)
	}
	if svc.lastCall.Ext != ".wav" || !bytes.Equal(svc.lastCall.Audio, audio) {
		t.Fatalf("service got ext %q audio %q", svc.lastCall.Ext, svc.lastCall.Audio)
	}
}

func TestAnalyzeVoiceCallDataURL(t *testing.T) {
	svc := newFakeService()
	e := newTestServer(svc)

	rec, _ := do(t, e, jsonRequest(http.MethodPost, "/v1/analyze/voice-call", map[string]string{
		"audio_base64": "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString([]byte("ID3 frame")),
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if string(svc.lastCall.Audio) != "ID3 frame" || svc.lastCall.Ext != "" {
		t.Fatalf("service got audio %q ext %q", svc.lastCall.Audio, svc.lastCall.Ext)
	}
}

func TestAnalyzeVoiceCallMultipart(t *testing.T) {
	svc := newFakeService()
	e := newTestServer(svc)

	rec, _ := do(t, e, multipartRequest(t, "/v1/analyze/voice-call", "recording.mp3", []byte("ID3 audio"), "call-7"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastCall.Ext != ".mp3" || svc.lastCall.CallID != "call-7" {
		t.Fatalf("service got %+v", svc.lastCall)
	}
}

func TestAnalyzeVoiceCallInputErrors(t *testing.T) {
	svc := newFakeService()
	e := newTestServer(svc)

	tests := []struct {
		name    string
		req     *http.Request
		status  int
		code    errors.ErrorCode
		details map[string]string
	}{
		{
			name:   "missing audio",
			req:    jsonRequest(http.MethodPost, "/v1/analyze/voice-call", map[string]string{"call_id": "x"}),
			status: http.StatusBadRequest,
			code:   errors.ErrorCode_AUDIO_MISSING,
		},
		{
			name:   "invalid base64",
			req:    jsonRequest(http.MethodPost, "/v1/analyze/voice-call", map[string]string{"audio_base64": "%%%not-base64"}),
			status: http.StatusBadRequest,
			code:   errors.ErrorCode_INVALID_PAYLOAD,
		},
		{
			name:   "empty decoded audio",
			req:    jsonRequest(http.MethodPost, "/v1/analyze/voice-call", map[string]string{"audio_base64": "data:audio/wav;base64,"}),
			status: http.StatusBadRequest,
			code:   errors.ErrorCode_AUDIO_MISSING,
		},
		{
			name:    "unsupported extension",
			req:     jsonRequest(http.MethodPost, "/v1/analyze/voice-call", map[string]string{"audio_base64": base64.StdEncoding.EncodeToString([]byte("aac")), "filename": "call.aac"}),
			status:  http.StatusUnsupportedMediaType,
			code:    errors.ErrorCode_AUDIO_UNSUPPORTED_FORMAT,
			details: map[string]string{"extension": ".aac"},
		},
		{
			name:    "too large multipart",
			req:     multipartRequest(t, "/v1/analyze/voice-call", "call.wav", bytes.Repeat([]byte{1}, 2*testMaxBytes), ""),
			status:  http.StatusRequestEntityTooLarge,
			code:    errors.ErrorCode_AUDIO_TOO_LARGE,
			details: map[string]string{"size": "128", "limit": "64"},
		},
		{
			name:    "too large base64",
			req:     jsonRequest(http.MethodPost, "/v1/analyze/voice-call", map[string]string{"audio_base64": base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, testMaxBytes+1))}),
			status:  http.StatusRequestEntityTooLarge,
			code:    errors.ErrorCode_AUDIO_TOO_LARGE,
			details: map[string]string{"size": "65", "limit": "64"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, e, tt.req)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if env.Code != int(tt.code) {
				t.Fatalf("expected code %s, got %d", tt.code, env.Code)
			}
			for k, v := range tt.details {
				if env.Details[k] != v {
					t.Fatalf("expected detail %s=%s, got %v", k, v, env.Details)
				}
			}
		})
	}

	if svc.lastCall.Audio != nil {
		t.Fatal("no request should have reached the analyzer")
	}
}

func TestAnalyzeText(t *testing.T) {
	svc := newFakeService()
	e := newTestServer(svc)

	rec, env := do(t, e, jsonRequest(http.MethodPost, "/v1/analyze/text", map[string]string{"text": "   "}))
	if rec.Code != http.StatusBadRequest || env.Code != int(errors.ErrorCode_EMPTY_TEXT) {
		t.Fatalf("expected EMPTY_TEXT 400, got %d code %d", rec.Code, env.Code)
	}
	if svc.textCalls != 0 {
		t.Fatal("blank text must not reach the scorer")
	}

	rec, env = do(t, e, jsonRequest(http.MethodPost, "/v1/analyze/text", map[string]string{"text": "verify your account password"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var risk entities.TextRisk
	if err := json.Unmarshal(env.Data, &risk); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !risk.IsScam || risk.ScamScore != 0.62 {
		t.Fatalf("unexpected text risk %+v", risk)
	}
}

func TestDetectSpoofWorstCase(t *testing.T) {
	e := newTestServer(newFakeService())

	rec, env := do(t, e, multipartRequest(t, "/v1/detect/spoof", "call.flac", []byte("fLaC"), ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result entities.SpoofResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.SpoofProbability != 1 || result.Confidence != 0 || result.IsAuthentic {
		t.Fatalf("expected worst-case verdict, got %+v", result)
	}
}

func TestGetAnalysis(t *testing.T) {
	svc := newFakeService()
	id := uuid.New()
	result := entities.AnalysisResult{ID: id, RiskLevel: entities.RiskMedium, RiskScore: 0.5, Transcript: "hello"}
	svc.records[id] = &entities.AnalysisRecord{
		ID:        id,
		RiskLevel: entities.RiskMedium,
		RiskScore: 0.5,
		Result:    datatypes.NewJSONType(result),
	}
	e := newTestServer(svc)

	rec, env := do(t, e, httptest.NewRequest(http.MethodGet, "/v1/analyses/"+id.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var detail struct {
		ID     string                  `json:"id"`
		Result entities.AnalysisResult `json:"result"`
	}
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.ID != id.String() || detail.Result.Transcript != "hello" {
		t.Fatalf("unexpected detail %+v", detail)
	}

	rec, env = do(t, e, httptest.NewRequest(http.MethodGet, "/v1/analyses/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound || env.Code != int(errors.ErrorCode_ANALYSIS_NOT_FOUND) {
		t.Fatalf("expected 404, got %d code %d", rec.Code, env.Code)
	}

	rec, env = do(t, e, httptest.NewRequest(http.MethodGet, "/v1/analyses/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest || env.Code != int(errors.ErrorCode_INVALID_ARGUMENT) {
		t.Fatalf("expected 400, got %d code %d", rec.Code, env.Code)
	}
}

func TestListAnalyses(t *testing.T) {
	svc := newFakeService()
	e := newTestServer(svc)

	rec, env := do(t, e, httptest.NewRequest(http.MethodGet, "/v1/analyses?risk_level=high&failed=true&page=2&page_size=5&sort_by=risk_score&sort_order=asc", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	f := svc.lastFilters
	if f.RiskLevel == nil || *f.RiskLevel != entities.RiskHigh {
		t.Fatalf("expected HIGH filter, got %v", f.RiskLevel)
	}
	if f.Failed == nil || !*f.Failed {
		t.Fatalf("expected failed filter, got %v", f.Failed)
	}
	if f.Limit != 5 || f.Offset != 5 || f.SortBy != "risk_score" || f.SortOrder != "asc" {
		t.Fatalf("unexpected filters %+v", f)
	}

	var list struct {
		Pagination struct {
			Page       int   `json:"page"`
			TotalPages int   `json:"total_pages"`
			TotalItems int64 `json:"total_items"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Pagination.Page != 2 || list.Pagination.TotalPages != 3 || list.Pagination.TotalItems != 12 {
		t.Fatalf("unexpected pagination %+v", list.Pagination)
	}
}

func TestListAnalysesDefaultsAndValidation(t *testing.T) {
	svc := newFakeService()
	e := newTestServer(svc)

	rec, _ := do(t, e, httptest.NewRequest(http.MethodGet, "/v1/analyses", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastFilters.Limit != 20 || svc.lastFilters.Offset != 0 || svc.lastFilters.RiskLevel != nil || svc.lastFilters.Failed != nil {
		t.Fatalf("unexpected default filters %+v", svc.lastFilters)
	}

	for _, q := range []string{"sort_by=speaker", "page_size=500", "risk_level=extreme", "failed=maybe"} {
		rec, env := do(t, e, httptest.NewRequest(http.MethodGet, "/v1/analyses?"+q, nil))
		if rec.Code != http.StatusBadRequest || env.Code != int(errors.ErrorCode_INVALID_ARGUMENT) {
			t.Errorf("%s: expected 400 INVALID_ARGUMENT, got %d code %d", q, rec.Code, env.Code)
		}
	}
}

func TestHistoryDisabled(t *testing.T) {
	svc := newFakeService()
	svc.history = false
	e := newTestServer(svc)

	for _, path := range []string{"/v1/analyses", "/v1/analyses/" + uuid.NewString()} {
		rec, env := do(t, e, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusServiceUnavailable || env.Code != int(errors.ErrorCode_SERVICE_UNAVAILABLE) {
			t.Errorf("%s: expected 503, got %d code %d", path, rec.Code, env.Code)
		}
	}
}

func TestHistoryQueryFailure(t *testing.T) {
	svc := newFakeService()
	svc.historyErr = stdErrors.New("connection reset by peer")
	e := newTestServer(svc)

	for _, path := range []string{"/v1/analyses", "/v1/analyses/" + uuid.NewString()} {
		rec, env := do(t, e, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusInternalServerError || env.Code != int(errors.ErrorCode_DB_QUERY_FAILED) {
			t.Errorf("%s: expected 500 DB_QUERY_FAILED, got %d code %d", path, rec.Code, env.Code)
		}
	}
}

func TestStatsAndHealth(t *testing.T) {
	svc := newFakeService()
	e := newTestServer(svc)

	rec, env := do(t, e, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats entities.ProcessingStats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.AnalysisCount != 3 || stats.FailedCount != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	check := func(want string) {
		t.Helper()
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		var health struct {
			Status      string          `json:"status"`
			Environment string          `json:"environment"`
			Components  map[string]bool `json:"components"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
			t.Fatalf("decode health: %v", err)
		}
		if health.Status != want || health.Environment != "test" {
			t.Fatalf("expected %s in test, got %+v", want, health)
		}
	}

	check("ok")
	svc.health["transcriber"] = false
	check("degraded")
}

func TestRoutesWithoutHandler(t *testing.T) {
	e := echo.New()
	NewRouter(nil, nil, nil).Setup(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", rec.Code)
	}
}
