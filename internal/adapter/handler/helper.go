package handler

import (
	"context"
	stdErrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/voice-guard/errors"
	"github.com/johnquangdev/voice-guard/internal/adapter/dto/analysis"
	"github.com/johnquangdev/voice-guard/internal/domain/entities"
	"github.com/johnquangdev/voice-guard/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/voice-guard/internal/usecase/errors"
)

// buildFilters converts ListAnalysesRequest to repository filters
func buildFilters(req *analysis.ListAnalysesRequest) repositories.AnalysisFilters {
	filters := repositories.AnalysisFilters{
		CallID:    req.CallID,
		Limit:     req.PageSize,
		Offset:    (req.Page - 1) * req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}

	if req.RiskLevel != "" {
		level := entities.RiskLevel(strings.ToUpper(req.RiskLevel))
		filters.RiskLevel = &level
	}

	if req.Failed != "" {
		if failed, err := strconv.ParseBool(req.Failed); err == nil {
			filters.Failed = &failed
		}
	}

	return filters
}

// upload describes the audio a request carried, for error details
type upload struct {
	size  int64
	limit int64
	ext   string
}

// toAppError maps usecase sentinels onto API errors. AppErrors pass through.
func toAppError(err error, up upload) error {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case stdErrors.Is(err, usecaseErrors.ErrMissingAudio), stdErrors.Is(err, usecaseErrors.ErrEmptyAudio):
		return errors.ErrMissingAudio()
	case stdErrors.Is(err, usecaseErrors.ErrAudioTooLarge):
		return errors.ErrAudioTooLarge(up.size, up.limit)
	case stdErrors.Is(err, usecaseErrors.ErrUnsupportedFormat):
		return errors.ErrUnsupportedAudioFormat(up.ext)
	case stdErrors.Is(err, usecaseErrors.ErrInvalidBase64):
		return errors.ErrInvalidBase64(err)
	case stdErrors.Is(err, usecaseErrors.ErrEmptyText):
		return errors.ErrEmptyText()
	case stdErrors.Is(err, usecaseErrors.ErrHistoryDisabled):
		return errors.ErrServiceUnavailable("history")
	case stdErrors.Is(err, context.Canceled), stdErrors.Is(err, context.DeadlineExceeded):
		return errors.ErrServiceUnavailable("analyzer")
	}
	return errors.ErrInternal(err)
}

// historyError maps a failed history read. Anything the usecase does not name
// is a database failure.
func historyError(err error, query string) error {
	switch {
	case stdErrors.Is(err, usecaseErrors.ErrHistoryDisabled),
		stdErrors.Is(err, context.Canceled),
		stdErrors.Is(err, context.DeadlineExceeded):
		return toAppError(err, upload{})
	}
	return errors.ErrDBQueryFailed(query, err)
}

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			logger.Error("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		body := errs{
			Code:    appErr.Code,
			Message: appErr.Message,
			Info:    info,
			Details: appErr.Details,
		}

		return c.JSON(appErr.HTTPCode, body)
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := errs{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
		Info:    err.Error(),
	}

	return c.JSON(http.StatusInternalServerError, body)
}
