package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the error type surfaced to API callers
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying error
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_INTERNAL,
		Message:   "Internal server error",
		Timestamp: time.Now(),
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_INVALID_ARGUMENT,
		Message:   message,
		Timestamp: time.Now(),
	}
}


func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_UNAUTHENTICATED,
		Message:   "Authentication required",
		Timestamp: time.Now(),
	}
}

// Authentication Errors
func ErrInvalidToken() AppError {
	return AppError{
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_AUTH_INVALID_TOKEN,
		Message:   "Invalid authentication token",
		Timestamp: time.Now(),
	}
}

func ErrTokenExpired() AppError {
	return AppError{
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_AUTH_TOKEN_EXPIRED,
		Message:   "Authentication token has expired",
		Timestamp: time.Now(),
	}
}

// Input Errors
func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_INVALID_PAYLOAD,
		Message:   "Invalid payload",
		Timestamp: time.Now(),
	}
}

func ErrMissingAudio() AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_AUDIO_MISSING,
		Message:   "No audio provided: send an 'audio' file or 'audio_base64'",
		Timestamp: time.Now(),
	}
}

func ErrAudioTooLarge(size, limit int64) AppError {
	return AppError{
		HTTPCode:  http.StatusRequestEntityTooLarge,
		Code:      ErrorCode_AUDIO_TOO_LARGE,
		Message:   "Audio file too large",
		Timestamp: time.Now(),
	}.WithDetail("size", fmt.Sprintf("%d", size)).
		WithDetail("limit", fmt.Sprintf("%d", limit))
}

func ErrUnsupportedAudioFormat(ext string) AppError {
	return AppError{
		HTTPCode:  http.StatusUnsupportedMediaType,
		Code:      ErrorCode_AUDIO_UNSUPPORTED_FORMAT,
		Message:   "Unsupported audio format",
		Timestamp: time.Now(),
	}.WithDetail("extension", ext)
}

func ErrInvalidBase64(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_INVALID_PAYLOAD,
		Message:   "Invalid base64 audio data",
		Timestamp: time.Now(),
	}
}

func ErrEmptyText() AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_EMPTY_TEXT,
		Message:   "Text cannot be empty",
		Timestamp: time.Now(),
	}
}

// Analysis Errors
func ErrAnalysisNotFound(analysisID string) AppError {
	return AppError{
		HTTPCode:  http.StatusNotFound,
		Code:      ErrorCode_ANALYSIS_NOT_FOUND,
		Message:   "Analysis not found",
		Timestamp: time.Now(),
	}.WithDetail("analysis_id", analysisID)
}


func ErrServiceUnavailable(service string) AppError {
	return AppError{
		HTTPCode:  http.StatusServiceUnavailable,
		Code:      ErrorCode_SERVICE_UNAVAILABLE,
		Message:   "Service temporarily unavailable",
		Timestamp: time.Now(),
	}.WithDetail("service", service)
}



// Database Errors
func ErrDBQueryFailed(query string, err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_DB_QUERY_FAILED,
		Message:   "Database query failed",
		Timestamp: time.Now(),
	}.WithDetail("query", query)
}
