package errors

import "errors"

// Audio input errors, rejected before any model runs
var (
	ErrMissingAudio      = errors.New("audio is required")
	ErrEmptyAudio        = errors.New("audio is empty")
	ErrAudioTooLarge     = errors.New("audio exceeds size limit")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrInvalidBase64     = errors.New("audio is not valid base64")
)

// Text and analysis errors
var (
	ErrEmptyText        = errors.New("text is empty")
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrHistoryDisabled  = errors.New("analysis history is disabled")
)
