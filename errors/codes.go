package errors

// ErrorCode identifies an error class in API responses
type ErrorCode int32

const (
	ErrorCode_HTTP_OK          ErrorCode = 200
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_UNAUTHENTICATED  ErrorCode = 1003
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1004

	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = 2001
	ErrorCode_AUTH_TOKEN_EXPIRED ErrorCode = 2002

	ErrorCode_AUDIO_MISSING            ErrorCode = 3001
	ErrorCode_AUDIO_TOO_LARGE          ErrorCode = 3002
	ErrorCode_AUDIO_UNSUPPORTED_FORMAT ErrorCode = 3003
	ErrorCode_EMPTY_TEXT               ErrorCode = 3004

	ErrorCode_ANALYSIS_NOT_FOUND  ErrorCode = 4001
	ErrorCode_SERVICE_UNAVAILABLE ErrorCode = 4003

	ErrorCode_DB_QUERY_FAILED ErrorCode = 5003
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                  "HTTP_OK",
	ErrorCode_INTERNAL:                 "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:         "INVALID_ARGUMENT",
	ErrorCode_UNAUTHENTICATED:          "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:          "INVALID_PAYLOAD",
	ErrorCode_AUTH_INVALID_TOKEN:       "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:       "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUDIO_MISSING:            "AUDIO_MISSING",
	ErrorCode_AUDIO_TOO_LARGE:          "AUDIO_TOO_LARGE",
	ErrorCode_AUDIO_UNSUPPORTED_FORMAT: "AUDIO_UNSUPPORTED_FORMAT",
	ErrorCode_EMPTY_TEXT:               "EMPTY_TEXT",
	ErrorCode_ANALYSIS_NOT_FOUND:       "ANALYSIS_NOT_FOUND",
	ErrorCode_SERVICE_UNAVAILABLE:      "SERVICE_UNAVAILABLE",
	ErrorCode_DB_QUERY_FAILED:          "DB_QUERY_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
