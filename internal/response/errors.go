package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrNoActiveSession ErrCode = "NO_ACTIVE_SESSION"

	// ─── Quiz-specific ─────────────────────────────────────────────────
	ErrInvalidNavigation ErrCode = "INVALID_NAVIGATION"
	ErrInvalidAnswer     ErrCode = "INVALID_ANSWER"
	ErrQuizInProgress    ErrCode = "QUIZ_IN_PROGRESS"

	// ─── Question source ───────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrInvalidSource   ErrCode = "INVALID_SOURCE"
	ErrMalformedRow    ErrCode = "MALFORMED_ROW"

	// ─── Monitoring ────────────────────────────────────────────────────
	ErrMonitorUnavailable ErrCode = "MONITOR_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid question index."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrNoActiveSession:
		return "No quiz has been loaded yet."

	// ─── Quiz-specific ─────────────────────────────────────────────────
	case ErrInvalidNavigation:
		return "Navigation is not allowed in the current quiz state."
	case ErrInvalidAnswer:
		return "The answer cannot be recorded."
	case ErrQuizInProgress:
		return "The quiz has not been submitted yet."

	// ─── Question source ───────────────────────────────────────────────
	case ErrFileRequired:
		return "A question file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type. Upload a .csv or .xlsx file."
	case ErrFileTooLarge:
		return "File size exceeds the limit."
	case ErrInvalidSource:
		return "The question file could not be read."
	case ErrMalformedRow:
		return "The question file contains a malformed row."

	// ─── Monitoring ────────────────────────────────────────────────────
	case ErrMonitorUnavailable:
		return "Live monitoring requires Redis to be configured."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
