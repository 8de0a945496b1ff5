package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials  ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive       ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrTokenRequired       ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid        ErrCode = "TOKEN_INVALID"
	ErrWrongExamPassword   ErrCode = "WRONG_EXAM_PASSWORD"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrStudentOnly     ErrCode = "STUDENT_ACCESS_ONLY"
	ErrNotExamOwner    ErrCode = "NOT_EXAM_OWNER"
	ErrNotSessionOwner ErrCode = "NOT_SESSION_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Session lifecycle ─────────────────────────────────────────────
	ErrAlreadyCompleted  ErrCode = "ALREADY_COMPLETED"
	ErrSessionNotOngoing ErrCode = "SESSION_NOT_ONGOING"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrSessionActive:
		return "You are already logged in on another device."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."
	case ErrWrongExamPassword:
		return "Incorrect exam password."
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentOnly:
		return "Only students can perform this action."
	case ErrNotExamOwner:
		return "You can only view results for your own exams."
	case ErrNotSessionOwner:
		return "This session belongs to another student."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrNotFound:
		return "Resource not found."
	case ErrAlreadyCompleted:
		return "You have already completed this exam. Only one attempt is allowed per exam."
	case ErrSessionNotOngoing:
		return "The session is no longer ongoing."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
