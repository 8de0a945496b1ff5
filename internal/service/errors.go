package service

import "errors"

// Domain errors surfaced by the session engine. Handlers translate these
// into response codes with errors.Is.
var (
	// Not found
	ErrExamNotFound    = errors.New("exam not found or not published")
	ErrSessionNotFound = errors.New("session not found")

	// Unauthorized
	ErrWrongExamPassword  = errors.New("incorrect exam password")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Forbidden
	ErrStudentOnly     = errors.New("only students can perform this action")
	ErrNotSessionOwner = errors.New("session belongs to another student")
	ErrNotExamOwner    = errors.New("caller does not own this exam")
	ErrForbidden       = errors.New("forbidden")

	// Invalid state
	ErrAlreadyCompleted  = errors.New("exam already completed, only one attempt is allowed")
	ErrSessionNotOngoing = errors.New("session is not ongoing")

	// Validation
	ErrInvalidViolationType = errors.New("unknown violation type")

	// Auth
	ErrSessionAlreadyActive = errors.New("another login session is already active")
)
