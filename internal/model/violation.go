package model

import (
	"time"

	"github.com/google/uuid"
)

// ViolationType enumerates the integrity events the proctoring client can
// report. The engine only counts them; analysis happens client-side.
type ViolationType string

const (
	// Face detection
	ViolationMultipleFaces      ViolationType = "MULTIPLE_FACES"
	ViolationNoFaceDetected     ViolationType = "NO_FACE_DETECTED"
	ViolationHeadMovement       ViolationType = "HEAD_MOVEMENT"
	ViolationLookingAway        ViolationType = "LOOKING_AWAY"
	ViolationCameraAccessDenied ViolationType = "CAMERA_ACCESS_DENIED"

	// Tab/window
	ViolationTabSwitch  ViolationType = "TAB_SWITCH"
	ViolationWindowBlur ViolationType = "WINDOW_BLUR"

	// Keyboard/clipboard
	ViolationCopyPaste        ViolationType = "COPY_PASTE"
	ViolationKeyboardShortcut ViolationType = "KEYBOARD_SHORTCUT"
	ViolationFunctionKey      ViolationType = "FUNCTION_KEY"
	ViolationAltTab           ViolationType = "ALT_TAB"
	ViolationPasteAction      ViolationType = "PASTE_ACTION"
	ViolationCopyAction       ViolationType = "COPY_ACTION"
	ViolationRightClick       ViolationType = "RIGHT_CLICK"

	// Audio
	ViolationAudio ViolationType = "AUDIO_VIOLATION"

	ViolationOther ViolationType = "OTHER"
)

var violationTypes = map[ViolationType]struct{}{
	ViolationMultipleFaces: {}, ViolationNoFaceDetected: {},
	ViolationHeadMovement: {}, ViolationLookingAway: {},
	ViolationCameraAccessDenied: {}, ViolationTabSwitch: {},
	ViolationWindowBlur: {}, ViolationCopyPaste: {},
	ViolationKeyboardShortcut: {}, ViolationFunctionKey: {},
	ViolationAltTab: {}, ViolationPasteAction: {},
	ViolationCopyAction: {}, ViolationRightClick: {},
	ViolationAudio: {}, ViolationOther: {},
}

// Valid reports whether t is a known violation type.
func (t ViolationType) Valid() bool {
	_, ok := violationTypes[t]
	return ok
}

// Violation is an append-only integrity event record. Only the Resolved
// flag may change after creation, and only through human review.
type Violation struct {
	ID        uuid.UUID     `json:"id"`
	SessionID uuid.UUID     `json:"session_id"`
	StudentID int           `json:"student_id"`
	Type      ViolationType `json:"type"`
	// OccurredAt is the client-reported timestamp. The server clock stays
	// authoritative for all lifecycle decisions.
	OccurredAt time.Time `json:"timestamp"`
	Details    string    `json:"details,omitempty"`
	Resolved   bool      `json:"resolved"`
	CreatedAt  time.Time `json:"created_at"`
}

// LogViolationRequest is the payload for reporting a violation.
type LogViolationRequest struct {
	SessionID uuid.UUID `json:"session_id" binding:"required"`
	Type      string    `json:"violation_type" binding:"required,max=32"`
	Timestamp time.Time `json:"timestamp" binding:"required"`
	Details   string    `json:"details" binding:"max=512"`
}

// ViolationLogResult is returned after a violation is recorded.
type ViolationLogResult struct {
	SessionID      uuid.UUID     `json:"session_id"`
	ViolationID    uuid.UUID     `json:"violation_id"`
	ViolationCount int           `json:"violation_count"`
	Terminated     bool          `json:"terminated"`
	TimeLeft       int           `json:"time_left"`
	Status         SessionStatus `json:"status"`
}

// ViolationFilter narrows a violation report listing.
type ViolationFilter struct {
	Start     *time.Time
	End       *time.Time
	ExamID    *uuid.UUID
	StudentID *int
}

// ViolationScope limits violation listings to what the caller may see.
type ViolationScope struct {
	TeacherID *int // only sessions of exams owned by this teacher
	StudentID *int // only this student's violations
}
