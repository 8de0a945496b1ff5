package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates exam session lifecycle states.
type SessionStatus string

const (
	SessionStatusOngoing    SessionStatus = "ONGOING"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
	SessionStatusTerminated SessionStatus = "TERMINATED"
)

// ExamSession represents one student's attempt at one exam.
//
// Transitions: ONGOING → COMPLETED (submit), ONGOING → TERMINATED
// (violation limit reached), TERMINATED → COMPLETED (late submit is still
// allowed). COMPLETED is final.
type ExamSession struct {
	ID             uuid.UUID     `json:"id"`
	ExamID         uuid.UUID     `json:"exam_id"`
	StudentID      int           `json:"student_id"`
	StartedAt      time.Time     `json:"started_at"`
	EndedAt        *time.Time    `json:"ended_at,omitempty"`
	Status         SessionStatus `json:"status"`
	ViolationCount int           `json:"violation_count"`
	TotalMarks     float64       `json:"total_marks"`
	// TimeLeft is the remaining seconds when last refreshed. It is derived
	// from the server clock and never drives a state transition.
	TimeLeft int `json:"time_left"`
}

// Open reports whether the session still accepts a submission.
func (s *ExamSession) Open() bool {
	return s.Status == SessionStatusOngoing || s.Status == SessionStatusTerminated
}

// RefreshTimeLeft recomputes the informational time-left field from the
// exam duration and the session start, clamped at zero.
func (s *ExamSession) RefreshTimeLeft(durationMinutes int, now time.Time) {
	total := durationMinutes * 60
	elapsed := int(now.Sub(s.StartedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := total - elapsed
	if remaining < 0 {
		remaining = 0
	}
	s.TimeLeft = remaining
}

// Complete moves the session to COMPLETED and stamps the end time.
func (s *ExamSession) Complete(now time.Time) {
	s.Status = SessionStatusCompleted
	s.EndedAt = &now
}

// Terminate moves the session to TERMINATED and stamps the end time.
func (s *ExamSession) Terminate(now time.Time) {
	s.Status = SessionStatusTerminated
	s.EndedAt = &now
}

// Answer is one student answer for one question within a session.
// Resubmission overwrites the previous value (upsert on session+question).
type Answer struct {
	ID           uuid.UUID `json:"id"`
	SessionID    uuid.UUID `json:"session_id"`
	QuestionID   uuid.UUID `json:"question_id"`
	ChoiceIndex  *int      `json:"choice_index,omitempty"`
	Text         string    `json:"text,omitempty"`
	MarksAwarded float64   `json:"marks_awarded"`
}

// StartExamRequest is the payload for starting an exam attempt.
type StartExamRequest struct {
	Password string `json:"password" binding:"required"`
}

// SubmittedAnswer is one answer within a submit payload.
type SubmittedAnswer struct {
	QuestionID  uuid.UUID `json:"question_id" binding:"required"`
	ChoiceIndex *int      `json:"choice_index"`
	Text        string    `json:"text"`
}

// SubmitExamRequest is the payload for submitting an attempt.
type SubmitExamRequest struct {
	Answers []SubmittedAnswer `json:"answers" binding:"required,dive"`
}

// DraftAnswerRequest is the payload for autosaving an in-progress answer.
// Drafts are informational only and never scored.
type DraftAnswerRequest struct {
	QuestionID  uuid.UUID `json:"question_id" binding:"required"`
	ChoiceIndex *int      `json:"choice_index"`
	Text        string    `json:"text" binding:"max=10000"`
}

// SessionResult is one row of a teacher-facing results listing.
type SessionResult struct {
	SessionID      uuid.UUID  `json:"session_id"`
	StudentID      int        `json:"student_id"`
	StudentName    string     `json:"student_name"`
	StudentEmail   string     `json:"student_email"`
	Score          float64    `json:"score"`
	TotalMarks     float64    `json:"total_marks"`
	Percentage     float64    `json:"percentage"`
	ViolationCount int        `json:"violation_count"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}
