package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam represents an exam definition. The session engine treats exams as
// read-only: authoring happens elsewhere.
type Exam struct {
	ID              uuid.UUID `json:"id"`
	TeacherID       int       `json:"teacher_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Password        string    `json:"-"`
	DurationMinutes int       `json:"duration_minutes"`
	// ViolationLimit is the per-exam auto-termination threshold.
	// Nil means the process-wide default applies.
	ViolationLimit *int      `json:"violation_limit,omitempty"`
	Published      bool      `json:"published"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EffectiveViolationLimit resolves the exam's threshold, falling back to
// the injected process-wide default when the exam has none.
func (e *Exam) EffectiveViolationLimit(defaultLimit int) int {
	if e.ViolationLimit != nil && *e.ViolationLimit > 0 {
		return *e.ViolationLimit
	}
	return defaultLimit
}
