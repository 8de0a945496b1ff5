package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/veritest/veritest-backend/internal/model"
)

// ExamCatalog is the read-only source of exam definitions. Missing rows
// are reported as pgx.ErrNoRows by the PostgreSQL implementation.
type ExamCatalog interface {
	// GetExam returns the exam regardless of publication state.
	GetExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error)
	// GetPublishedExam returns the exam only if it is published.
	GetPublishedExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error)
	// ListQuestions returns the exam's questions in their defined order.
	ListQuestions(ctx context.Context, examID uuid.UUID) ([]model.Question, error)
}

// SessionStore persists exam sessions and their answers.
type SessionStore interface {
	GetByID(ctx context.Context, sessionID uuid.UUID) (*model.ExamSession, error)
	// GetOpen returns the latest ONGOING or TERMINATED session for the
	// (exam, student) pair, or pgx.ErrNoRows.
	GetOpen(ctx context.Context, examID uuid.UUID, studentID int) (*model.ExamSession, error)
	HasCompleted(ctx context.Context, examID uuid.UUID, studentID int) (bool, error)
	// Create inserts a new ONGOING session. A concurrent start for the same
	// pair surfaces as pgx.ErrNoRows (insert skipped on conflict).
	Create(ctx context.Context, s *model.ExamSession) error
	// Finalize upserts the scored answers, recomputes total marks over the
	// session's full answer set and marks the session COMPLETED, all inside
	// one transaction holding the session row lock. Returns ok=false if the
	// session was already COMPLETED when the lock was acquired.
	Finalize(ctx context.Context, sessionID uuid.UUID, answers []model.Answer, timeLeft int, now time.Time) (*model.ExamSession, bool, error)
	ListAnswers(ctx context.Context, sessionID uuid.UUID) ([]model.Answer, error)
	// ListResults returns COMPLETED sessions for an exam, newest first.
	ListResults(ctx context.Context, examID uuid.UUID) ([]model.SessionResult, error)
}

// ViolationStore persists violations and owns the atomic
// increment-then-check against the termination threshold.
type ViolationStore interface {
	// Record appends the violation and increments the session's counter
	// under the session row lock. When the new count reaches limit the
	// session is terminated; otherwise its time-left is refreshed using
	// durationMinutes. Returns the updated session, or ok=false when the
	// session was not ONGOING once the lock was acquired (nothing is
	// written in that case).
	Record(ctx context.Context, v *model.Violation, limit, durationMinutes int, now time.Time) (*model.ExamSession, bool, error)
	List(ctx context.Context, filter model.ViolationFilter, scope model.ViolationScope) ([]model.Violation, error)
}

// UserStore looks up accounts for authentication and results listings.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int) (*model.User, error)
}
