package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/veritest/veritest-backend/internal/config"
	"github.com/veritest/veritest-backend/internal/model"
)

// SessionService owns the exam attempt lifecycle: start, submit, scoring
// and results. One logical operation per inbound call; the per-session
// serialization happens inside the store transactions.
type SessionService struct {
	sessions SessionStore
	catalog  ExamCatalog
	users    UserStore
	policy   AccessPolicy
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewSessionService creates a new SessionService. rdb may be nil in tests;
// caching is best-effort and never affects correctness.
func NewSessionService(sessions SessionStore, catalog ExamCatalog, users UserStore, rdb *redis.Client, log zerolog.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		catalog:  catalog,
		users:    users,
		rdb:      rdb,
		log:      log.With().Str("component", "session_service").Logger(),
	}
}

// Start begins (or resumes) a student's attempt at an exam.
//
// Rules, in order: the exam must exist and be published; the password must
// match; the caller must be a student; a COMPLETED session for the pair
// means the attempt is spent; an existing ONGOING or TERMINATED session is
// returned as-is so reconnects and post-termination submits keep working.
func (s *SessionService) Start(ctx context.Context, callerID int, role model.Role, examID uuid.UUID, password string) (*model.ExamSession, error) {
	if err := s.policy.CanStartExam(role); err != nil {
		return nil, err
	}

	exam, err := s.catalog.GetPublishedExam(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	if exam.Password != password {
		return nil, ErrWrongExamPassword
	}

	completed, err := s.sessions.HasCompleted(ctx, examID, callerID)
	if err != nil {
		return nil, fmt.Errorf("check completed session: %w", err)
	}
	if completed {
		return nil, ErrAlreadyCompleted
	}

	// Idempotent start: reuse the open session if one exists.
	existing, err := s.sessions.GetOpen(ctx, examID, callerID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check open session: %w", err)
	}
	if existing != nil {
		existing.RefreshTimeLeft(exam.DurationMinutes, time.Now())
		s.cacheStart(ctx, existing)
		return existing, nil
	}

	session := &model.ExamSession{
		ExamID:    examID,
		StudentID: callerID,
		Status:    model.SessionStatusOngoing,
		StartedAt: time.Now(),
		TimeLeft:  exam.DurationMinutes * 60,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Concurrent start won the insert; return its session.
			existing, fetchErr := s.sessions.GetOpen(ctx, examID, callerID)
			if fetchErr != nil {
				return nil, fmt.Errorf("concurrent start detected, but fetch failed: %w", fetchErr)
			}
			existing.RefreshTimeLeft(exam.DurationMinutes, time.Now())
			return existing, nil
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.cacheStart(ctx, session)
	return session, nil
}

// Submit records the submitted answers, scores them and completes the
// session. A TERMINATED session may still submit; a COMPLETED one may not.
// Answers referencing questions outside the session's exam are silently
// dropped. Total marks are recomputed over the full answer set, so a
// resubmission before completion never double-counts.
func (s *SessionService) Submit(ctx context.Context, callerID int, role model.Role, sessionID uuid.UUID, submitted []model.SubmittedAnswer) (*model.ExamSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if err := s.policy.CanSubmit(role, callerID, session); err != nil {
		return nil, err
	}
	if session.Status == model.SessionStatusCompleted {
		return nil, ErrAlreadyCompleted
	}

	exam, err := s.catalog.GetExam(ctx, session.ExamID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	questions, err := s.catalog.ListQuestions(ctx, session.ExamID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	qIndex := make(map[uuid.UUID]*model.Question, len(questions))
	for i := range questions {
		qIndex[questions[i].ID] = &questions[i]
	}

	answers := make([]model.Answer, 0, len(submitted))
	for _, item := range submitted {
		q, ok := qIndex[item.QuestionID]
		if !ok {
			continue // foreign question, dropped by design
		}
		answers = append(answers, model.Answer{
			SessionID:    session.ID,
			QuestionID:   q.ID,
			ChoiceIndex:  item.ChoiceIndex,
			Text:         item.Text,
			MarksAwarded: ScoreAnswer(q, item.ChoiceIndex),
		})
	}

	now := time.Now()
	session.RefreshTimeLeft(exam.DurationMinutes, now)

	finalized, ok, err := s.sessions.Finalize(ctx, session.ID, answers, session.TimeLeft, now)
	if err != nil {
		return nil, fmt.Errorf("finalize session: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyCompleted
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Int("student_id", session.StudentID).
		Float64("total_marks", finalized.TotalMarks).
		Msg("Session completed")

	return finalized, nil
}

// Get returns a session with its answers, subject to the caller's role
// and the ownership chain.
func (s *SessionService) Get(ctx context.Context, callerID int, role model.Role, sessionID uuid.UUID) (*model.ExamSession, []model.Answer, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("get session: %w", err)
	}

	exam, err := s.catalog.GetExam(ctx, session.ExamID)
	if err != nil {
		return nil, nil, fmt.Errorf("get exam: %w", err)
	}

	if err := s.policy.CanViewSession(role, callerID, session, exam); err != nil {
		return nil, nil, err
	}

	session.RefreshTimeLeft(exam.DurationMinutes, time.Now())

	answers, err := s.sessions.ListAnswers(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("list answers: %w", err)
	}
	return session, answers, nil
}

// Results returns the COMPLETED sessions of an exam for its teacher or an
// admin.
func (s *SessionService) Results(ctx context.Context, callerID int, role model.Role, examID uuid.UUID) ([]model.SessionResult, error) {
	exam, err := s.catalog.GetExam(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	if err := s.policy.CanViewResults(role, callerID, exam); err != nil {
		return nil, err
	}

	results, err := s.sessions.ListResults(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// cacheStart stores the session start time in Redis so reconnecting
// clients can rebuild their countdown cheaply. Best-effort only.
func (s *SessionService) cacheStart(ctx context.Context, session *model.ExamSession) {
	if s.rdb == nil {
		return
	}
	key := config.CacheKey.SessionStartKey(session.ID.String())
	if err := s.rdb.Set(ctx, key, session.StartedAt.Unix(), 0).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache session start time")
	}
}
