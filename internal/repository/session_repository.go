package repository

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veritest/veritest-backend/internal/model"
)

// SessionRepository handles exam session and answer data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, exam_id, student_id, started_at, ended_at, status,
	violation_count, total_marks, time_left`

func scanSession(row pgx.Row) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := row.Scan(&s.ID, &s.ExamID, &s.StudentID, &s.StartedAt, &s.EndedAt,
		&s.Status, &s.ViolationCount, &s.TotalMarks, &s.TimeLeft)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID uuid.UUID) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1`, sessionID))
}

// GetOpen retrieves the latest ONGOING or TERMINATED session for the pair.
func (r *SessionRepository) GetOpen(ctx context.Context, examID uuid.UUID, studentID int) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM exam_sessions
		 WHERE exam_id = $1 AND student_id = $2 AND status <> 'COMPLETED'
		 ORDER BY started_at DESC
		 LIMIT 1`, examID, studentID))
}

func (r *SessionRepository) HasCompleted(ctx context.Context, examID uuid.UUID, studentID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM exam_sessions
			WHERE exam_id = $1 AND student_id = $2 AND status = 'COMPLETED'
		 )`, examID, studentID,
	).Scan(&exists)
	return exists, err
}

// Create inserts a new ONGOING session. The partial unique index on open
// sessions makes concurrent starts collide; the loser gets pgx.ErrNoRows.
func (r *SessionRepository) Create(ctx context.Context, s *model.ExamSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_sessions (exam_id, student_id, status, time_left)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (exam_id, student_id) WHERE status <> 'COMPLETED' DO NOTHING
		 RETURNING id, started_at`,
		s.ExamID, s.StudentID, model.SessionStatusOngoing, s.TimeLeft,
	).Scan(&s.ID, &s.StartedAt)
}

// Finalize upserts the scored answers and completes the session in one
// transaction. The session row is locked first so submits serialize with
// concurrent violation reports; total marks are summed over the full
// answer set, not just this submission. Returns ok=false when the session
// was already COMPLETED under the lock.
func (r *SessionRepository) Finalize(ctx context.Context, sessionID uuid.UUID, answers []model.Answer, timeLeft int, now time.Time) (*model.ExamSession, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	var status model.SessionStatus
	if err := tx.QueryRow(ctx,
		`SELECT status FROM exam_sessions WHERE id = $1 FOR UPDATE`, sessionID,
	).Scan(&status); err != nil {
		return nil, false, err
	}
	if status == model.SessionStatusCompleted {
		return nil, false, nil
	}

	for i := range answers {
		a := &answers[i]
		if err := tx.QueryRow(ctx,
			`INSERT INTO answers (session_id, question_id, choice_index, text, marks_awarded)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (session_id, question_id) DO UPDATE
			 SET choice_index = EXCLUDED.choice_index,
			     text = EXCLUDED.text,
			     marks_awarded = EXCLUDED.marks_awarded
			 RETURNING id`,
			a.SessionID, a.QuestionID, a.ChoiceIndex, a.Text, a.MarksAwarded,
		).Scan(&a.ID); err != nil {
			return nil, false, err
		}
	}

	var total float64
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(marks_awarded), 0) FROM answers WHERE session_id = $1`,
		sessionID,
	).Scan(&total); err != nil {
		return nil, false, err
	}

	session, err := scanSession(tx.QueryRow(ctx,
		`UPDATE exam_sessions
		 SET status = $1, total_marks = $2, ended_at = $3, time_left = $4
		 WHERE id = $5
		 RETURNING `+sessionColumns,
		model.SessionStatusCompleted, total, now, timeLeft, sessionID))
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return session, true, nil
}

func (r *SessionRepository) ListAnswers(ctx context.Context, sessionID uuid.UUID) ([]model.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, question_id, choice_index, text, marks_awarded
		 FROM answers
		 WHERE session_id = $1`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &a.ChoiceIndex,
			&a.Text, &a.MarksAwarded); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// ListResults returns COMPLETED sessions for an exam with student info,
// violation counts and the exam's maximum attainable marks.
func (r *SessionRepository) ListResults(ctx context.Context, examID uuid.UUID) ([]model.SessionResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT es.id, es.student_id, u.name, u.email,
		        es.total_marks,
		        (SELECT COALESCE(SUM(q.marks), 0) FROM questions q WHERE q.exam_id = es.exam_id),
		        (SELECT COUNT(*) FROM violations v WHERE v.session_id = es.id),
		        es.started_at, es.ended_at
		 FROM exam_sessions es
		 JOIN users u ON es.student_id = u.id
		 WHERE es.exam_id = $1 AND es.status = 'COMPLETED'
		 ORDER BY es.ended_at DESC`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.SessionResult
	for rows.Next() {
		var res model.SessionResult
		if err := rows.Scan(&res.SessionID, &res.StudentID, &res.StudentName,
			&res.StudentEmail, &res.Score, &res.TotalMarks, &res.ViolationCount,
			&res.StartedAt, &res.CompletedAt); err != nil {
			return nil, err
		}
		if res.TotalMarks > 0 {
			res.Percentage = math.Round(res.Score/res.TotalMarks*10000) / 100
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
