package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veritest/veritest-backend/internal/model"
)

// ViolationRepository handles violation data access, including the atomic
// increment-then-check against the termination threshold.
type ViolationRepository struct {
	pool *pgxpool.Pool
}

// NewViolationRepository creates a new ViolationRepository.
func NewViolationRepository(pool *pgxpool.Pool) *ViolationRepository {
	return &ViolationRepository{pool: pool}
}

// Record appends a violation and increments the session counter inside one
// transaction. The session row lock serializes concurrent reports for the
// same session: each observes the true post-increment count and the
// termination threshold fires exactly once. A failure anywhere rolls the
// whole thing back, leaving the counter untouched.
func (r *ViolationRepository) Record(ctx context.Context, v *model.Violation, limit, durationMinutes int, now time.Time) (*model.ExamSession, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	session, err := scanSession(tx.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1 FOR UPDATE`,
		v.SessionID))
	if err != nil {
		return nil, false, err
	}
	if session.Status != model.SessionStatusOngoing {
		return nil, false, nil
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO violations (session_id, student_id, type, occurred_at, details)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		v.SessionID, v.StudentID, v.Type, v.OccurredAt, v.Details,
	).Scan(&v.ID, &v.CreatedAt); err != nil {
		return nil, false, err
	}

	session.ViolationCount++
	if session.ViolationCount >= limit {
		session.Terminate(now)
	} else {
		session.RefreshTimeLeft(durationMinutes, now)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE exam_sessions
		 SET violation_count = $1, status = $2, ended_at = $3, time_left = $4
		 WHERE id = $5`,
		session.ViolationCount, session.Status, session.EndedAt, session.TimeLeft, session.ID,
	); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return session, true, nil
}

// List returns violations newest first, filtered and scoped to the caller.
func (r *ViolationRepository) List(ctx context.Context, filter model.ViolationFilter, scope model.ViolationScope) ([]model.Violation, error) {
	query := `
		SELECT v.id, v.session_id, v.student_id, v.type, v.occurred_at,
		       v.details, v.resolved, v.created_at
		FROM violations v
		JOIN exam_sessions es ON v.session_id = es.id
		JOIN exams e ON es.exam_id = e.id
		WHERE 1=1
	`
	var args []any

	if scope.TeacherID != nil {
		args = append(args, *scope.TeacherID)
		query += fmt.Sprintf(" AND e.teacher_id = $%d", len(args))
	}
	if scope.StudentID != nil {
		args = append(args, *scope.StudentID)
		query += fmt.Sprintf(" AND v.student_id = $%d", len(args))
	}
	if filter.Start != nil {
		args = append(args, *filter.Start)
		query += fmt.Sprintf(" AND v.occurred_at >= $%d", len(args))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		query += fmt.Sprintf(" AND v.occurred_at <= $%d", len(args))
	}
	if filter.ExamID != nil {
		args = append(args, *filter.ExamID)
		query += fmt.Sprintf(" AND es.exam_id = $%d", len(args))
	}
	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		query += fmt.Sprintf(" AND v.student_id = $%d", len(args))
	}

	query += " ORDER BY v.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var violations []model.Violation
	for rows.Next() {
		var v model.Violation
		if err := rows.Scan(&v.ID, &v.SessionID, &v.StudentID, &v.Type,
			&v.OccurredAt, &v.Details, &v.Resolved, &v.CreatedAt); err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	return violations, rows.Err()
}
