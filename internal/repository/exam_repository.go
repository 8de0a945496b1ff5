package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veritest/veritest-backend/internal/model"
)

// ExamRepository is the read-only exam catalog backing the session engine.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, teacher_id, title, description, password, duration_minutes,
	violation_limit, published, created_at, updated_at`

func scanExam(row interface{ Scan(...any) error }) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(&e.ID, &e.TeacherID, &e.Title, &e.Description, &e.Password,
		&e.DurationMinutes, &e.ViolationLimit, &e.Published, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *ExamRepository) GetExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, examID))
}

func (r *ExamRepository) GetPublishedExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1 AND published = TRUE`, examID))
}

// ListQuestions returns the exam's questions in authoring order.
func (r *ExamRepository) ListQuestions(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, type, text, choices, correct_answer, marks, order_num
		 FROM questions
		 WHERE exam_id = $1
		 ORDER BY order_num, id`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.ExamID, &q.Type, &q.Text, &q.Choices,
			&q.CorrectAnswer, &q.Marks, &q.OrderNum); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
