package model

import "github.com/google/uuid"

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeMCQ       QuestionType = "MCQ"
	QuestionTypeTrueFalse QuestionType = "TRUE_FALSE"
)

// Question represents a single exam question.
//
// For MCQ, Choices is the ordered option list and CorrectAnswer the
// 0-based index of the right option. For TRUE_FALSE the choice set is
// implicitly {True, False} and CorrectAnswer is 1 for True, 0 for False.
type Question struct {
	ID            uuid.UUID    `json:"id"`
	ExamID        uuid.UUID    `json:"exam_id"`
	Type          QuestionType `json:"type"`
	Text          string       `json:"text"`
	Choices       []string     `json:"choices,omitempty"`
	CorrectAnswer *int         `json:"-"`
	Marks         float64      `json:"marks"`
	OrderNum      int          `json:"order_num"`
}
