package service

import "github.com/veritest/veritest-backend/internal/model"

// scoreFunc computes the marks awarded for one submitted choice against a
// question's answer key.
type scoreFunc func(q *model.Question, choice *int) float64

// scorers dispatches on question type. Types without an entry are not
// auto-scored and award zero pending manual grading.
var scorers = map[model.QuestionType]scoreFunc{
	model.QuestionTypeMCQ:       scoreChoice,
	model.QuestionTypeTrueFalse: scoreChoice,
}

// ScoreAnswer returns the marks awarded for a submitted answer.
// All-or-nothing: no partial credit, no negative marking.
func ScoreAnswer(q *model.Question, choice *int) float64 {
	fn, ok := scorers[q.Type]
	if !ok {
		return 0
	}
	return fn(q, choice)
}

// scoreChoice handles both MCQ and true/false: full marks on index
// equality, zero otherwise. A missing choice or answer key scores zero.
func scoreChoice(q *model.Question, choice *int) float64 {
	if choice == nil || q.CorrectAnswer == nil {
		return 0
	}
	if *choice == *q.CorrectAnswer {
		return q.Marks
	}
	return 0
}
