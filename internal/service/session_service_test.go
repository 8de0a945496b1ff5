package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/veritest/veritest-backend/internal/model"
)

func newTestSessionService(store *fakeStore, catalog *fakeCatalog) *SessionService {
	return NewSessionService(store, catalog, newFakeUsers(), nil, zerolog.Nop())
}

func seedExam(catalog *fakeCatalog, questions ...model.Question) *model.Exam {
	exam := &model.Exam{
		TeacherID:       1,
		Title:           "Algebra Midterm",
		Password:        "secret",
		DurationMinutes: 60,
		Published:       true,
	}
	catalog.addExam(exam, questions...)
	return exam
}

func TestStartCreatesOngoingSession(t *testing.T) {
	store := newFakeStore()
	catalog := newFakeCatalog()
	exam := seedExam(catalog)
	svc := newTestSessionService(store, catalog)

	session, err := svc.Start(context.Background(), 7, model.RoleStudent, exam.ID, "secret")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if session.Status != model.SessionStatusOngoing {
		t.Errorf("status = %s, want ONGOING", session.Status)
	}
	if session.StudentID != 7 || session.ExamID != exam.ID {
		t.Errorf("session bound to wrong pair: %+v", session)
	}
	if session.TimeLeft != exam.DurationMinutes*60 {
		t.Errorf("time_left = %d, want %d", session.TimeLeft, exam.DurationMinutes*60)
	}
}

func TestStartIsIdempotentOverOpenSession(t *testing.T) {
	store := newFakeStore()
	catalog := newFakeCatalog()
	exam := seedExam(catalog)
	svc := newTestSessionService(store, catalog)

	first, err := svc.Start(context.Background(), 7, model.RoleStudent, exam.ID, "secret")
	if err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	second, err := svc.Start(context.Background(), 7, model.RoleStudent, exam.ID, "secret")
	if err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("second start created a new session: %s != %s", first.ID, second.ID)
	}
}

func TestStartResumesTerminatedSession(t *testing.T) {
	store := newFakeStore()
	catalog := newFakeCatalog()
	exam := seedExam(catalog)
	svc := newTestSessionService(store, catalog)

	now := time.Now()
	seeded := store.seedSession(&model.ExamSession{
		ExamID:    exam.ID,
		StudentID: 7,
		StartedAt: now.Add(-10 * time.Minute),
		Status:    model.SessionStatusTerminated,
	})

	session, err := svc.Start(context.Background(), 7, model.RoleStudent, exam.ID, "secret")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if session.ID != seeded.ID {
		t.Errorf("expected the terminated session back, got %s", session.ID)
	}
	if session.Status != model.SessionStatusTerminated {
		t.Errorf("status = %s, want TERMINATED", session.Status)
	}
}

func TestStartRejections(t *testing.T) {
	store := newFakeStore()
	catalog := newFakeCatalog()
	exam := seedExam(catalog)

	unpublished := &model.Exam{TeacherID: 1, Password: "secret", DurationMinutes: 30}
	catalog.addExam(unpublished)

	svc := newTestSessionService(store, catalog)

	store.seedSession(&model.ExamSession{
		ExamID:    exam.ID,
		StudentID: 42,
		StartedAt: time.Now(),
		Status:    model.SessionStatusCompleted,
	})

	tests := []struct {
		name     string
		callerID int
		role     model.Role
		examID   uuid.UUID
		password string
		wantErr  error
	}{
		{"teacher cannot start", 1, model.RoleTeacher, exam.ID, "secret", ErrStudentOnly},
		{"unknown exam", 7, model.RoleStudent, uuid.New(), "secret", ErrExamNotFound},
		{"unpublished exam", 7, model.RoleStudent, unpublished.ID, "secret", ErrExamNotFound},
		{"wrong password", 7, model.RoleStudent, exam.ID, "nope", ErrWrongExamPassword},
		{"already completed", 42, model.RoleStudent, exam.ID, "secret", ErrAlreadyCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Start(context.Background(), tt.callerID, tt.role, tt.examID, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubmitScoresAndCompletes(t *testing.T) {
	store := newFakeStore()
	catalog := newFakeCatalog()
	exam := seedExam(catalog,
		model.Question{Type: model.QuestionTypeMCQ, CorrectAnswer: intPtr(1), Marks: 3},
		model.Question{Type: model.QuestionTypeMCQ, CorrectAnswer: intPtr(0), Marks: 2},
		model.Question{Type: model.QuestionTypeTrueFalse, CorrectAnswer: intPtr(1), Marks: 1},
	)
	svc := newTestSessionService(store, catalog)

	session, err := svc.Start(context.Background(), 7, model.RoleStudent, exam.ID, "secret")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	questions := catalog.questions[exam.ID]
	submitted := []model.SubmittedAnswer{
		{QuestionID: questions[0].ID, ChoiceIndex: intPtr(1)}, // correct, 3
		{QuestionID: questions[1].ID, ChoiceIndex: intPtr(1)}, // wrong, 0
		{QuestionID: questions[2].ID, ChoiceIndex: intPtr(1)}, // correct, 1
	}

	finalized, err := svc.Submit(context.Background(), 7, model.RoleStudent, session.ID, submitted)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if finalized.Status != model.SessionStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", finalized.Status)
	}
	if finalized.TotalMarks != 4 {
		t.Errorf("total_marks = %v, want 4", finalized.TotalMarks)
	}
	if finalized.EndedAt == nil {
		t.Error("ended_at not stamped on completion")
	}
}

func TestSubmitDropsForeignQuestions(t *testing.T) {
	store := newFakeStore()
	catalog := newFakeCatalog()
	exam := seedExam(catalog,
		model.Question{Type: model.QuestionTypeMCQ, CorrectAnswer: intPtr(0), Marks: 5},
	)
	svc := newTestSessionService(store, catalog)

	session, err := svc.Start(context.Background(), 7, model.RoleStudent, exam.ID, "secret")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	submitted := []model.SubmittedAnswer{
		{QuestionID: catalog.questions[exam.ID][0].ID, ChoiceIndex: intPtr(0)},
		{QuestionID: uuid.New(), ChoiceIndex: intPtr(0)}, // not part of this exam
	}

	finalized, err := svc.Submit(context.Background(), 7, model.RoleStudent, session.ID, submitted)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if finalized.TotalMarks != 5 {
		t.Errorf("total_marks = %v, want 5", finalized.TotalMarks)
	}

	answers, _ := store.ListAnswers(context.Background(), session.ID)
	if len(answers) != 1 {
		t.Errorf("stored %d answers, want 1 (foreign question dropped)", len(answers))
	}
}

func TestSubmitOverwritesEarlierAnswers(t *testing.T) {
	store := newFakeStore()
	catalog := newFakeCatalog()
	exam := seedExam(catalog,
		model.Question{Type: model.QuestionTypeMCQ, CorrectAnswer: intPtr(1), Marks: 3},
		model.Question{Type: model.QuestionTypeMCQ, CorrectAnswer: intPtr(0), Marks: 2},
	)
	svc := newTestSessionService(store, catalog)

	session, err := svc.Start(context.Background(), 7, model.RoleStudent, exam.ID, "secret")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	questions := catalog.questions[exam.ID]

	// An earlier saved answer for question 0 scored full marks.
	store.answers[session.ID] = map[uuid.UUID]model.Answer{
		questions[0].ID: {
			SessionID:    session.ID,
			QuestionID:   questions[0].ID,
			ChoiceIndex:  intPtr(1),
			MarksAwarded: 3,
		},
	}

	// The submission replaces it with a wrong choice; totals must reflect
	// only the latest value per question, never the sum of both.
	submitted := []model.SubmittedAnswer{
		{QuestionID: questions[0].ID, ChoiceIndex: intPtr(0)}, // now wrong, 0
		{QuestionID: questions[1].ID, ChoiceIndex: intPtr(0)}, // correct, 2
	}
	finalized, err := svc.Submit(context.Background(), 7, model.RoleStudent, session.ID, submitted)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if finalized.TotalMarks != 2 {
		t.Errorf("total_marks = %v, want 2 (latest answer only)", finalized.TotalMarks)
	}

	answers, _ := store.ListAnswers(context.Background(), session.ID)
	if len(answers) != 2 {
		t.Errorf("stored %d answers, want 2 (upsert, no duplicates)", len(answers))
	}
}

func TestSubmitAfterTerminationSucceeds(t *testing.T) {
	store := newFakeStore()
	catalog := newFakeCatalog()
	exam := seedExam(catalog,
		model.Question{Type: model.QuestionTypeMCQ, CorrectAnswer: intPtr(0), Marks: 2},
	)
	svc := newTestSessionService(store, catalog)

	now := time.Now()
	seeded := store.seedSession(&model.ExamSession{
		ExamID:    exam.ID,
		StudentID: 7,
		StartedAt: now.Add(-5 * time.Minute),
		EndedAt:   &now,
		Status:    model.SessionStatusTerminated,
	})

	submitted := []model.SubmittedAnswer{
		{QuestionID: catalog.questions[exam.ID][0].ID, ChoiceIndex: intPtr(0)},
	}
	finalized, err := svc.Submit(context.Background(), 7, model.RoleStudent, seeded.ID, submitted)
	if err != nil {
		t.Fatalf("Submit() after termination error = %v", err)
	}
	if finalized.Status != model.SessionStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", finalized.Status)
	}
	if finalized.TotalMarks != 2 {
		t.Errorf("total_marks = %v, want 2", finalized.TotalMarks)
	}
}

func TestSubmitTwiceIsRejected(t *testing.T) {
	store := newFakeStore()
	catalog := newFakeCatalog()
	exam := seedExam(catalog)
	svc := newTestSessionService(store, catalog)

	session, err := svc.Start(context.Background(), 7, model.RoleStudent, exam.ID, "secret")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := svc.Submit(context.Background(), 7, model.RoleStudent, session.ID, nil); err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if _, err := svc.Submit(context.Background(), 7, model.RoleStudent, session.ID, nil); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("second Submit() = %v, want ErrAlreadyCompleted", err)
	}
}

func TestSubmitOwnershipEnforced(t *testing.T) {
	store := newFakeStore()
	catalog := newFakeCatalog()
	exam := seedExam(catalog)
	svc := newTestSessionService(store, catalog)

	session, err := svc.Start(context.Background(), 7, model.RoleStudent, exam.ID, "secret")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, err := svc.Submit(context.Background(), 8, model.RoleStudent, session.ID, nil); !errors.Is(err, ErrNotSessionOwner) {
		t.Errorf("foreign student submit = %v, want ErrNotSessionOwner", err)
	}
	if _, err := svc.Submit(context.Background(), 7, model.RoleTeacher, session.ID, nil); !errors.Is(err, ErrStudentOnly) {
		t.Errorf("teacher submit = %v, want ErrStudentOnly", err)
	}
}

func TestSubmitUnknownSession(t *testing.T) {
	store := newFakeStore()
	catalog := newFakeCatalog()
	seedExam(catalog)
	svc := newTestSessionService(store, catalog)

	if _, err := svc.Submit(context.Background(), 7, model.RoleStudent, uuid.New(), nil); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("got %v, want ErrSessionNotFound", err)
	}
}
