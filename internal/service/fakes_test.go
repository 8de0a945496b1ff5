package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/veritest/veritest-backend/internal/model"
)

// fakeCatalog is an in-memory ExamCatalog.
type fakeCatalog struct {
	exams     map[uuid.UUID]*model.Exam
	questions map[uuid.UUID][]model.Question
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		exams:     make(map[uuid.UUID]*model.Exam),
		questions: make(map[uuid.UUID][]model.Question),
	}
}

func (c *fakeCatalog) addExam(e *model.Exam, questions ...model.Question) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	c.exams[e.ID] = e
	for i := range questions {
		if questions[i].ID == uuid.Nil {
			questions[i].ID = uuid.New()
		}
		questions[i].ExamID = e.ID
	}
	c.questions[e.ID] = questions
}

func (c *fakeCatalog) GetExam(_ context.Context, examID uuid.UUID) (*model.Exam, error) {
	e, ok := c.exams[examID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (c *fakeCatalog) GetPublishedExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	e, err := c.GetExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	if !e.Published {
		return nil, pgx.ErrNoRows
	}
	return e, nil
}

func (c *fakeCatalog) ListQuestions(_ context.Context, examID uuid.UUID) ([]model.Question, error) {
	return append([]model.Question(nil), c.questions[examID]...), nil
}

// fakeStore is an in-memory SessionStore and ViolationStore sharing one
// lock, mirroring the row-lock semantics of the PostgreSQL implementation.
type fakeStore struct {
	mu         sync.Mutex
	sessions   map[uuid.UUID]*model.ExamSession
	answers    map[uuid.UUID]map[uuid.UUID]model.Answer
	violations []model.Violation
	results    []model.SessionResult
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[uuid.UUID]*model.ExamSession),
		answers:  make(map[uuid.UUID]map[uuid.UUID]model.Answer),
	}
}

func (f *fakeStore) GetByID(_ context.Context, sessionID uuid.UUID) (*model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) GetOpen(_ context.Context, examID uuid.UUID, studentID int) (*model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ExamID == examID && s.StudentID == studentID && s.Status != model.SessionStatusCompleted {
			cp := *s
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) HasCompleted(_ context.Context, examID uuid.UUID, studentID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ExamID == examID && s.StudentID == studentID && s.Status == model.SessionStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Create(_ context.Context, s *model.ExamSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.sessions {
		if existing.ExamID == s.ExamID && existing.StudentID == s.StudentID && existing.Status != model.SessionStatusCompleted {
			// Matches the partial unique index: insert skipped on conflict.
			return pgx.ErrNoRows
		}
	}
	s.ID = uuid.New()
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeStore) Finalize(_ context.Context, sessionID uuid.UUID, answers []model.Answer, timeLeft int, now time.Time) (*model.ExamSession, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, false, pgx.ErrNoRows
	}
	if s.Status == model.SessionStatusCompleted {
		return nil, false, nil
	}

	byQuestion := f.answers[sessionID]
	if byQuestion == nil {
		byQuestion = make(map[uuid.UUID]model.Answer)
		f.answers[sessionID] = byQuestion
	}
	for _, a := range answers {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		byQuestion[a.QuestionID] = a
	}

	total := 0.0
	for _, a := range byQuestion {
		total += a.MarksAwarded
	}

	s.Complete(now)
	s.TotalMarks = total
	s.TimeLeft = timeLeft
	cp := *s
	return &cp, true, nil
}

func (f *fakeStore) ListAnswers(_ context.Context, sessionID uuid.UUID) ([]model.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Answer, 0, len(f.answers[sessionID]))
	for _, a := range f.answers[sessionID] {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeStore) ListResults(_ context.Context, _ uuid.UUID) ([]model.SessionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.SessionResult(nil), f.results...), nil
}

func (f *fakeStore) Record(_ context.Context, v *model.Violation, limit, durationMinutes int, now time.Time) (*model.ExamSession, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[v.SessionID]
	if !ok {
		return nil, false, pgx.ErrNoRows
	}
	if s.Status != model.SessionStatusOngoing {
		return nil, false, nil
	}

	v.ID = uuid.New()
	v.CreatedAt = now
	f.violations = append(f.violations, *v)

	s.ViolationCount++
	if s.ViolationCount >= limit {
		s.Terminate(now)
	} else {
		s.RefreshTimeLeft(durationMinutes, now)
	}
	cp := *s
	return &cp, true, nil
}

func (f *fakeStore) List(_ context.Context, filter model.ViolationFilter, _ model.ViolationScope) ([]model.Violation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Violation, 0, len(f.violations))
	for _, v := range f.violations {
		if filter.StudentID != nil && v.StudentID != *filter.StudentID {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// seedSession inserts a session directly, bypassing Create's conflict check.
func (f *fakeStore) seedSession(s *model.ExamSession) *model.ExamSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	f.sessions[s.ID] = &cp
	return s
}

// fakeUsers is an in-memory UserStore.
type fakeUsers struct {
	byID map[int]*model.User
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[int]*model.User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) GetByID(_ context.Context, id int) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}
