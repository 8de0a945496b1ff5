package service

import (
	"errors"
	"testing"

	"github.com/veritest/veritest-backend/internal/model"
)

func TestAccessPolicyCanStartExam(t *testing.T) {
	var policy AccessPolicy

	if err := policy.CanStartExam(model.RoleStudent); err != nil {
		t.Errorf("student should be allowed to start: %v", err)
	}
	for _, role := range []model.Role{model.RoleTeacher, model.RoleAdmin} {
		if err := policy.CanStartExam(role); !errors.Is(err, ErrStudentOnly) {
			t.Errorf("role %s: got %v, want ErrStudentOnly", role, err)
		}
	}
}

func TestAccessPolicyCanSubmit(t *testing.T) {
	var policy AccessPolicy
	session := &model.ExamSession{StudentID: 7}

	tests := []struct {
		name     string
		role     model.Role
		callerID int
		wantErr  error
	}{
		{"owner student", model.RoleStudent, 7, nil},
		{"other student", model.RoleStudent, 8, ErrNotSessionOwner},
		{"teacher", model.RoleTeacher, 7, ErrStudentOnly},
		{"admin", model.RoleAdmin, 7, ErrStudentOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.CanSubmit(tt.role, tt.callerID, session)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccessPolicyCanLogViolation(t *testing.T) {
	var policy AccessPolicy
	session := &model.ExamSession{StudentID: 7}

	tests := []struct {
		name     string
		role     model.Role
		callerID int
		wantErr  error
	}{
		{"own student", model.RoleStudent, 7, nil},
		{"other student", model.RoleStudent, 8, ErrNotSessionOwner},
		{"any teacher", model.RoleTeacher, 99, nil},
		{"any admin", model.RoleAdmin, 99, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.CanLogViolation(tt.role, tt.callerID, session)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccessPolicyCanViewResults(t *testing.T) {
	var policy AccessPolicy
	exam := &model.Exam{TeacherID: 3}

	tests := []struct {
		name     string
		role     model.Role
		callerID int
		wantErr  error
	}{
		{"admin", model.RoleAdmin, 1, nil},
		{"owning teacher", model.RoleTeacher, 3, nil},
		{"other teacher", model.RoleTeacher, 4, ErrNotExamOwner},
		{"student", model.RoleStudent, 3, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.CanViewResults(tt.role, tt.callerID, exam)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccessPolicyCanViewSession(t *testing.T) {
	var policy AccessPolicy
	exam := &model.Exam{TeacherID: 3}
	session := &model.ExamSession{StudentID: 7}

	tests := []struct {
		name     string
		role     model.Role
		callerID int
		wantErr  error
	}{
		{"admin", model.RoleAdmin, 1, nil},
		{"owning teacher", model.RoleTeacher, 3, nil},
		{"other teacher", model.RoleTeacher, 4, ErrNotExamOwner},
		{"own student", model.RoleStudent, 7, nil},
		{"other student", model.RoleStudent, 8, ErrNotSessionOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.CanViewSession(tt.role, tt.callerID, session, exam)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestViolationScopeFor(t *testing.T) {
	var policy AccessPolicy

	admin := policy.ViolationScopeFor(model.RoleAdmin, 1)
	if admin.TeacherID != nil || admin.StudentID != nil {
		t.Errorf("admin scope should be unrestricted, got %+v", admin)
	}

	teacher := policy.ViolationScopeFor(model.RoleTeacher, 3)
	if teacher.TeacherID == nil || *teacher.TeacherID != 3 || teacher.StudentID != nil {
		t.Errorf("teacher scope should restrict to own exams, got %+v", teacher)
	}

	student := policy.ViolationScopeFor(model.RoleStudent, 7)
	if student.StudentID == nil || *student.StudentID != 7 || student.TeacherID != nil {
		t.Errorf("student scope should restrict to own violations, got %+v", student)
	}
}
