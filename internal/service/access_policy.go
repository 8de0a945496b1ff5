package service

import "github.com/veritest/veritest-backend/internal/model"

// AccessPolicy centralizes role and ownership checks. Every engine
// operation re-derives its authorization here at call time; decisions are
// never cached across calls.
type AccessPolicy struct{}

// CanStartExam allows only students to start attempts.
func (AccessPolicy) CanStartExam(role model.Role) error {
	if role != model.RoleStudent {
		return ErrStudentOnly
	}
	return nil
}

// CanSubmit allows only the session's own student to submit.
func (AccessPolicy) CanSubmit(role model.Role, callerID int, session *model.ExamSession) error {
	if role != model.RoleStudent {
		return ErrStudentOnly
	}
	if session.StudentID != callerID {
		return ErrNotSessionOwner
	}
	return nil
}

// CanLogViolation allows the session's own student, or any teacher/admin.
func (AccessPolicy) CanLogViolation(role model.Role, callerID int, session *model.ExamSession) error {
	if role == model.RoleTeacher || role == model.RoleAdmin {
		return nil
	}
	if session.StudentID == callerID {
		return nil
	}
	return ErrNotSessionOwner
}

// CanViewResults allows admins, and teachers for their own exams only.
func (AccessPolicy) CanViewResults(role model.Role, callerID int, exam *model.Exam) error {
	switch role {
	case model.RoleAdmin:
		return nil
	case model.RoleTeacher:
		if exam.TeacherID != callerID {
			return ErrNotExamOwner
		}
		return nil
	}
	return ErrForbidden
}

// CanViewSession allows admins, the exam's teacher, and the session's student.
func (AccessPolicy) CanViewSession(role model.Role, callerID int, session *model.ExamSession, exam *model.Exam) error {
	switch role {
	case model.RoleAdmin:
		return nil
	case model.RoleTeacher:
		if exam.TeacherID != callerID {
			return ErrNotExamOwner
		}
		return nil
	case model.RoleStudent:
		if session.StudentID != callerID {
			return ErrNotSessionOwner
		}
		return nil
	}
	return ErrForbidden
}

// ViolationScopeFor returns the listing scope a caller is entitled to.
func (AccessPolicy) ViolationScopeFor(role model.Role, callerID int) model.ViolationScope {
	switch role {
	case model.RoleAdmin:
		return model.ViolationScope{}
	case model.RoleTeacher:
		id := callerID
		return model.ViolationScope{TeacherID: &id}
	default:
		id := callerID
		return model.ViolationScope{StudentID: &id}
	}
}
