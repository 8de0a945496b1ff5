package model

import (
	"testing"
	"time"
)

func TestRefreshTimeLeft(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		minutes int
		want    int
	}{
		{"at start", 0, 60, 3600},
		{"halfway", 30 * time.Minute, 60, 1800},
		{"exactly expired", 60 * time.Minute, 60, 0},
		{"past expiry clamps at zero", 90 * time.Minute, 60, 0},
		{"clock skew before start clamps elapsed", -5 * time.Minute, 60, 3600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ExamSession{StartedAt: start}
			s.RefreshTimeLeft(tt.minutes, start.Add(tt.elapsed))
			if s.TimeLeft != tt.want {
				t.Errorf("TimeLeft = %d, want %d", s.TimeLeft, tt.want)
			}
		})
	}
}

func TestSessionTransitionsStampEndedAt(t *testing.T) {
	now := time.Now()

	s := ExamSession{Status: SessionStatusOngoing}
	s.Complete(now)
	if s.Status != SessionStatusCompleted || s.EndedAt == nil || !s.EndedAt.Equal(now) {
		t.Errorf("Complete() left session in %s with ended_at %v", s.Status, s.EndedAt)
	}

	s = ExamSession{Status: SessionStatusOngoing}
	s.Terminate(now)
	if s.Status != SessionStatusTerminated || s.EndedAt == nil || !s.EndedAt.Equal(now) {
		t.Errorf("Terminate() left session in %s with ended_at %v", s.Status, s.EndedAt)
	}
}

func TestSessionOpen(t *testing.T) {
	tests := []struct {
		status SessionStatus
		want   bool
	}{
		{SessionStatusOngoing, true},
		{SessionStatusTerminated, true},
		{SessionStatusCompleted, false},
	}

	for _, tt := range tests {
		s := ExamSession{Status: tt.status}
		if s.Open() != tt.want {
			t.Errorf("Open() for %s = %v, want %v", tt.status, s.Open(), tt.want)
		}
	}
}

func TestEffectiveViolationLimit(t *testing.T) {
	three := 3
	zero := 0

	tests := []struct {
		name  string
		limit *int
		want  int
	}{
		{"per-exam limit wins", &three, 3},
		{"nil falls back to default", nil, 5},
		{"non-positive falls back to default", &zero, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Exam{ViolationLimit: tt.limit}
			if got := e.EffectiveViolationLimit(5); got != tt.want {
				t.Errorf("EffectiveViolationLimit(5) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestViolationTypeValid(t *testing.T) {
	if !ViolationTabSwitch.Valid() {
		t.Error("TAB_SWITCH should be valid")
	}
	if !ViolationOther.Valid() {
		t.Error("OTHER should be valid")
	}
	if ViolationType("SNEEZED").Valid() {
		t.Error("unknown type should be invalid")
	}
}
