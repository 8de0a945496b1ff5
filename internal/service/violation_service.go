package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/veritest/veritest-backend/internal/config"
	"github.com/veritest/veritest-backend/internal/model"
)

// ViolationService records integrity events against ongoing sessions and
// enforces the auto-termination threshold.
type ViolationService struct {
	violations ViolationStore
	sessions   SessionStore
	catalog    ExamCatalog
	policy     AccessPolicy
	// defaultLimit applies when an exam configures no violation limit.
	defaultLimit int
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewViolationService creates a new ViolationService. rdb may be nil in
// tests; monitor publishing is best-effort.
func NewViolationService(violations ViolationStore, sessions SessionStore, catalog ExamCatalog, defaultLimit int, rdb *redis.Client, log zerolog.Logger) *ViolationService {
	return &ViolationService{
		violations:   violations,
		sessions:     sessions,
		catalog:      catalog,
		defaultLimit: defaultLimit,
		rdb:          rdb,
		log:          log.With().Str("component", "violation_service").Logger(),
	}
}

// monitorEvent is the payload published to the exam's monitor channel
// after a violation is committed.
type monitorEvent struct {
	Event          string `json:"event"`
	SessionID      string `json:"session_id"`
	StudentID      int    `json:"student_id"`
	Type           string `json:"type"`
	ViolationCount int    `json:"violation_count"`
	Terminated     bool   `json:"terminated"`
}

// Log appends a violation to an ONGOING session and evaluates the
// termination threshold. The append, the counter increment and the
// threshold check run atomically under the session row lock, so two
// concurrent reports always observe strictly increasing counts and
// termination fires exactly once. Accepted violations are durable; a
// storage failure aborts without a partial increment.
func (s *ViolationService) Log(ctx context.Context, callerID int, role model.Role, req *model.LogViolationRequest) (*model.ViolationLogResult, error) {
	vtype := model.ViolationType(req.Type)
	if !vtype.Valid() {
		return nil, ErrInvalidViolationType
	}

	session, err := s.sessions.GetByID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if err := s.policy.CanLogViolation(role, callerID, session); err != nil {
		return nil, err
	}

	// Strict precondition: unlike submit, a terminated session accepts no
	// further violations.
	if session.Status != model.SessionStatusOngoing {
		return nil, ErrSessionNotOngoing
	}

	exam, err := s.catalog.GetExam(ctx, session.ExamID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	limit := exam.EffectiveViolationLimit(s.defaultLimit)

	violation := &model.Violation{
		SessionID:  session.ID,
		StudentID:  session.StudentID,
		Type:       vtype,
		OccurredAt: req.Timestamp,
		Details:    req.Details,
	}

	updated, ok, err := s.violations.Record(ctx, violation, limit, exam.DurationMinutes, time.Now())
	if err != nil {
		return nil, fmt.Errorf("record violation: %w", err)
	}
	if !ok {
		// Lost a race: another report terminated the session first.
		return nil, ErrSessionNotOngoing
	}

	terminated := updated.Status == model.SessionStatusTerminated
	if terminated {
		s.log.Info().
			Str("session_id", updated.ID.String()).
			Int("violation_count", updated.ViolationCount).
			Int("limit", limit).
			Msg("Session terminated by violation limit")
	}

	s.publishMonitorEvent(ctx, exam.ID.String(), updated, vtype)

	return &model.ViolationLogResult{
		SessionID:      updated.ID,
		ViolationID:    violation.ID,
		ViolationCount: updated.ViolationCount,
		Terminated:     terminated,
		TimeLeft:       updated.TimeLeft,
		Status:         updated.Status,
	}, nil
}

// Report lists violations visible to the caller, newest first.
func (s *ViolationService) Report(ctx context.Context, callerID int, role model.Role, filter model.ViolationFilter) ([]model.Violation, error) {
	scope := s.policy.ViolationScopeFor(role, callerID)
	violations, err := s.violations.List(ctx, filter, scope)
	if err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}
	return violations, nil
}

func (s *ViolationService) publishMonitorEvent(ctx context.Context, examID string, session *model.ExamSession, vtype model.ViolationType) {
	if s.rdb == nil {
		return
	}
	payload, _ := json.Marshal(monitorEvent{
		Event:          "violation",
		SessionID:      session.ID.String(),
		StudentID:      session.StudentID,
		Type:           string(vtype),
		ViolationCount: session.ViolationCount,
		Terminated:     session.Status == model.SessionStatusTerminated,
	})
	channel := config.CacheKey.ExamMonitorChannel(examID)
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("channel", channel).Msg("Failed to publish monitor event")
	}
}
