package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/veritest/veritest-backend/internal/config"
	"github.com/veritest/veritest-backend/internal/middleware"
	"github.com/veritest/veritest-backend/internal/model"
	"github.com/veritest/veritest-backend/internal/response"
	"github.com/veritest/veritest-backend/internal/service"
	"github.com/veritest/veritest-backend/internal/validator"
)

// SessionHandler handles the exam attempt lifecycle endpoints.
type SessionHandler struct {
	sessionService *service.SessionService
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService, rdb *redis.Client, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		rdb:            rdb,
		log:            log.With().Str("component", "session_handler").Logger(),
	}
}

// StartExam godoc
// POST /api/v1/exams/:exam_id/start
// Starts (or resumes) the caller's attempt. Idempotent over an open session.
func (h *SessionHandler) StartExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.StartExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), claims.UserID, claims.Role, examID, req.Password)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// SubmitExam godoc
// POST /api/v1/sessions/:session_id/submit
// Scores the submitted answers and completes the session. Allowed from
// ONGOING and TERMINATED, never from COMPLETED.
func (h *SessionHandler) SubmitExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.Submit(c.Request.Context(), claims.UserID, claims.Role, sessionID, req.Answers)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// GetSession godoc
// GET /api/v1/sessions/:session_id
func (h *SessionHandler) GetSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, answers, err := h.sessionService.Get(c.Request.Context(), claims.UserID, claims.Role, sessionID)
	if err != nil {
		failDomain(c, err)
		return
	}

	if answers == nil {
		answers = []model.Answer{}
	}
	response.Success(c, http.StatusOK, gin.H{"session": session, "answers": answers})
}

// GetExamResults godoc
// GET /api/v1/exams/:exam_id/results
// Teacher/admin only; lists COMPLETED sessions with scores.
func (h *SessionHandler) GetExamResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	results, err := h.sessionService.Results(c.Request.Context(), claims.UserID, claims.Role, examID)
	if err != nil {
		failDomain(c, err)
		return
	}

	if results == nil {
		results = []model.SessionResult{}
	}
	response.Success(c, http.StatusOK, gin.H{
		"exam_id":        examID,
		"total_students": len(results),
		"results":        results,
	})
}

// draftPayload is the queue entry consumed by the autosave worker.
type draftPayload struct {
	SessionID   string `json:"session_id"`
	StudentID   int    `json:"student_id"`
	QuestionID  string `json:"question_id"`
	ChoiceIndex *int   `json:"choice_index"`
	Text        string `json:"text"`
}

// SaveDraft godoc
// POST /api/v1/sessions/:session_id/draft
// Queues an in-progress answer for background persistence. Drafts are
// informational and never scored.
func (h *SessionHandler) SaveDraft(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.DraftAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	// Ownership check rides on the session view policy.
	session, _, err := h.sessionService.Get(c.Request.Context(), claims.UserID, claims.Role, sessionID)
	if err != nil {
		failDomain(c, err)
		return
	}

	if err := h.enqueueDraft(c.Request.Context(), &draftPayload{
		SessionID:   session.ID.String(),
		StudentID:   session.StudentID,
		QuestionID:  req.QuestionID.String(),
		ChoiceIndex: req.ChoiceIndex,
		Text:        req.Text,
	}); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue draft")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"queued": true})
}

func (h *SessionHandler) enqueueDraft(ctx context.Context, p *draftPayload) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return h.rdb.RPush(ctx, config.WorkerKey.PersistDraftsQueue, raw).Err()
}
