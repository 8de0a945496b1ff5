package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/veritest/veritest-backend/internal/middleware"
	"github.com/veritest/veritest-backend/internal/model"
	"github.com/veritest/veritest-backend/internal/response"
	"github.com/veritest/veritest-backend/internal/service"
	"github.com/veritest/veritest-backend/internal/validator"
)

// ViolationHandler handles violation logging and reporting endpoints.
type ViolationHandler struct {
	violationService *service.ViolationService
}

// NewViolationHandler creates a new ViolationHandler.
func NewViolationHandler(violationService *service.ViolationService) *ViolationHandler {
	return &ViolationHandler{violationService: violationService}
}

// LogViolation godoc
// POST /api/v1/violations/log
// Records an integrity event against an ONGOING session. May terminate
// the session when the violation limit is reached.
func (h *ViolationHandler) LogViolation(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.LogViolationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.violationService.Log(c.Request.Context(), claims.UserID, claims.Role, &req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// Report godoc
// GET /api/v1/violations/report
// Lists violations visible to the caller with optional filters:
// start, end (RFC3339), exam, student.
func (h *ViolationHandler) Report(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	filter, ok := parseViolationFilter(c)
	if !ok {
		return
	}

	violations, err := h.violationService.Report(c.Request.Context(), claims.UserID, claims.Role, filter)
	if err != nil {
		failDomain(c, err)
		return
	}

	if violations == nil {
		violations = []model.Violation{}
	}
	response.Success(c, http.StatusOK, gin.H{"violations": violations})
}

func parseViolationFilter(c *gin.Context) (model.ViolationFilter, bool) {
	var filter model.ViolationFilter

	if raw := c.Query("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"start": "must be an RFC3339 timestamp"})
			return filter, false
		}
		filter.Start = &t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"end": "must be an RFC3339 timestamp"})
			return filter, false
		}
		filter.End = &t
	}
	if raw := c.Query("exam"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return filter, false
		}
		filter.ExamID = &id
	}
	if raw := c.Query("student"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return filter, false
		}
		filter.StudentID = &id
	}

	return filter, true
}
