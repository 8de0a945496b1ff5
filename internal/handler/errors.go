package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/veritest/veritest-backend/internal/response"
	"github.com/veritest/veritest-backend/internal/service"
)

// failDomain translates engine errors into HTTP responses. Unrecognized
// errors are infrastructure failures and map to 500.
func failDomain(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrWrongExamPassword):
		response.Fail(c, http.StatusUnauthorized, response.ErrWrongExamPassword)
	case errors.Is(err, service.ErrStudentOnly):
		response.Fail(c, http.StatusForbidden, response.ErrStudentOnly)
	case errors.Is(err, service.ErrNotSessionOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotSessionOwner)
	case errors.Is(err, service.ErrNotExamOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotExamOwner)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrAlreadyCompleted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyCompleted)
	case errors.Is(err, service.ErrSessionNotOngoing):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotOngoing)
	case errors.Is(err, service.ErrInvalidViolationType):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"violation_type": "unknown violation type"})
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
