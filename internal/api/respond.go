package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/dealscope/comps-api/internal/errors"
)

// respondError maps application error codes onto HTTP statuses. Anything
// unrecognized surfaces as a 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeValidationError:
		status = http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		status = http.StatusForbidden
	case apperrors.ErrCodeConflict:
		status = http.StatusConflict
	case apperrors.ErrCodeDatabaseError, apperrors.ErrCodeInternalError:
		status = http.StatusInternalServerError
	case apperrors.ErrCodeCollaboratorUnavailable:
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{"error": appErr.Message, "code": appErr.Code})
}
