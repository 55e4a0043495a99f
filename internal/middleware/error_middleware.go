package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
	"github.com/taskgrade/backend/internal/pkg/logger"
	"github.com/taskgrade/backend/internal/pkg/metrics"
	"github.com/taskgrade/backend/internal/pkg/observability"
)

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	var (
		status int
		code   dto.ErrorCode
	)
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		status, code = http.StatusBadRequest, dto.ErrorCodeValidationFailed
	case errors.Is(err, apperrors.ErrResourceNotFound):
		status, code = http.StatusNotFound, dto.ErrorCodeResourceNotFound
	case errors.Is(err, apperrors.ErrRoleMismatch):
		status, code = http.StatusForbidden, dto.ErrorCodeRoleMismatch
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials
	case errors.Is(err, apperrors.ErrConflict):
		status, code = http.StatusConflict, dto.ErrorCodeConflict
	default:
		// Store and other unexpected failures carry their message in details
		metrics.InternalErrors.Inc()
		observability.CaptureErr(err)
		logger.Error().Err(err).Str("method", c.Request.Method).Str("path", c.FullPath()).Msg("Internal server error")

		detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
			WithSeverity(dto.ErrorSeverityCritical).
			WithDetails(err.Error())
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
		return
	}

	detail := dto.NewErrorDetail(code, err.Error())
	var ce *apperrors.CustomError
	if errors.As(err, &ce) {
		if ce.Field != "" {
			detail.WithField(ce.Field)
		}
		if len(ce.Details) > 0 {
			detail.WithDetails(ce.Details)
		}
	}
	if status < http.StatusInternalServerError {
		detail.WithSeverity(dto.ErrorSeverityWarning)
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}

// HandleBindError answers a request whose body or query could not be parsed
func HandleBindError(c *gin.Context, err error) {
	logger.Debug().Err(err).Str("path", c.FullPath()).Msg("Invalid request payload")
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
}
