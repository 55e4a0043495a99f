package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
)

// BodyLimit rejects requests whose declared body exceeds maxBytes and caps
// the readable body for the rest.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			abortTooLarge(c, maxBytes)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// HandleFormFileError answers a failed multipart file lookup. A body cut off
// by BodyLimit is a 413, anything else means the file field is missing.
func HandleFormFileError(c *gin.Context, field string, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		abortTooLarge(c, maxErr.Limit)
		return
	}
	HandleAPIError(c, apperrors.NewValidationError(field, field+" is required"))
}

func abortTooLarge(c *gin.Context, maxBytes int64) {
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Request body too large").
		WithDetails(map[string]int64{"maxBytes": maxBytes})
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(detail))
}
