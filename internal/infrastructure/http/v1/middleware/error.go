package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/pkg/logger"
)

// errorResponse is the wire shape for failed requests.
type errorResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Retryable bool           `json:"retryable,omitempty"`
}

// ErrorHandler converts errors attached via c.Error into JSON
// responses. Handlers never write error bodies themselves; this is the
// single place the error contract is rendered.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.HTTPStatus >= 500 {
				logger.Error(c.Request.Context(), "internal error", "error", err)
			}
			c.JSON(appErr.HTTPStatus, errorResponse{
				Code:      appErr.Code,
				Message:   appErr.Message,
				Details:   appErr.Details,
				Retryable: appErr.Retryable,
			})
			return
		}

		logger.Error(c.Request.Context(), "unhandled error", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{
			Code:    apperror.CodeInternal,
			Message: "Internal server error",
		})
	}
}

// Recovery converts panics into 500 responses with a log entry.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(c.Request.Context(), "panic recovered", "panic", r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
					Code:    apperror.CodeInternal,
					Message: "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
