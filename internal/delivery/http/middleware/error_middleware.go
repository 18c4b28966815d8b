package middleware

import (
	"log/slog"
	"net/http"

	"go-recruiter-backend/internal/delivery/http/response"
	"go-recruiter-backend/internal/domain"
	"go-recruiter-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

func ErrorHandler(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if appErr, ok := apperror.As(err); ok {
			if appErr.Code >= http.StatusInternalServerError {
				log.Error("request failed",
					"request_id", c.GetString(string(domain.KeyRequestID)),
					"path", c.FullPath(),
					"status", appErr.Code,
					"error", appErr,
				)
			}
			if appErr.Code == http.StatusInternalServerError {
				response.Error(c, appErr.Code, "An unexpected error occurred. Please try again later.", nil)
				return
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		// Never expose internal error details to clients
		log.Error("unhandled request error",
			"request_id", c.GetString(string(domain.KeyRequestID)),
			"path", c.FullPath(),
			"error", err,
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
