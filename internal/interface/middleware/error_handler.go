package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vidtube-accounts/pkg/apperror"
	"github.com/oksasatya/vidtube-accounts/pkg/response"
)

// ErrorHandler renders the last error pushed with c.Error as an envelope.
// Untagged errors become 500 "Something went wrong"; 5xx are logged.
func ErrorHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		err := last.Err

		status := http.StatusInternalServerError
		message := "Something went wrong"
		var details any
		if ae, ok := apperror.As(err); ok {
			status = ae.Kind.Status()
			if ae.Message != "" {
				message = ae.Message
			}
			details = ae.Details
		}

		if status >= http.StatusInternalServerError && logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"method":     c.Request.Method,
				"path":       c.FullPath(),
			}).Error("request failed")
		}
		response.Error(c, status, message, details)
	}
}
