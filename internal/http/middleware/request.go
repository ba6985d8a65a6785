package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/temptedwithouta/eazy-career-backend/domain"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags the request with an id, echoes it in the response and
// stores the client context for audit events.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Set(RequestIDKey, id)

		cc := &domain.ClientContext{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			RequestID: id,
		}
		c.Request = c.Request.WithContext(domain.WithClientContext(c.Request.Context(), cc))
		c.Next()
	}
}

// AccessLog writes one line per request once the handler chain returns.
func AccessLog(logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("module", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status_code", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(RequestIDKey),
		}
		switch {
		case status >= 500:
			logger.ErrorContext(c.Request.Context(), "http request completed", fields...)
		case status >= 400:
			logger.WarnContext(c.Request.Context(), "http request completed", fields...)
		default:
			logger.InfoContext(c.Request.Context(), "http request completed", fields...)
		}
	}
}
