package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/temptedwithouta/eazy-career-backend/domain"
)

// RateLimit allows limit requests per client IP per window for one route
// group. Limiter failures let the request through.
func RateLimit(limiter domain.RateLimiter, group string, limit int, window time.Duration, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "rate_limit", "group", group)
	return func(c *gin.Context) {
		key := group + ":" + c.ClientIP()

		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Error("rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		if !allowed {
			secs := int(math.Ceil(retryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			logger.Warn("rate limited", "client_ip", c.ClientIP(), "retry_after_s", secs)
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
