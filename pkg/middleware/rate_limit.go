package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"mediarelay/internal/service"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware creates a middleware for rate limiting. It reports the
// window state through the standard RateLimit-* headers.
func RateLimitMiddleware(rateLimitService *service.RateLimitService) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := rateLimitService.Allow(c.ClientIP())

		c.Header("RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		reset := secondsUntil(decision.ResetAt)
		if !decision.ResetAt.IsZero() {
			c.Header("RateLimit-Reset", strconv.Itoa(reset))
		}

		if !decision.Allowed {
			c.Header("Retry-After", strconv.Itoa(reset))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please try again later.",
				"code":    http.StatusTooManyRequests,
			})
			return
		}

		c.Next()
	}
}

func secondsUntil(t time.Time) int {
	if t.IsZero() {
		return 0
	}
	secs := int(math.Ceil(time.Until(t).Seconds()))
	if secs < 0 {
		return 0
	}
	return secs
}
