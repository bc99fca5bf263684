package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/ratelimit"
)

// RateLimitMiddleware charges one request per client IP against the limiter
// under the given scope.
func RateLimitMiddleware(rl ratelimit.Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := rl.Allow(c.Request.Context(), scope+":"+c.ClientIP())
		if err != nil {
			log.Printf("❌ rate limit check failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", res.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", res.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", res.Reset.Unix()))

		if !res.Allowed {
			retryAfter := time.Until(res.Reset).Seconds()
			if retryAfter < 0 {
				retryAfter = 0
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

// AuthRateLimit guards the credential endpoints.
func AuthRateLimit(rl ratelimit.Limiter) gin.HandlerFunc {
	return RateLimitMiddleware(rl, "auth")
}
