package handlers

import (
	"log"
	"net/http"

	"polls-backend/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware 限流中间件, keyed by client IP. A nil limiter disables it.
func RateLimitMiddleware(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// a broken limiter backend must not take the site down
			log.Printf("rate limiter failed, letting request through: %v", err)
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
