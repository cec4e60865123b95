package middleware

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "budgetcontrol/internal/errors"
	"budgetcontrol/internal/logger"
	"budgetcontrol/internal/ratelimit"
)

// RateLimit throttles requests per route and client IP within scope. Limiter failures
// let the request through.
func RateLimit(limiter ratelimit.Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := limiter.Allow(c.Request.Context(), scope+":"+c.FullPath()+":"+c.ClientIP())
		if err != nil {
			logger.Get().Warnw("rate limiter unavailable", "scope", scope, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			seconds := int(math.Ceil(res.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			abortWithError(c, apperrors.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
