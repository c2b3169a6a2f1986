package middleware

import (
	"context"
	"strconv"
	"time"

	redisStore "chain-connector/internal/adapter/storage/redis"
	"chain-connector/pkg/apperror"
	"chain-connector/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// Limiter counts requests per key. *redis.RateLimitStore implements it.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*redisStore.RateLimitResult, error)
}

// RateLimiter limits each client IP to rule within group. Counter failures
// let the request through.
func RateLimiter(limiter Limiter, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + group

		result, err := limiter.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request (degraded mode)")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			retryAfter := result.ResetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}

		c.Next()
	}
}
