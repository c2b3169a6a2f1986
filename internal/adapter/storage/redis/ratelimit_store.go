package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RateLimitStore keeps fixed-window request counters for the status API.
type RateLimitStore struct {
	client *goredis.Client
	prefix string
	now    func() time.Time
}

// NewRateLimitStore creates a Redis-backed rate limit store.
func NewRateLimitStore(client *goredis.Client) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		prefix: "ratelimit:",
		now:    time.Now,
	}
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix seconds
}

// Allow counts one request for key in the current window. Windows are
// aligned to multiples of window since the epoch; window must be >= 1s.
func (s *RateLimitStore) Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error) {
	secs := int64(window / time.Second)
	if secs < 1 {
		return nil, fmt.Errorf("rate limit window %s is shorter than a second", window)
	}
	windowID := s.now().Unix() / secs
	redisKey := fmt.Sprintf("%s%s:%d", s.prefix, key, windowID)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis rate limit incr: %w", err)
	}
	count := incr.Val()

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitResult{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   (windowID + 1) * secs,
	}, nil
}
