package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window per-IP limiter backed by Redis INCR/EXPIRE.
// A nil limiter (Redis not configured or unreachable) fails open so the API
// stays available without Redis.
type RateLimiter struct {
	client *redis.Client
}

// NewRateLimiter connects to Redis and returns a limiter, or nil when addr is
// empty or the ping fails.
func NewRateLimiter(addr, password string, db int) *RateLimiter {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}

	return &RateLimiter{client: client}
}

// Limit allows maxRequests per window per client IP.
// key format: rl:<window_seconds>:<identifier>
func (rl *RateLimiter) Limit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.client == nil {
			c.Next()
			return
		}

		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		ctx := c.Request.Context()

		val, err := rl.client.Incr(ctx, key).Result()
		if err != nil {
			// fail-open on Redis errors but flag it for debugging
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			rl.client.Expire(ctx, key, window)
		}

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}
