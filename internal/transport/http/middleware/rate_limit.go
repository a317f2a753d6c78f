package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/edvana/school-platform-auth/internal/infra/logger"
)

// RateLimiter applies a fixed-window per-IP limit backed by Redis INCR.
type RateLimiter struct {
	client *redis.Client
	window time.Duration
	log    *zap.Logger
}

// NewRateLimiter constructs a limiter over the shared Redis client.
func NewRateLimiter(client *redis.Client, window time.Duration, log *zap.Logger) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, window: window, log: log}
}

// Limit caps requests per client IP within the window for the named scope.
// Redis failures fail open: authentication must stay available when the
// limiter's backend is not.
func (l *RateLimiter) Limit(scope string, max int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		window := time.Now().Unix() / int64(l.window.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%s:%d", scope, c.ClientIP(), window)

		count, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			l.log.Warn("rate limiter unavailable, failing open",
				zap.Error(err),
				zap.String("scope", scope),
			)
			c.Next()
			return
		}

		if count == 1 {
			if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
				l.log.Warn("arm rate limit window failed", zap.Error(err), zap.String("scope", scope))
			}
		}

		if count > int64(max) {
			logger.WithContext(ctx).Warn("rate limit exceeded",
				zap.String("scope", scope),
				zap.String("client_ip", logger.MaskIP(c.ClientIP())),
			)
			c.Header("Retry-After", fmt.Sprintf("%d", int(l.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		c.Next()
	}
}
