package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/enqueta/backend/pkg/response"
)

// RateLimit returns a Redis-backed fixed-window rate limiter keyed by client IP.
// Redis failures fail open: limiting is protective, not load-bearing.
func RateLimit(rdb *redis.Client, logger *zap.Logger, prefix string, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := prefix + ":" + c.ClientIP()
		ctx := c.Request.Context()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limit check failed", zap.Error(err), zap.String("key", key))
			c.Next()
			return
		}
		if count == 1 {
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				logger.Warn("rate limit expire failed", zap.Error(err), zap.String("key", key))
			}
		}
		if count > int64(max) {
			response.TooManyRequests(c, "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
