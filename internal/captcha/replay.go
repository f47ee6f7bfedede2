package captcha

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisReplayGuard tracks used tokens in Redis with a TTL matching the
// upstream token validity window. Redis failures fail open.
type RedisReplayGuard struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisReplayGuard creates a replay guard.
func NewRedisReplayGuard(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisReplayGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisReplayGuard{client: client, ttl: ttl, logger: logger}
}

// Seen marks the token as used and reports whether it had been used before.
func (g *RedisReplayGuard) Seen(ctx context.Context, token string) bool {
	sum := sha256.Sum256([]byte(token))
	key := "captcha:token:" + hex.EncodeToString(sum[:])
	set, err := g.client.SetNX(ctx, key, 1, g.ttl).Result()
	if err != nil {
		g.logger.Warn("captcha replay check failed", zap.Error(err))
		return false
	}
	return !set
}
