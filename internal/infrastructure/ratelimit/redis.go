package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "ratelimit:"

// redisLimiter implements the sliding window on a redis sorted set so the
// window is shared across instances.
type redisLimiter struct {
	client *redis.Client
	cfg    Config
	logger *zap.Logger
}

// NewRedisLimiter creates a redis-backed sliding-window limiter.
func NewRedisLimiter(client *redis.Client, cfg Config, logger *zap.Logger) Limiter {
	return &redisLimiter{client: client, cfg: cfg, logger: logger}
}

func (l *redisLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-l.cfg.Window)
	key := redisKeyPrefix + identifier

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)

	member := fmt.Sprintf("%d-%d", now.UnixNano(), now.Nanosecond()%1000)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: member,
	})
	pipe.Expire(ctx, key, l.cfg.Window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Error("rate limiter pipeline failed",
			zap.String("identifier", identifier), zap.Error(err))
		return false, fmt.Errorf("rate limiter pipeline failed: %w", err)
	}

	if countCmd.Val() >= int64(l.cfg.Limit) {
		// Revert the optimistic add; a denied request must not consume quota.
		l.client.ZRem(ctx, key, member)
		l.logger.Debug("rate limit exceeded",
			zap.String("identifier", identifier),
			zap.Int64("count", countCmd.Val()),
			zap.Int("limit", l.cfg.Limit))
		return false, nil
	}

	return true, nil
}

func (l *redisLimiter) Count(ctx context.Context, identifier string) (int, error) {
	now := time.Now()
	windowStart := now.Add(-l.cfg.Window)
	key := redisKeyPrefix + identifier

	if err := l.client.ZRemRangeByScore(ctx, key, "-inf",
		strconv.FormatInt(windowStart.UnixNano(), 10)).Err(); err != nil {
		return 0, fmt.Errorf("rate limiter cleanup failed: %w", err)
	}

	count, err := l.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("rate limiter count failed: %w", err)
	}
	return int(count), nil
}
