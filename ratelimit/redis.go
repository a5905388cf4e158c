package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed window limiter built on INCR + EXPIRE
type RedisLimiter struct {
	Client *redis.Client
	Prefix string
	Max    int64
	Window time.Duration
	Now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}

	if window <= 0 {
		window = DefaultWindow
	}

	return &RedisLimiter{
		Client: client,
		Prefix: prefix,
		Max:    int64(max),
		Window: window,
		Now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.Now().UTC()
	winStart := now.Truncate(l.Window)
	winEnd := winStart.Add(l.Window)
	redisKey := l.key(key, winStart)

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireAt(ctx, redisKey, winEnd)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("failed to increment rate counter, %w", err)
	}

	return result(incr.Val(), l.Max, winStart, winEnd, now), nil
}

// Release decrements the counter of the window res was counted in
func (l *RedisLimiter) Release(ctx context.Context, key string, res Result) error {
	redisKey := l.key(key, res.WindowStart)

	n, err := l.Client.Decr(ctx, redisKey).Result()
	if err != nil {
		return fmt.Errorf("failed to release rate counter, %w", err)
	}

	// The window ended in between, don't leave a key without expiry behind
	if n <= 0 {
		if err := l.Client.Del(ctx, redisKey).Err(); err != nil {
			return fmt.Errorf("failed to release rate counter, %w", err)
		}
	}

	return nil
}

func (l *RedisLimiter) key(key string, winStart time.Time) string {
	return fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())
}
