package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter shared by every instance that points
// at the same Redis.
type RedisLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(ctx context.Context, redisURL string, limit int, window time.Duration) (*RedisLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisLimiter{
		redis:  client,
		limit:  limit,
		window: window,
		now:    time.Now,
	}, nil
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	seconds := int64(rl.window / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	now := rl.now().Unix()
	bucket := now / seconds
	windowKey := fmt.Sprintf("ratelimit:%s:%d", key, bucket)

	pipe := rl.redis.Pipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	count := int(incr.Val())
	return Result{
		Allowed:   count <= rl.limit,
		Limit:     rl.limit,
		Remaining: remaining(rl.limit, count),
		Reset:     time.Unix((bucket+1)*seconds, 0),
	}, nil
}

func (rl *RedisLimiter) Close() error {
	return rl.redis.Close()
}
