package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuard rejects a second identical submission while the first one is
// still inside its TTL window.
type RedisGuard struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func ConnectRedis(ctx context.Context, addr string) (redis.UniversalClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  time.Second,
		ReadTimeout:  400 * time.Millisecond,
		WriteTimeout: 400 * time.Millisecond,
		PoolSize:     20,
		MaxRetries:   1,
		OnConnect: func(ctx context.Context, cn *redis.Conn) error {
			_ = cn.ClientSetName(ctx, "paydesk").Err()
			return nil
		},
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

func NewRedisGuard(rdb redis.UniversalClient, ttl time.Duration) *RedisGuard {
	return &RedisGuard{rdb: rdb, ttl: ttl}
}

func guardKey(key string) string { return "paydesk:submit:{" + key + "}" }

// Acquire returns false when key is already held.
func (g *RedisGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, guardKey(key), time.Now().Unix(), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire submit guard: %w", err)
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, key string) error {
	if err := g.rdb.Del(ctx, guardKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to release submit guard: %w", err)
	}
	return nil
}

func (g *RedisGuard) Ping(ctx context.Context) error {
	return g.rdb.Ping(ctx).Err()
}

// RedisLimiter counts requests per key in fixed windows. The counters live in
// redis so every replica shares them.
type RedisLimiter struct {
	rdb    redis.UniversalClient
	limit  int64
	window time.Duration
}

func NewRedisLimiter(rdb redis.UniversalClient, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: int64(limit), window: window}
}

func limitKey(key string) string { return "paydesk:ratelimit:{" + key + "}" }

// Allow counts one request for key. When the limit is exceeded it returns
// false and the time left until the window resets.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := limitKey(key)

	count, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to count request: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("failed to start rate window: %w", err)
		}
	}
	if count <= l.limit {
		return true, 0, nil
	}

	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err != nil || ttl < 0 {
		// counter without an expiry would block the key forever
		_ = l.rdb.Expire(ctx, k, l.window).Err()
		ttl = l.window
	}
	return false, ttl, nil
}
