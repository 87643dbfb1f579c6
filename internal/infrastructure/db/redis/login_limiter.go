package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts  = 5
	defaultWindow       = 15 * time.Minute
	defaultLockDuration = 10 * time.Minute
)

// LimiterConfig tunes LoginLimiter. Zero values fall back to defaults.
type LimiterConfig struct {
	MaxAttempts  int
	Window       time.Duration
	LockDuration time.Duration
}

// LoginLimiter counts failed logins per key in Redis and locks the key once
// MaxAttempts failures land inside Window. Callers choose the key; the auth
// service uses username plus client address.
//
//	login:fail:<key>  failure counter, expires after Window
//	login:lock:<key>  lock flag, expires after LockDuration
type LoginLimiter struct {
	client *redis.Client
	cfg    LimiterConfig
}

// NewLoginLimiter creates a LoginLimiter wrapping the given Redis client.
func NewLoginLimiter(client *redis.Client, cfg LimiterConfig) *LoginLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = defaultWindow
	}
	if cfg.LockDuration <= 0 {
		cfg.LockDuration = defaultLockDuration
	}
	return &LoginLimiter{client: client, cfg: cfg}
}

// Blocked returns the remaining lock time for key, or zero when unlocked.
func (l *LoginLimiter) Blocked(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := l.client.TTL(ctx, lockKey(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("login limiter ttl: %w", err)
	}
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

// RecordFailure counts one failed attempt and sets the lock when the limit
// is reached. The counter and its TTL are written in one transaction so a
// counter never outlives Window; each failure restarts the window.
func (l *LoginLimiter) RecordFailure(ctx context.Context, key string) error {
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, failKey(key))
		pipe.Expire(ctx, failKey(key), l.cfg.Window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("login limiter record: %w", err)
	}
	if incr.Val() < int64(l.cfg.MaxAttempts) {
		return nil
	}

	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, lockKey(key), "1", l.cfg.LockDuration)
		pipe.Del(ctx, failKey(key))
		return nil
	})
	if err != nil {
		return fmt.Errorf("login limiter lock: %w", err)
	}
	return nil
}

// Reset clears the failure counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, failKey(key)).Err()
}

func failKey(key string) string { return "login:fail:" + key }
func lockKey(key string) string { return "login:lock:" + key }
