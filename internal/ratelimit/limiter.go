package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inkpress/blog-backend/pkg/util"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultMaxAttempts is the number of failed logins tolerated per key.
	DefaultMaxAttempts = 5
	// DefaultDecay is how long a key stays locked after its latest failure.
	DefaultDecay = 300 * time.Second

	keyPrefix = "login_attempts"
)

// Limiter counts failed attempts per key in Redis so that every server
// instance observes the same counters.
type Limiter struct {
	client *redis.Client
	prefix string
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client, prefix: keyPrefix}
}

// LoginKey derives the throttle key for a login attempt.
func LoginKey(email, ip string) string {
	return util.Transliterate(util.NormalizeEmail(email)) + "|" + ip
}

func (l *Limiter) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", l.prefix, key)
}

// Attempts returns the current failure count for key.
func (l *Limiter) Attempts(ctx context.Context, key string) (int64, error) {
	n, err := l.client.Get(ctx, l.redisKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read attempts: %w", err)
	}
	return n, nil
}

// TooManyAttempts reports whether key has reached maxAttempts within its window.
func (l *Limiter) TooManyAttempts(ctx context.Context, key string, maxAttempts int) (bool, error) {
	n, err := l.Attempts(ctx, key)
	if err != nil {
		return false, err
	}
	return n >= int64(maxAttempts), nil
}

// Hit records one failure and restarts the decay window.
func (l *Limiter) Hit(ctx context.Context, key string, decay time.Duration) (int64, error) {
	rk := l.redisKey(key)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, rk)
		pipe.Expire(ctx, rk, decay)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("record attempt: %w", err)
	}
	return incr.Val(), nil
}

// AvailableIn returns how long until key unlocks. Zero means it is not locked.
func (l *Limiter) AvailableIn(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := l.client.TTL(ctx, l.redisKey(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("read lockout: %w", err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Clear forgets all failures for key.
func (l *Limiter) Clear(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("clear attempts: %w", err)
	}
	return nil
}

// RetrySeconds rounds a lockout up to whole seconds, never below one.
func RetrySeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
