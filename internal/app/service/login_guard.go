package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/inkpress/blog-backend/internal/metrics"
	"github.com/inkpress/blog-backend/internal/ratelimit"
	"github.com/inkpress/blog-backend/pkg/logger"
)

// TooManyAttemptsError is returned while a login key is locked out.
type TooManyAttemptsError struct {
	RetryAfter time.Duration
}

func (e *TooManyAttemptsError) Error() string {
	return fmt.Sprintf("too many login attempts, retry in %s", e.RetryAfter)
}

// Seconds is the lockout rounded up to whole seconds.
func (e *TooManyAttemptsError) Seconds() int {
	return ratelimit.RetrySeconds(e.RetryAfter)
}

// AttemptLimiter counts failed attempts per key.
type AttemptLimiter interface {
	TooManyAttempts(ctx context.Context, key string, maxAttempts int) (bool, error)
	Hit(ctx context.Context, key string, decay time.Duration) (int64, error)
	AvailableIn(ctx context.Context, key string) (time.Duration, error)
	Clear(ctx context.Context, key string) error
}

// LoginGuard wraps credential verification with the failed-attempt limiter.
// Both the session and the token surfaces log in through it.
type LoginGuard struct {
	auth        AuthService
	limiter     AttemptLimiter
	maxAttempts int
	decay       time.Duration
	metrics     *metrics.Metrics
}

func NewLoginGuard(auth AuthService, limiter AttemptLimiter, maxAttempts int, decay time.Duration, m *metrics.Metrics) *LoginGuard {
	return &LoginGuard{
		auth:        auth,
		limiter:     limiter,
		maxAttempts: maxAttempts,
		decay:       decay,
		metrics:     m,
	}
}

// Attempt verifies the credentials unless the (email, ip) key is locked.
// Failures count towards the lockout; success clears the counter and
// records the user's activity.
func (g *LoginGuard) Attempt(ctx context.Context, surface, email, password, ip string) (*model.User, error) {
	key := ratelimit.LoginKey(email, ip)

	locked, err := g.limiter.TooManyAttempts(ctx, key, g.maxAttempts)
	if err != nil {
		return nil, err
	}
	if locked {
		wait, err := g.limiter.AvailableIn(ctx, key)
		if err != nil {
			return nil, err
		}
		g.metrics.Lockout(surface)
		logger.Warn("Login rejected: too many attempts", map[string]interface{}{
			"surface":     surface,
			"ip":          ip,
			"retry_after": wait.Seconds(),
		})
		return nil, &TooManyAttemptsError{RetryAfter: wait}
	}

	user, err := g.auth.Verify(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			if _, hitErr := g.limiter.Hit(ctx, key, g.decay); hitErr != nil {
				return nil, hitErr
			}
			g.metrics.LoginAttempt(surface, "failure")
		}
		return nil, err
	}

	if err := g.limiter.Clear(ctx, key); err != nil {
		return nil, err
	}
	if err := g.auth.TouchLastActive(ctx, user); err != nil {
		return nil, err
	}

	g.metrics.LoginAttempt(surface, "success")
	logger.Info("User logged in", map[string]interface{}{
		"surface": surface,
		"user_id": user.ID,
	})
	return user, nil
}
