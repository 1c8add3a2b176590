package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/inkpress/blog-backend/internal/app/repository"
	"github.com/inkpress/blog-backend/internal/metrics"
	"github.com/inkpress/blog-backend/pkg/logger"
	"github.com/inkpress/blog-backend/pkg/util"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var (
	ErrEmailNotFound         = errors.New("no user with that email address")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	ErrPasswordMismatch      = errors.New("password confirmation does not match")
)

const (
	// ResetTokenLength is the byte length of the reset token (64 hex characters).
	ResetTokenLength = 32
)

// ResetNotifier delivers reset links to users.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, email, link string, locale language.Tag) error
}

type PasswordResetService interface {
	RequestReset(ctx context.Context, email string, locale language.Tag) error
	ResetPassword(ctx context.Context, email, token, password, confirmation string) error
	PruneExpired(ctx context.Context) (int64, error)
}

type passwordResetService struct {
	resetRepo repository.PasswordResetRepository
	userRepo  repository.UserRepository
	notifier  ResetNotifier
	metrics   *metrics.Metrics
	appURL    string
	ttl       time.Duration
	now       func() time.Time
}

func NewPasswordResetService(
	resetRepo repository.PasswordResetRepository,
	userRepo repository.UserRepository,
	notifier ResetNotifier,
	m *metrics.Metrics,
	appURL string,
	ttl time.Duration,
) PasswordResetService {
	return &passwordResetService{
		resetRepo: resetRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		metrics:   m,
		appURL:    appURL,
		ttl:       ttl,
		now:       time.Now,
	}
}

func (s *passwordResetService) resetLink(token, email string) string {
	return fmt.Sprintf("%s/reset-password/%s?email=%s", s.appURL, token, url.QueryEscape(email))
}

func (s *passwordResetService) RequestReset(ctx context.Context, email string, locale language.Tag) error {
	email = util.NormalizeEmail(email)

	logger.Info("Processing password reset request", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for unknown email", map[string]interface{}{
				"email": email,
			})
			s.metrics.PasswordReset("request", "unknown_email")
			return ErrEmailNotFound
		}
		logger.Error("Failed to find user for password reset", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	token, err := util.RandomHex(ResetTokenLength)
	if err != nil {
		return err
	}
	hash, err := util.HashPassword(token)
	if err != nil {
		return err
	}

	if err := s.resetRepo.Upsert(ctx, &model.PasswordResetToken{
		Email:     user.Email,
		Token:     hash,
		CreatedAt: s.now(),
	}); err != nil {
		return err
	}

	if err := s.notifier.SendPasswordReset(ctx, user.Email, s.resetLink(token, user.Email), locale); err != nil {
		logger.Error("Failed to send password reset notification", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	s.metrics.PasswordReset("request", "sent")
	logger.Info("Password reset link sent", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

// ResetPassword checks the confirmation first, then the stored record's age
// and hash. A record is single use.
func (s *passwordResetService) ResetPassword(ctx context.Context, email, token, password, confirmation string) error {
	if password != confirmation {
		return ErrPasswordMismatch
	}

	email = util.NormalizeEmail(email)

	reset, err := s.resetRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.PasswordReset("reset", "invalid")
			return ErrInvalidOrExpiredToken
		}
		return err
	}

	if s.now().Sub(reset.CreatedAt) >= s.ttl {
		logger.Warn("Password reset token expired", map[string]interface{}{
			"email": email,
		})
		s.metrics.PasswordReset("reset", "expired")
		return ErrInvalidOrExpiredToken
	}

	if !util.VerifyPassword(reset.Token, token) {
		logger.Warn("Invalid password reset token", map[string]interface{}{
			"email": email,
		})
		s.metrics.PasswordReset("reset", "invalid")
		return ErrInvalidOrExpiredToken
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}

	revoked, err := s.resetRepo.Consume(ctx, reset, user.ID, hash)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenConsumed) {
			s.metrics.PasswordReset("reset", "invalid")
			return ErrInvalidOrExpiredToken
		}
		return err
	}

	s.metrics.PasswordReset("reset", "success")
	s.metrics.TokensRevoked("password_reset", revoked)
	logger.Info("Password reset completed", map[string]interface{}{
		"user_id": user.ID,
		"revoked": revoked,
	})
	return nil
}

func (s *passwordResetService) PruneExpired(ctx context.Context) (int64, error) {
	return s.resetRepo.DeleteOlderThan(ctx, s.now().Add(-s.ttl))
}
