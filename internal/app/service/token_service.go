package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/inkpress/blog-backend/internal/app/repository"
	"github.com/inkpress/blog-backend/internal/metrics"
	"github.com/inkpress/blog-backend/pkg/logger"
	"github.com/inkpress/blog-backend/pkg/util"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrUnauthenticated          = errors.New("unauthenticated")
	ErrTokenNotFound            = errors.New("token not found")
	ErrCannotRevokeCurrent      = errors.New("cannot revoke the token used for this request")
	ErrIncorrectCurrentPassword = errors.New("current password is incorrect")
)

const (
	TokenName          = "auth-token"
	RefreshedTokenName = "auth-token-refreshed"

	tokenSecretLength = 40
)

// NewAccessToken is a freshly issued token. PlainText ("<id>|<secret>") is
// shown to the client once and never stored.
type NewAccessToken struct {
	Token     *model.AccessToken
	PlainText string
}

// TokenSummary describes one of the user's tokens.
type TokenSummary struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Abilities  []string   `json:"abilities"`
	ExpiresAt  *time.Time `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
	IsCurrent  bool       `json:"is_current"`
}

type TokenService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, *NewAccessToken, error)
	Login(ctx context.Context, email, password, ip string) (*model.User, *NewAccessToken, error)
	Authenticate(ctx context.Context, plainText string) (*model.User, *model.AccessToken, error)
	Logout(ctx context.Context, current *model.AccessToken) error
	LogoutAll(ctx context.Context, user *model.User) (int64, error)
	ListTokens(ctx context.Context, user *model.User, current *model.AccessToken) ([]TokenSummary, error)
	Revoke(ctx context.Context, user *model.User, current *model.AccessToken, tokenID uint) error
	Refresh(ctx context.Context, user *model.User, current *model.AccessToken) (*NewAccessToken, error)
	ChangePassword(ctx context.Context, user *model.User, current *model.AccessToken, currentPassword, newPassword string) (int64, error)
}

type tokenService struct {
	auth      AuthService
	guard     *LoginGuard
	userRepo  repository.UserRepository
	tokenRepo repository.AccessTokenRepository
	metrics   *metrics.Metrics
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenService(
	auth AuthService,
	guard *LoginGuard,
	userRepo repository.UserRepository,
	tokenRepo repository.AccessTokenRepository,
	m *metrics.Metrics,
	ttl time.Duration,
) TokenService {
	return &tokenService{
		auth:      auth,
		guard:     guard,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		metrics:   m,
		ttl:       ttl,
		now:       time.Now,
	}
}

// abilitiesFor grants admins every ability and everyone else read/write.
func abilitiesFor(user *model.User) []string {
	if user.IsAdmin {
		return []string{model.AbilityAll}
	}
	return []string{model.AbilityRead, model.AbilityWrite}
}

// newToken builds an unsaved token row and its secret.
func (s *tokenService) newToken(user *model.User, name string, abilities []string) (*model.AccessToken, string, error) {
	secret, err := util.RandomString(tokenSecretLength)
	if err != nil {
		return nil, "", err
	}
	expiresAt := s.now().Add(s.ttl)
	return &model.AccessToken{
		UserID:    user.ID,
		Name:      name,
		Token:     util.HashToken(secret),
		Abilities: pq.StringArray(abilities),
		ExpiresAt: &expiresAt,
	}, secret, nil
}

func plainText(token *model.AccessToken, secret string) string {
	return fmt.Sprintf("%d|%s", token.ID, secret)
}

func (s *tokenService) issue(ctx context.Context, user *model.User, name string, abilities []string) (*NewAccessToken, error) {
	token, secret, err := s.newToken(user, name, abilities)
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}
	return &NewAccessToken{Token: token, PlainText: plainText(token, secret)}, nil
}

func (s *tokenService) Register(ctx context.Context, name, email, password string) (*model.User, *NewAccessToken, error) {
	user, err := s.auth.Create(ctx, name, email, password)
	if err != nil {
		return nil, nil, err
	}

	issued, err := s.issue(ctx, user, TokenName, []string{model.AbilityAll})
	if err != nil {
		logger.Error("Failed to issue token after registration", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	s.metrics.TokenIssued("register")
	return user, issued, nil
}

func (s *tokenService) Login(ctx context.Context, email, password, ip string) (*model.User, *NewAccessToken, error) {
	user, err := s.guard.Attempt(ctx, metrics.SurfaceAPI, email, password, ip)
	if err != nil {
		return nil, nil, err
	}

	issued, err := s.issue(ctx, user, TokenName, abilitiesFor(user))
	if err != nil {
		logger.Error("Failed to issue token on login", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	s.metrics.TokenIssued("login")
	return user, issued, nil
}

// Authenticate resolves a bearer token. Every rejection reason, including
// expiry, is reported as ErrUnauthenticated.
func (s *tokenService) Authenticate(ctx context.Context, plain string) (*model.User, *model.AccessToken, error) {
	idPart, secret, ok := strings.Cut(plain, "|")
	if !ok || secret == "" {
		return nil, nil, ErrUnauthenticated
	}
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil {
		return nil, nil, ErrUnauthenticated
	}

	token, err := s.tokenRepo.FindByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, err
	}

	if !util.SecureCompare(token.Token, util.HashToken(secret)) {
		return nil, nil, ErrUnauthenticated
	}

	now := s.now()
	if token.Expired(now) {
		logger.Debug("Rejected expired access token", map[string]interface{}{
			"token_id": token.ID,
		})
		return nil, nil, ErrUnauthenticated
	}

	user, err := s.userRepo.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, err
	}

	if err := s.tokenRepo.TouchLastUsed(ctx, token.ID, now); err != nil {
		return nil, nil, err
	}
	token.LastUsedAt = &now

	return user, token, nil
}

func (s *tokenService) Logout(ctx context.Context, current *model.AccessToken) error {
	deleted, err := s.tokenRepo.Delete(ctx, current.ID)
	if err != nil {
		return err
	}
	s.metrics.TokensRevoked("logout", deleted)
	logger.Info("User logged out", map[string]interface{}{
		"user_id":  current.UserID,
		"token_id": current.ID,
	})
	return nil
}

func (s *tokenService) LogoutAll(ctx context.Context, user *model.User) (int64, error) {
	deleted, err := s.tokenRepo.DeleteByUser(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	s.metrics.TokensRevoked("logout_all", deleted)
	logger.Info("User logged out from all devices", map[string]interface{}{
		"user_id": user.ID,
		"revoked": deleted,
	})
	return deleted, nil
}

func (s *tokenService) ListTokens(ctx context.Context, user *model.User, current *model.AccessToken) ([]TokenSummary, error) {
	tokens, err := s.tokenRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	summaries := make([]TokenSummary, 0, len(tokens))
	for _, t := range tokens {
		summaries = append(summaries, TokenSummary{
			ID:         t.ID,
			Name:       t.Name,
			Abilities:  []string(t.Abilities),
			ExpiresAt:  t.ExpiresAt,
			CreatedAt:  t.CreatedAt,
			LastUsedAt: t.LastUsedAt,
			IsCurrent:  current != nil && t.ID == current.ID,
		})
	}
	return summaries, nil
}

func (s *tokenService) Revoke(ctx context.Context, user *model.User, current *model.AccessToken, tokenID uint) error {
	token, err := s.tokenRepo.FindByIDForUser(ctx, user.ID, tokenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenNotFound
		}
		return err
	}
	if current != nil && token.ID == current.ID {
		return ErrCannotRevokeCurrent
	}

	deleted, err := s.tokenRepo.Delete(ctx, token.ID)
	if err != nil {
		return err
	}
	s.metrics.TokensRevoked("revoke", deleted)
	logger.Info("Access token revoked", map[string]interface{}{
		"user_id":  user.ID,
		"token_id": token.ID,
	})
	return nil
}

// Refresh replaces the presenting token. If the swap fails the old token
// stays valid.
func (s *tokenService) Refresh(ctx context.Context, user *model.User, current *model.AccessToken) (*NewAccessToken, error) {
	next, secret, err := s.newToken(user, RefreshedTokenName, abilitiesFor(user))
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.Rotate(ctx, current.ID, next); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	s.metrics.TokenIssued("refresh")
	s.metrics.TokensRevoked("refresh", 1)
	logger.Info("Access token refreshed", map[string]interface{}{
		"user_id":      user.ID,
		"old_token_id": current.ID,
		"new_token_id": next.ID,
	})
	return &NewAccessToken{Token: next, PlainText: plainText(next, secret)}, nil
}

// ChangePassword sets a new password and ends every other API session.
func (s *tokenService) ChangePassword(ctx context.Context, user *model.User, current *model.AccessToken, currentPassword, newPassword string) (int64, error) {
	if !util.VerifyPassword(user.PasswordHash, currentPassword) {
		logger.Warn("Password change rejected: incorrect current password", map[string]interface{}{
			"user_id": user.ID,
		})
		return 0, ErrIncorrectCurrentPassword
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return 0, err
	}

	revoked, err := s.userRepo.ChangePassword(ctx, user.ID, hash, current.ID)
	if err != nil {
		return 0, err
	}
	user.PasswordHash = hash

	s.metrics.TokensRevoked("password_change", revoked)
	logger.Info("Password changed", map[string]interface{}{
		"user_id": user.ID,
		"revoked": revoked,
	})
	return revoked, nil
}
