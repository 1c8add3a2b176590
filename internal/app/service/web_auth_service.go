package service

import (
	"context"

	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/inkpress/blog-backend/internal/metrics"
)

// WebAuthService backs the session (browser) login flow. Session state itself
// lives in the session manager; this service decides who the user is.
type WebAuthService interface {
	Login(ctx context.Context, email, password, ip string) (*model.User, error)
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	CurrentUser(ctx context.Context, id uint) (*model.User, error)
}

type webAuthService struct {
	auth  AuthService
	guard *LoginGuard
}

func NewWebAuthService(auth AuthService, guard *LoginGuard) WebAuthService {
	return &webAuthService{auth: auth, guard: guard}
}

func (s *webAuthService) Login(ctx context.Context, email, password, ip string) (*model.User, error) {
	return s.guard.Attempt(ctx, metrics.SurfaceWeb, email, password, ip)
}

// Register creates the account and marks it active, since the user is signed
// in right away.
func (s *webAuthService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	user, err := s.auth.Create(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.auth.TouchLastActive(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *webAuthService) CurrentUser(ctx context.Context, id uint) (*model.User, error) {
	return s.auth.GetUserByID(ctx, id)
}
