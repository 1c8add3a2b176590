package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/inkpress/blog-backend/internal/app/repository"
	apperrors "github.com/inkpress/blog-backend/internal/errors"
	"github.com/inkpress/blog-backend/pkg/logger"
	"github.com/inkpress/blog-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// Patch is an optional field update. Set reports that the field was sent;
// a nil Value clears it.
type Patch[T any] struct {
	Set   bool
	Value *T
}

// ProfileUpdate lists the profile fields a request may change. Only fields
// that were sent are written.
type ProfileUpdate struct {
	Name        *string
	Avatar      Patch[string]
	Bio         Patch[string]
	Website     Patch[string]
	SocialLinks Patch[model.SocialLinks]
}

type AuthService interface {
	Create(ctx context.Context, name, email, password string) (*model.User, error)
	Verify(ctx context.Context, email, password string) (*model.User, error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	UpdatePassword(ctx context.Context, user *model.User, newPassword string) error
	UpdateProfile(ctx context.Context, user *model.User, update ProfileUpdate) (*model.User, error)
	TouchLastActive(ctx context.Context, user *model.User) error
}

type authService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{
		userRepo: userRepo,
		now:      time.Now,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// compareMissingUser spends one bcrypt comparison so unknown e-mails take as
// long to reject as wrong passwords.
func compareMissingUser(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = util.HashPassword("missing-user-placeholder")
	})
	util.VerifyPassword(dummyHash, password)
}

func (s *authService) Create(ctx context.Context, name, email, password string) (*model.User, error) {
	email = util.NormalizeEmail(email)

	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
	})

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	if exists {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if apperrors.IsDuplicateKey(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})

	return user, nil
}

func (s *authService) Verify(ctx context.Context, email, password string) (*model.User, error) {
	email = util.NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			compareMissingUser(password)
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *authService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to get user by ID", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdatePassword(ctx context.Context, user *model.User, newPassword string) error {
	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdateFields(ctx, user.ID, map[string]interface{}{"password": hashedPassword}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	user.PasswordHash = hashedPassword
	logger.Info("Password updated", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (s *authService) UpdateProfile(ctx context.Context, user *model.User, update ProfileUpdate) (*model.User, error) {
	fields := map[string]interface{}{}

	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Avatar.Set {
		fields["avatar"] = update.Avatar.Value
	}
	if update.Bio.Set {
		fields["bio"] = update.Bio.Value
	}
	if update.Website.Set {
		fields["website"] = update.Website.Value
	}
	if update.SocialLinks.Set {
		fields["social_links"] = update.SocialLinks.Value
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(ctx, user.ID, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		logger.Info("Profile updated", map[string]interface{}{
			"user_id": user.ID,
			"fields":  len(fields),
		})
	}

	return s.GetUserByID(ctx, user.ID)
}

func (s *authService) TouchLastActive(ctx context.Context, user *model.User) error {
	now := s.now()
	if err := s.userRepo.TouchLastActive(ctx, user.ID, now); err != nil {
		return err
	}
	user.LastActiveAt = &now
	return nil
}
