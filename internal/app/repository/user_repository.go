package repository

import (
	"context"
	"time"

	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/inkpress/blog-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *model.User) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	TouchLastActive(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
	// ChangePassword stores hash and deletes every token of the user except
	// keepTokenID, atomically. It returns the number of tokens deleted.
	ChangePassword(ctx context.Context, id uint, hash string, keepTokenID uint) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
	})

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail expects an already normalized (lower-case) address.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	return nil
}

// UpdateFields writes only the given columns; nil values clear the column.
func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&model.User{ID: id}).Updates(fields)
	if result.Error != nil {
		logger.Error("Failed to update user fields in database", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) TouchLastActive(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		UpdateColumn("last_active_at", at).Error
}

// Delete removes the user together with the rows it owns.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	logger.Info("Deleting user from database", map[string]interface{}{
		"user_id": id,
	})

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.AccessToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Media{}).Error; err != nil {
			return err
		}
		var user model.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		if err := tx.Where("email = ?", user.Email).Delete(&model.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, id).Error
	})
}

func (r *userRepository) ChangePassword(ctx context.Context, id uint, hash string, keepTokenID uint) (int64, error) {
	var revoked int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.User{}).Where("id = ?", id).Update("password", hash)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		result = tx.Where("user_id = ? AND id <> ?", id, keepTokenID).Delete(&model.AccessToken{})
		if result.Error != nil {
			return result.Error
		}
		revoked = result.RowsAffected
		return nil
	})
	if err != nil {
		logger.Error("Failed to change password in database", err, map[string]interface{}{
			"user_id": id,
		})
		return 0, err
	}
	return revoked, nil
}
