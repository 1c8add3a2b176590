package repository

import (
	"context"
	"errors"
	"time"

	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/inkpress/blog-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrResetTokenConsumed means the reset record checked by the caller was
// already used or replaced.
var ErrResetTokenConsumed = errors.New("password reset token already consumed")

type PasswordResetRepository interface {
	// Upsert replaces any outstanding token for the same e-mail.
	Upsert(ctx context.Context, reset *model.PasswordResetToken) error
	FindByEmail(ctx context.Context, email string) (*model.PasswordResetToken, error)
	DeleteByEmail(ctx context.Context, email string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// Consume deletes the verified reset record, sets the user's password
	// hash and deletes all of the user's access tokens in one transaction.
	// It fails with ErrResetTokenConsumed when the record is gone or holds a
	// different token.
	Consume(ctx context.Context, reset *model.PasswordResetToken, userID uint, hash string) (int64, error)
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Upsert(ctx context.Context, reset *model.PasswordResetToken) error {
	logger.Debug("Storing password reset token in database", map[string]interface{}{
		"email": reset.Email,
	})

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "created_at"}),
	}).Create(reset).Error
	if err != nil {
		logger.Error("Failed to store password reset token in database", err, map[string]interface{}{
			"email": reset.Email,
		})
		return err
	}
	return nil
}

func (r *passwordResetRepository) FindByEmail(ctx context.Context, email string) (*model.PasswordResetToken, error) {
	var reset model.PasswordResetToken
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&reset).Error; err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *passwordResetRepository) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Where("email = ?", email).Delete(&model.PasswordResetToken{}).Error
}

func (r *passwordResetRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.PasswordResetToken{})
	if result.Error != nil {
		logger.Error("Failed to delete expired password reset tokens", result.Error)
	}
	return result.RowsAffected, result.Error
}

func (r *passwordResetRepository) Consume(ctx context.Context, reset *model.PasswordResetToken, userID uint, hash string) (int64, error) {
	var revoked int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("email = ? AND token = ?", reset.Email, reset.Token).Delete(&model.PasswordResetToken{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return ErrResetTokenConsumed
		}

		result = tx.Model(&model.User{}).Where("id = ?", userID).Update("password", hash)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		result = tx.Where("user_id = ?", userID).Delete(&model.AccessToken{})
		if result.Error != nil {
			return result.Error
		}
		revoked = result.RowsAffected
		return nil
	})
	if errors.Is(err, ErrResetTokenConsumed) {
		logger.Warn("Password reset token consumed concurrently", map[string]interface{}{
			"email": reset.Email,
		})
		return 0, err
	}
	if err != nil {
		logger.Error("Failed to consume password reset token", err, map[string]interface{}{
			"email": reset.Email,
		})
		return 0, err
	}
	return revoked, nil
}
