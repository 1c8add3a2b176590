package repository

import (
	"context"
	"time"

	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/inkpress/blog-backend/pkg/logger"
	"gorm.io/gorm"
)

type AccessTokenRepository interface {
	Create(ctx context.Context, token *model.AccessToken) error
	FindByID(ctx context.Context, id uint) (*model.AccessToken, error)
	FindByIDForUser(ctx context.Context, userID, id uint) (*model.AccessToken, error)
	ListByUser(ctx context.Context, userID uint) ([]model.AccessToken, error)
	TouchLastUsed(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) (int64, error)
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
	DeleteByUserExcept(ctx context.Context, userID, keepID uint) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	// Rotate creates next and deletes the token currentID in one transaction.
	Rotate(ctx context.Context, currentID uint, next *model.AccessToken) error
}

type accessTokenRepository struct {
	db *gorm.DB
}

func NewAccessTokenRepository(db *gorm.DB) AccessTokenRepository {
	return &accessTokenRepository{db: db}
}

func (r *accessTokenRepository) Create(ctx context.Context, token *model.AccessToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		logger.Error("Failed to create access token in database", err, map[string]interface{}{
			"user_id": token.UserID,
		})
		return err
	}

	logger.Debug("Access token created in database", map[string]interface{}{
		"token_id": token.ID,
		"user_id":  token.UserID,
	})
	return nil
}

func (r *accessTokenRepository) FindByID(ctx context.Context, id uint) (*model.AccessToken, error) {
	var token model.AccessToken
	if err := r.db.WithContext(ctx).First(&token, id).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *accessTokenRepository) FindByIDForUser(ctx context.Context, userID, id uint) (*model.AccessToken, error) {
	var token model.AccessToken
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *accessTokenRepository) ListByUser(ctx context.Context, userID uint) ([]model.AccessToken, error) {
	var tokens []model.AccessToken
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *accessTokenRepository) TouchLastUsed(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.AccessToken{}).Where("id = ?", id).
		UpdateColumn("last_used_at", at).Error
}

func (r *accessTokenRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&model.AccessToken{}, id)
	return result.RowsAffected, result.Error
}

func (r *accessTokenRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.AccessToken{})
	return result.RowsAffected, result.Error
}

func (r *accessTokenRepository) DeleteByUserExcept(ctx context.Context, userID, keepID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ? AND id <> ?", userID, keepID).Delete(&model.AccessToken{})
	return result.RowsAffected, result.Error
}

func (r *accessTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at < ?", now).Delete(&model.AccessToken{})
	if result.Error != nil {
		logger.Error("Failed to delete expired access tokens", result.Error)
	}
	return result.RowsAffected, result.Error
}

func (r *accessTokenRepository) Rotate(ctx context.Context, currentID uint, next *model.AccessToken) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(next).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.AccessToken{}, currentID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to rotate access token", err, map[string]interface{}{
			"token_id": currentID,
			"user_id":  next.UserID,
		})
	}
	return err
}
