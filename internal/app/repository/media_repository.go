package repository

import (
	"context"

	"github.com/inkpress/blog-backend/internal/app/model"
	"gorm.io/gorm"
)

type MediaRepository interface {
	Create(ctx context.Context, media *model.Media) error
	FindByIDForUser(ctx context.Context, userID, id uint) (*model.Media, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Media, error)
	Delete(ctx context.Context, id uint) error
}

type mediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(ctx context.Context, media *model.Media) error {
	return r.db.WithContext(ctx).Create(media).Error
}

func (r *mediaRepository) FindByIDForUser(ctx context.Context, userID, id uint) (*model.Media, error) {
	var media model.Media
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&media).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *mediaRepository) ListByUser(ctx context.Context, userID uint) ([]model.Media, error) {
	var media []model.Media
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&media).Error
	return media, err
}

func (r *mediaRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Media{}, id).Error
}
