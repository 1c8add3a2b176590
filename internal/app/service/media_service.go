package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/inkpress/blog-backend/internal/app/repository"
	"github.com/inkpress/blog-backend/internal/storage"
	"github.com/inkpress/blog-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrMediaNotFound        = errors.New("media not found")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMediaTooLarge        = errors.New("media exceeds the size limit")
)

// MaxMediaSize is the upload limit in bytes.
const MaxMediaSize = 5 << 20

// mediaExtensions maps the accepted image types to their canonical extension.
var mediaExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectStorage is the blob store behind media uploads.
type ObjectStorage interface {
	PresignUpload(ctx context.Context, key, contentType string, size int64) (*storage.PresignedUpload, error)
	DeleteObject(ctx context.Context, key string) error
	FileURL(key string) string
}

type UploadRequest struct {
	Filename    string
	ContentType string
	Size        int64
	AltText     *string
}

type MediaService interface {
	RequestUpload(ctx context.Context, user *model.User, req UploadRequest) (*model.Media, *storage.PresignedUpload, error)
	List(ctx context.Context, user *model.User) ([]model.Media, error)
	Delete(ctx context.Context, user *model.User, id uint) error
}

type mediaService struct {
	mediaRepo repository.MediaRepository
	storage   ObjectStorage
}

func NewMediaService(mediaRepo repository.MediaRepository, storage ObjectStorage) MediaService {
	return &mediaService{mediaRepo: mediaRepo, storage: storage}
}

func mediaExtension(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	canonical := mediaExtensions[contentType]
	switch {
	case ext == canonical:
		return ext
	case ext == ".jpeg" && canonical == ".jpg":
		return ext
	default:
		return canonical
	}
}

func (s *mediaService) RequestUpload(ctx context.Context, user *model.User, req UploadRequest) (*model.Media, *storage.PresignedUpload, error) {
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if _, ok := mediaExtensions[contentType]; !ok {
		return nil, nil, ErrUnsupportedMediaType
	}
	if req.Size <= 0 || req.Size > MaxMediaSize {
		return nil, nil, ErrMediaTooLarge
	}

	fileName := uuid.NewString() + mediaExtension(req.Filename, contentType)
	key := fmt.Sprintf("media/%d/%s", user.ID, fileName)

	upload, err := s.storage.PresignUpload(ctx, key, contentType, req.Size)
	if err != nil {
		logger.Error("Failed to presign media upload", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	media := &model.Media{
		UserID:       user.ID,
		OriginalName: filepath.Base(req.Filename),
		FileName:     fileName,
		MimeType:     contentType,
		Path:         key,
		Disk:         "s3",
		Size:         req.Size,
		AltText:      req.AltText,
		URL:          upload.FileURL,
	}
	if err := s.mediaRepo.Create(ctx, media); err != nil {
		return nil, nil, err
	}

	logger.Info("Media upload requested", map[string]interface{}{
		"user_id":  user.ID,
		"media_id": media.ID,
		"size":     req.Size,
	})
	return media, upload, nil
}

func (s *mediaService) List(ctx context.Context, user *model.User) ([]model.Media, error) {
	return s.mediaRepo.ListByUser(ctx, user.ID)
}

// Delete removes the object before the row, so a storage failure leaves the
// record in place for a retry.
func (s *mediaService) Delete(ctx context.Context, user *model.User, id uint) error {
	media, err := s.mediaRepo.FindByIDForUser(ctx, user.ID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMediaNotFound
		}
		return err
	}

	if err := s.storage.DeleteObject(ctx, media.Path); err != nil {
		logger.Error("Failed to delete media object", err, map[string]interface{}{
			"media_id": media.ID,
		})
		return err
	}

	if err := s.mediaRepo.Delete(ctx, media.ID); err != nil {
		return err
	}

	logger.Info("Media deleted", map[string]interface{}{
		"user_id":  user.ID,
		"media_id": media.ID,
	})
	return nil
}
