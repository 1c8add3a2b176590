package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/blog-backend/internal/app/service"
	apperrors "github.com/inkpress/blog-backend/internal/errors"
	"github.com/inkpress/blog-backend/internal/i18n"
	"github.com/inkpress/blog-backend/internal/middleware"
)

type MediaController struct {
	mediaService service.MediaService
}

func NewMediaController(mediaService service.MediaService) *MediaController {
	return &MediaController{mediaService: mediaService}
}

type CreateUploadRequest struct {
	Filename    string  `json:"filename" binding:"required,max=255"`
	ContentType string  `json:"content_type" binding:"required"`
	Size        int64   `json:"size" binding:"required,min=1"`
	AltText     *string `json:"alt_text" binding:"omitempty,max=255"`
}

// CreateUpload registers a media record and returns a presigned PUT URL
// POST /api/media/uploads
func (ctrl *MediaController) CreateUpload(c *gin.Context) {
	user, _, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req CreateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	media, upload, err := ctrl.mediaService.RequestUpload(c.Request.Context(), user, service.UploadRequest{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        req.Size,
		AltText:     req.AltText,
	})
	if err != nil {
		respondServiceError(c, err, "create media upload")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": i18n.T(middleware.GetLocale(c), i18n.MsgMediaCreated),
		"media":   media,
		"upload":  upload,
	})
}

// List returns the user's media, newest first
// GET /api/media
func (ctrl *MediaController) List(c *gin.Context) {
	user, _, ok := currentPrincipal(c)
	if !ok {
		return
	}

	items, err := ctrl.mediaService.List(c.Request.Context(), user)
	if err != nil {
		respondServiceError(c, err, "list media")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"media": items,
		"total": len(items),
	})
}

// Delete removes a media item and its stored object
// DELETE /api/media/:id
func (ctrl *MediaController) Delete(c *gin.Context) {
	user, _, ok := currentPrincipal(c)
	if !ok {
		return
	}
	locale := middleware.GetLocale(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apperrors.NotFound(c, apperrors.ResourceNotFound, i18n.T(locale, i18n.MsgMediaNotFound))
		return
	}

	if err := ctrl.mediaService.Delete(c.Request.Context(), user, uint(id)); err != nil {
		respondServiceError(c, err, "delete media")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": i18n.T(locale, i18n.MsgMediaDeleted)})
}
