package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/inkpress/blog-backend/internal/app/service"
	apperrors "github.com/inkpress/blog-backend/internal/errors"
	"github.com/inkpress/blog-backend/internal/i18n"
	"github.com/inkpress/blog-backend/internal/middleware"
	"github.com/inkpress/blog-backend/internal/validation"
)

// respondBindError answers 422 with the per-field messages of a binding
// failure. Malformed bodies get the generic message only.
func respondBindError(c *gin.Context, err error) {
	locale := middleware.GetLocale(c)
	middleware.GetLoggerFromContext(c).Debug("Request validation failed", map[string]interface{}{
		"error": err.Error(),
	})
	apperrors.RespondWithValidationError(c, i18n.T(locale, i18n.MsgValidationFailed), validation.Fields(err, locale))
}

// respondServiceError maps service errors onto the API error taxonomy.
// Unknown errors are logged and answered with a generic 500.
func respondServiceError(c *gin.Context, err error, operation string) {
	locale := middleware.GetLocale(c)
	fieldError := func(code, field, msg string) {
		apperrors.RespondWithFieldError(c, code, msg, map[string]string{field: msg})
	}

	var tooMany *service.TooManyAttemptsError
	switch {
	case errors.As(err, &tooMany):
		seconds := tooMany.Seconds()
		apperrors.TooManyAttempts(c, i18n.T(locale, i18n.MsgThrottle, seconds), seconds)
	case errors.Is(err, service.ErrInvalidCredentials):
		fieldError(apperrors.AuthInvalidCredentials, "email", i18n.T(locale, i18n.MsgFailed))
	case errors.Is(err, service.ErrEmailAlreadyExists):
		fieldError(apperrors.AuthEmailAlreadyExists, "email", i18n.T(locale, i18n.MsgEmailTaken))
	case errors.Is(err, service.ErrIncorrectCurrentPassword):
		fieldError(apperrors.AuthPasswordIncorrect, "current_password", i18n.T(locale, i18n.MsgPasswordIncorrect))
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		fieldError(apperrors.AuthResetTokenInvalid, "email", i18n.T(locale, i18n.MsgResetInvalid))
	case errors.Is(err, service.ErrEmailNotFound):
		fieldError(apperrors.AuthResetEmailUnknown, "email", i18n.T(locale, i18n.MsgResetUnknownEmail))
	case errors.Is(err, service.ErrPasswordMismatch):
		fieldError(apperrors.ValidationInvalidInput, "password",
			i18n.T(locale, i18n.ValConfirmed, i18n.Attribute(locale, "password")))
	case errors.Is(err, service.ErrCannotRevokeCurrent):
		apperrors.Unprocessable(c, apperrors.AuthCannotRevokeCurrent, i18n.T(locale, i18n.MsgCannotRevoke))
	case errors.Is(err, service.ErrTokenNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, i18n.T(locale, i18n.MsgTokenNotFound))
	case errors.Is(err, service.ErrMediaNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, i18n.T(locale, i18n.MsgMediaNotFound))
	case errors.Is(err, service.ErrUnsupportedMediaType):
		fieldError(apperrors.UploadInvalidFileType, "content_type", i18n.T(locale, i18n.MsgMediaType))
	case errors.Is(err, service.ErrMediaTooLarge):
		fieldError(apperrors.UploadFileTooLarge, "size", i18n.T(locale, i18n.MsgMediaTooLarge, service.MaxMediaSize/1024))
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrUserNotFound):
		apperrors.Unauthorized(c, i18n.T(locale, i18n.MsgUnauthenticated))
	default:
		if info := apperrors.ParseError(err); info.Status == http.StatusNotFound {
			apperrors.NotFound(c, info.Code, i18n.T(locale, i18n.MsgNotFound))
			return
		}
		middleware.GetLoggerFromContext(c).Error("Request failed", err, map[string]interface{}{
			"operation": operation,
		})
		apperrors.InternalError(c, i18n.T(locale, i18n.MsgInternalError))
	}
}

func basicUser(user *model.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	}
}

func profileUser(user *model.User) gin.H {
	h := basicUser(user)
	h["avatar"] = user.Avatar
	h["bio"] = user.Bio
	h["website"] = user.Website
	h["social_links"] = user.SocialLinks
	h["is_admin"] = user.IsAdmin
	h["last_active_at"] = user.LastActiveAt
	return h
}

func fullUser(user *model.User) gin.H {
	h := profileUser(user)
	h["email_verified_at"] = user.EmailVerifiedAt
	h["updated_at"] = user.UpdatedAt
	return h
}

func tokenBody(token *service.NewAccessToken) gin.H {
	return gin.H{
		"token":      token.PlainText,
		"token_type": "Bearer",
		"expires_at": token.Token.ExpiresAt,
	}
}

// currentPrincipal returns the user and token placed by the auth middleware.
func currentPrincipal(c *gin.Context) (*model.User, *model.AccessToken, bool) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apperrors.Unauthorized(c, i18n.T(middleware.GetLocale(c), i18n.MsgUnauthenticated))
		return nil, nil, false
	}
	token, ok := middleware.GetAccessToken(c)
	if !ok {
		apperrors.Unauthorized(c, i18n.T(middleware.GetLocale(c), i18n.MsgUnauthenticated))
		return nil, nil, false
	}
	return user, token, true
}
