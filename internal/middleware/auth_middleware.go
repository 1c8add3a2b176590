package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/inkpress/blog-backend/internal/app/service"
	apperrors "github.com/inkpress/blog-backend/internal/errors"
	"github.com/inkpress/blog-backend/internal/i18n"
)

// Context keys for the authenticated principal
const (
	UserKey        = "user"
	AccessTokenKey = "access_token"
)

// TokenAuthenticator resolves a plain-text bearer token.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, plainText string) (*model.User, *model.AccessToken, error)
}

type AuthMiddleware struct {
	tokens TokenAuthenticator
}

func NewAuthMiddleware(tokens TokenAuthenticator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate requires a valid personal access token.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)
		locale := GetLocale(c)

		token, ok := bearerToken(c)
		if !ok {
			log.Debug("Missing bearer token", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.Unauthorized(c, i18n.T(locale, i18n.MsgUnauthenticated))
			return
		}

		user, accessToken, err := m.tokens.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				log.Warn("Access token rejected", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, i18n.T(locale, i18n.MsgUnauthenticated))
				return
			}
			log.Error("Failed to authenticate access token", err)
			apperrors.InternalError(c, i18n.T(locale, i18n.MsgInternalError))
			return
		}

		c.Set(UserKey, user)
		c.Set(AccessTokenKey, accessToken)
		c.Next()
	}
}

// RequireAbility rejects tokens that do not carry ability.
func (m *AuthMiddleware) RequireAbility(ability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := GetAccessToken(c)
		if !ok {
			apperrors.Unauthorized(c, i18n.T(GetLocale(c), i18n.MsgUnauthenticated))
			return
		}
		if !token.Can(ability) {
			GetLoggerFromContext(c).Warn("Access token missing ability", map[string]interface{}{
				"token_id": token.ID,
				"ability":  ability,
			})
			apperrors.Forbidden(c, apperrors.AuthzMissingAbility, i18n.T(GetLocale(c), i18n.MsgForbidden))
			return
		}
		c.Next()
	}
}

// GetUser returns the authenticated user, set by either the token or the
// session middleware.
func GetUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}

// GetAccessToken returns the token that authenticated the request.
func GetAccessToken(c *gin.Context) (*model.AccessToken, bool) {
	v, exists := c.Get(AccessTokenKey)
	if !exists {
		return nil, false
	}
	token, ok := v.(*model.AccessToken)
	return token, ok
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	user, ok := GetUser(c)
	if !ok {
		return 0, false
	}
	return user.ID, true
}
