package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/inkpress/blog-backend/internal/app/service"
	apperrors "github.com/inkpress/blog-backend/internal/errors"
	"github.com/inkpress/blog-backend/internal/i18n"
	"github.com/inkpress/blog-backend/internal/middleware"
)

type AuthController struct {
	tokenService         service.TokenService
	authService          service.AuthService
	passwordResetService service.PasswordResetService
}

func NewAuthController(
	tokenService service.TokenService,
	authService service.AuthService,
	passwordResetService service.PasswordResetService,
) *AuthController {
	return &AuthController{
		tokenService:         tokenService,
		authService:          authService,
		passwordResetService: passwordResetService,
	}
}

type RegisterRequest struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Password             string `json:"password" binding:"required,min=8,password_policy"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SocialLinksRequest struct {
	Twitter  *string `json:"twitter" binding:"omitempty,max=255"`
	LinkedIn *string `json:"linkedin" binding:"omitempty,max=255"`
	GitHub   *string `json:"github" binding:"omitempty,max=255"`
}

// UpdateProfileRequest holds the validated values. Which fields were sent
// is read separately, so an explicit null clears a field.
type UpdateProfileRequest struct {
	Name        *string             `json:"name" binding:"omitempty,min=1,max=255"`
	Avatar      *string             `json:"avatar" binding:"omitempty,max=255"`
	Bio         *string             `json:"bio" binding:"omitempty,max=1000"`
	Website     *string             `json:"website" binding:"omitempty,url,max=255"`
	SocialLinks *SocialLinksRequest `json:"social_links"`
}

type ChangePasswordRequest struct {
	CurrentPassword      string `json:"current_password" binding:"required"`
	Password             string `json:"password" binding:"required,min=8,password_policy"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token                string `json:"token" binding:"required"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=8,password_policy"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required"`
}

// Register handles user registration
// POST /api/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	locale := middleware.GetLocale(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, err := ctrl.tokenService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "register")
		return
	}

	body := tokenBody(token)
	body["message"] = i18n.T(locale, i18n.MsgRegistered)
	body["user"] = basicUser(user)
	c.JSON(http.StatusCreated, body)
}

// Login issues a bearer token for valid credentials
// POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	locale := middleware.GetLocale(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, err := ctrl.tokenService.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondServiceError(c, err, "login")
		return
	}

	body := tokenBody(token)
	body["message"] = i18n.T(locale, i18n.MsgLoggedIn)
	body["user"] = profileUser(user)
	c.JSON(http.StatusOK, body)
}

// User returns the authenticated user
// GET /api/auth/user
func (ctrl *AuthController) User(c *gin.Context) {
	user, _, ok := currentPrincipal(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": fullUser(user)})
}

// Logout revokes the token used for this request
// POST /api/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	_, token, ok := currentPrincipal(c)
	if !ok {
		return
	}

	if err := ctrl.tokenService.Logout(c.Request.Context(), token); err != nil {
		respondServiceError(c, err, "logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": i18n.T(middleware.GetLocale(c), i18n.MsgLoggedOut)})
}

// LogoutAll revokes every token of the user
// POST /api/auth/logout-all
func (ctrl *AuthController) LogoutAll(c *gin.Context) {
	user, _, ok := currentPrincipal(c)
	if !ok {
		return
	}

	revoked, err := ctrl.tokenService.LogoutAll(c.Request.Context(), user)
	if err != nil {
		respondServiceError(c, err, "logout all")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        i18n.T(middleware.GetLocale(c), i18n.MsgLoggedOutAll),
		"tokens_revoked": revoked,
	})
}

// Refresh swaps the current token for a new one
// POST /api/auth/refresh
func (ctrl *AuthController) Refresh(c *gin.Context) {
	user, current, ok := currentPrincipal(c)
	if !ok {
		return
	}

	token, err := ctrl.tokenService.Refresh(c.Request.Context(), user, current)
	if err != nil {
		respondServiceError(c, err, "refresh token")
		return
	}

	body := tokenBody(token)
	body["message"] = i18n.T(middleware.GetLocale(c), i18n.MsgTokenRefreshed)
	c.JSON(http.StatusOK, body)
}

// UpdateProfile changes the fields present in the body
// PUT /api/auth/profile
func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	user, _, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		respondBindError(c, err)
		return
	}
	var present map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&present, binding.JSON); err != nil {
		respondBindError(c, err)
		return
	}

	update := service.ProfileUpdate{
		Name:    req.Name,
		Avatar:  patchOf(present, "avatar", req.Avatar),
		Bio:     patchOf(present, "bio", req.Bio),
		Website: patchOf(present, "website", req.Website),
	}
	if _, sent := present["social_links"]; sent {
		update.SocialLinks.Set = true
		if req.SocialLinks != nil {
			update.SocialLinks.Value = &model.SocialLinks{
				Twitter:  req.SocialLinks.Twitter,
				LinkedIn: req.SocialLinks.LinkedIn,
				GitHub:   req.SocialLinks.GitHub,
			}
		}
	}

	updated, err := ctrl.authService.UpdateProfile(c.Request.Context(), user, update)
	if err != nil {
		respondServiceError(c, err, "update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": i18n.T(middleware.GetLocale(c), i18n.MsgProfileUpdated),
		"user":    fullUser(updated),
	})
}

func patchOf(present map[string]json.RawMessage, key string, value *string) service.Patch[string] {
	_, sent := present[key]
	return service.Patch[string]{Set: sent, Value: value}
}

// ChangePassword sets a new password and revokes the user's other tokens
// PUT /api/auth/password
func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	user, current, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	revoked, err := ctrl.tokenService.ChangePassword(c.Request.Context(), user, current, req.CurrentPassword, req.Password)
	if err != nil {
		respondServiceError(c, err, "change password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        i18n.T(middleware.GetLocale(c), i18n.MsgPasswordChanged),
		"tokens_revoked": revoked,
	})
}

// Tokens lists the user's active tokens
// GET /api/auth/tokens
func (ctrl *AuthController) Tokens(c *gin.Context) {
	user, current, ok := currentPrincipal(c)
	if !ok {
		return
	}

	tokens, err := ctrl.tokenService.ListTokens(c.Request.Context(), user, current)
	if err != nil {
		respondServiceError(c, err, "list tokens")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tokens": tokens,
		"total":  len(tokens),
	})
}

// RevokeToken deletes one of the user's other tokens
// DELETE /api/auth/tokens/:id
func (ctrl *AuthController) RevokeToken(c *gin.Context) {
	user, current, ok := currentPrincipal(c)
	if !ok {
		return
	}
	locale := middleware.GetLocale(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apperrors.NotFound(c, apperrors.ResourceNotFound, i18n.T(locale, i18n.MsgTokenNotFound))
		return
	}

	if err := ctrl.tokenService.Revoke(c.Request.Context(), user, current, uint(id)); err != nil {
		respondServiceError(c, err, "revoke token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": i18n.T(locale, i18n.MsgTokenRevoked)})
}

// ForgotPassword mails a reset link
// POST /api/auth/forgot-password
func (ctrl *AuthController) ForgotPassword(c *gin.Context) {
	locale := middleware.GetLocale(c)

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := ctrl.passwordResetService.RequestReset(c.Request.Context(), req.Email, locale); err != nil {
		respondServiceError(c, err, "request password reset")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": i18n.T(locale, i18n.MsgResetLinkSent)})
}

// ResetPassword sets a new password using a mailed token
// POST /api/auth/reset-password
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	locale := middleware.GetLocale(c)

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	err := ctrl.passwordResetService.ResetPassword(c.Request.Context(), req.Email, req.Token, req.Password, req.PasswordConfirmation)
	if err != nil {
		respondServiceError(c, err, "reset password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": i18n.T(locale, i18n.MsgResetDone)})
}
