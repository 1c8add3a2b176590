package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/inkpress/blog-backend/internal/app/service"
	apperrors "github.com/inkpress/blog-backend/internal/errors"
	"github.com/inkpress/blog-backend/internal/i18n"
	"github.com/inkpress/blog-backend/internal/middleware"
	"github.com/inkpress/blog-backend/internal/session"
	"github.com/inkpress/blog-backend/internal/validation"
	"golang.org/x/text/language"
)

const (
	flashStatus = "status"
	homePath    = "/dashboard"
)

// WebAuthController serves the browser login pages. Every POST answers with
// a redirect; errors and old input travel to the next page as flash data.
type WebAuthController struct {
	webAuthService       service.WebAuthService
	passwordResetService service.PasswordResetService
	sessions             *session.Manager
}

func NewWebAuthController(
	webAuthService service.WebAuthService,
	passwordResetService service.PasswordResetService,
	sessions *session.Manager,
) *WebAuthController {
	return &WebAuthController{
		webAuthService:       webAuthService,
		passwordResetService: passwordResetService,
		sessions:             sessions,
	}
}

type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	Remember bool   `form:"remember"`
}

type RegisterForm struct {
	Name                 string `form:"name" binding:"required,max=255"`
	Email                string `form:"email" binding:"required,email,max=255"`
	Password             string `form:"password" binding:"required,min=8,password_policy"`
	PasswordConfirmation string `form:"password_confirmation" binding:"required,eqfield=Password"`
}

type ForgotPasswordForm struct {
	Email string `form:"email" binding:"required,email"`
}

type ResetPasswordForm struct {
	Token                string `form:"token" binding:"required"`
	Email                string `form:"email" binding:"required,email"`
	Password             string `form:"password" binding:"required,min=8,password_policy"`
	PasswordConfirmation string `form:"password_confirmation" binding:"required"`
}

// page renders an HTML page with the session's CSRF token and last flash.
func (ctrl *WebAuthController) page(c *gin.Context, name, title string, extra gin.H) {
	locale := middleware.GetLocale(c)
	data := gin.H{
		"Lang":   locale.String(),
		"Title":  title,
		"Errors": map[string]string{},
		"Old":    map[string]string{},
	}
	if sess, ok := middleware.GetSession(c); ok {
		flashed := sess.Flashed()
		data["CSRF"] = sess.CSRFToken()
		data["Status"] = flashed.Messages[flashStatus]
		if flashed.Errors != nil {
			data["Errors"] = flashed.Errors
		}
		if flashed.Old != nil {
			data["Old"] = flashed.Old
		}
	}
	if user, ok := middleware.GetUser(c); ok {
		data["User"] = user
	}
	for k, v := range extra {
		data[k] = v
	}
	c.HTML(http.StatusOK, name, data)
}

// back flashes the errors and old input, then redirects to path.
func (ctrl *WebAuthController) back(c *gin.Context, path string, errs, old map[string]string) {
	if sess, ok := middleware.GetSession(c); ok {
		sess.FlashErrors(errs, old)
	}
	c.Redirect(http.StatusFound, path)
}

// fail handles errors that cannot be shown on the form.
func (ctrl *WebAuthController) fail(c *gin.Context, err error, operation string) {
	middleware.GetLoggerFromContext(c).Error("Web request failed", err, map[string]interface{}{
		"operation": operation,
	})
	apperrors.InternalError(c, i18n.T(middleware.GetLocale(c), i18n.MsgInternalError))
}

func (ctrl *WebAuthController) currentSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		ctrl.fail(c, errors.New("session middleware not installed"), "session")
	}
	return sess, ok
}

// signIn rotates the session id and binds it to user.
func (ctrl *WebAuthController) signIn(c *gin.Context, sess *session.Session, user *model.User, remember bool) error {
	if err := ctrl.sessions.Regenerate(c.Request.Context(), sess); err != nil {
		return err
	}
	sess.SetUserID(user.ID)
	sess.SetRemember(remember)
	return nil
}

// Home renders the landing page
// GET /
func (ctrl *WebAuthController) Home(c *gin.Context) {
	if sess, ok := middleware.GetSession(c); ok {
		if id, signedIn := sess.UserID(); signedIn {
			if user, err := ctrl.webAuthService.CurrentUser(c.Request.Context(), id); err == nil {
				c.Set(middleware.UserKey, user)
			}
		}
	}
	ctrl.page(c, "home.html", "Blog", nil)
}

// ShowLogin renders the login form
// GET /login
func (ctrl *WebAuthController) ShowLogin(c *gin.Context) {
	ctrl.page(c, "login.html", "Login", nil)
}

// Login signs the user in and redirects to the intended page
// POST /login
func (ctrl *WebAuthController) Login(c *gin.Context) {
	locale := middleware.GetLocale(c)
	sess, ok := ctrl.currentSession(c)
	if !ok {
		return
	}

	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		ctrl.back(c, "/login", formErrors(err, locale), map[string]string{"email": form.Email})
		return
	}
	old := map[string]string{"email": form.Email}

	user, err := ctrl.webAuthService.Login(c.Request.Context(), form.Email, form.Password, c.ClientIP())
	if err != nil {
		var tooMany *service.TooManyAttemptsError
		switch {
		case errors.As(err, &tooMany):
			ctrl.back(c, "/login", map[string]string{"email": i18n.T(locale, i18n.MsgThrottle, tooMany.Seconds())}, old)
		case errors.Is(err, service.ErrInvalidCredentials):
			ctrl.back(c, "/login", map[string]string{"email": i18n.T(locale, i18n.MsgFailed)}, old)
		default:
			ctrl.fail(c, err, "web login")
		}
		return
	}

	if err := ctrl.signIn(c, sess, user, form.Remember); err != nil {
		ctrl.fail(c, err, "web login")
		return
	}
	sess.FlashMessage(flashStatus, i18n.T(locale, i18n.MsgWelcomeBack, user.Name))
	c.Redirect(http.StatusFound, sess.PullIntended(homePath))
}

// ShowRegister renders the registration form
// GET /register
func (ctrl *WebAuthController) ShowRegister(c *gin.Context) {
	ctrl.page(c, "register.html", "Register", nil)
}

// Register creates the account and signs it in
// POST /register
func (ctrl *WebAuthController) Register(c *gin.Context) {
	locale := middleware.GetLocale(c)
	sess, ok := ctrl.currentSession(c)
	if !ok {
		return
	}

	var form RegisterForm
	err := c.ShouldBind(&form)
	old := map[string]string{"name": form.Name, "email": form.Email}
	if err != nil {
		ctrl.back(c, "/register", formErrors(err, locale), old)
		return
	}

	user, err := ctrl.webAuthService.Register(c.Request.Context(), form.Name, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			ctrl.back(c, "/register", map[string]string{"email": i18n.T(locale, i18n.MsgEmailTaken)}, old)
			return
		}
		ctrl.fail(c, err, "web register")
		return
	}

	if err := ctrl.signIn(c, sess, user, false); err != nil {
		ctrl.fail(c, err, "web register")
		return
	}
	sess.FlashMessage(flashStatus, i18n.T(locale, i18n.MsgWelcomeNew, user.Name))
	c.Redirect(http.StatusFound, homePath)
}

// Logout ends the session and starts a fresh anonymous one
// POST /logout
func (ctrl *WebAuthController) Logout(c *gin.Context) {
	sess, ok := ctrl.currentSession(c)
	if !ok {
		return
	}

	name := ""
	if user, ok := middleware.GetUser(c); ok {
		name = user.Name
	}

	if err := ctrl.sessions.Invalidate(c.Request.Context(), sess); err != nil {
		ctrl.fail(c, err, "web logout")
		return
	}
	sess.FlashMessage(flashStatus, i18n.T(middleware.GetLocale(c), i18n.MsgGoodbye, name))
	c.Redirect(http.StatusFound, "/")
}

// Dashboard renders the signed-in home page
// GET /dashboard
func (ctrl *WebAuthController) Dashboard(c *gin.Context) {
	ctrl.page(c, "dashboard.html", "Dashboard", nil)
}

// ShowForgotPassword renders the reset request form
// GET /forgot-password
func (ctrl *WebAuthController) ShowForgotPassword(c *gin.Context) {
	ctrl.page(c, "forgot_password.html", "Forgot password", nil)
}

// ForgotPassword mails a reset link
// POST /forgot-password
func (ctrl *WebAuthController) ForgotPassword(c *gin.Context) {
	locale := middleware.GetLocale(c)
	sess, ok := ctrl.currentSession(c)
	if !ok {
		return
	}

	var form ForgotPasswordForm
	err := c.ShouldBind(&form)
	old := map[string]string{"email": form.Email}
	if err != nil {
		ctrl.back(c, "/forgot-password", formErrors(err, locale), old)
		return
	}

	if err := ctrl.passwordResetService.RequestReset(c.Request.Context(), form.Email, locale); err != nil {
		if errors.Is(err, service.ErrEmailNotFound) {
			ctrl.back(c, "/forgot-password", map[string]string{"email": i18n.T(locale, i18n.MsgResetUnknownEmail)}, old)
			return
		}
		ctrl.fail(c, err, "web forgot password")
		return
	}

	sess.FlashMessage(flashStatus, i18n.T(locale, i18n.MsgResetLinkSent))
	c.Redirect(http.StatusFound, "/forgot-password")
}

// ShowResetPassword renders the form behind a mailed reset link
// GET /reset-password/:token
func (ctrl *WebAuthController) ShowResetPassword(c *gin.Context) {
	ctrl.page(c, "reset_password.html", "Reset password", gin.H{
		"Token": c.Param("token"),
		"Email": c.Query("email"),
	})
}

// ResetPassword sets the new password and sends the user to the login page
// POST /reset-password
func (ctrl *WebAuthController) ResetPassword(c *gin.Context) {
	locale := middleware.GetLocale(c)
	sess, ok := ctrl.currentSession(c)
	if !ok {
		return
	}

	var form ResetPasswordForm
	err := c.ShouldBind(&form)
	retry := fmt.Sprintf("/reset-password/%s?email=%s", url.PathEscape(form.Token), url.QueryEscape(form.Email))
	old := map[string]string{"email": form.Email}
	if err != nil {
		ctrl.back(c, retry, formErrors(err, locale), old)
		return
	}

	err = ctrl.passwordResetService.ResetPassword(c.Request.Context(), form.Email, form.Token, form.Password, form.PasswordConfirmation)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrPasswordMismatch):
		msg := i18n.T(locale, i18n.ValConfirmed, i18n.Attribute(locale, "password"))
		ctrl.back(c, retry, map[string]string{"password": msg}, old)
		return
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		ctrl.back(c, retry, map[string]string{"email": i18n.T(locale, i18n.MsgResetInvalid)}, old)
		return
	default:
		ctrl.fail(c, err, "web reset password")
		return
	}

	sess.FlashMessage(flashStatus, i18n.T(locale, i18n.MsgResetDone))
	c.Redirect(http.StatusFound, "/login")
}

// formErrors localizes a form binding failure. Malformed bodies report a
// single generic error.
func formErrors(err error, locale language.Tag) map[string]string {
	if fields := validation.Fields(err, locale); fields != nil {
		return fields
	}
	return map[string]string{"form": i18n.T(locale, i18n.MsgValidationFailed)}
}
