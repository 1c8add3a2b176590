package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/inkpress/blog-backend/internal/app/service"
	apperrors "github.com/inkpress/blog-backend/internal/errors"
	"github.com/inkpress/blog-backend/internal/i18n"
	"github.com/inkpress/blog-backend/internal/session"
)

const (
	sessionKey = "session"

	// CSRFField is the form field carrying the CSRF token.
	CSRFField = "_token"
	// CSRFHeader carries the CSRF token for script requests.
	CSRFHeader = "X-CSRF-Token"
)

// UserResolver loads the user stored in a session.
type UserResolver interface {
	CurrentUser(ctx context.Context, id uint) (*model.User, error)
}

type SessionMiddleware struct {
	manager *session.Manager
	users   UserResolver
}

func NewSessionMiddleware(manager *session.Manager, users UserResolver) *SessionMiddleware {
	return &SessionMiddleware{manager: manager, users: users}
}

// sessionWriter persists the session right before the response headers go
// out, so handlers can rotate or fill the session until they respond.
type sessionWriter struct {
	gin.ResponseWriter
	once   sync.Once
	commit func()
}

func (w *sessionWriter) flush() {
	w.once.Do(w.commit)
}

func (w *sessionWriter) WriteHeader(code int) {
	w.flush()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) WriteHeaderNow() {
	w.flush()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(data []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(data)
}

func (w *sessionWriter) WriteString(s string) (int, error) {
	w.flush()
	return w.ResponseWriter.WriteString(s)
}

// StartSession loads or begins the browser session for the request.
func (m *SessionMiddleware) StartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		sess, err := m.manager.Start(c.Request.Context(), c.Request)
		if err != nil {
			log.Error("Failed to start session", err)
			apperrors.InternalError(c, i18n.T(GetLocale(c), i18n.MsgInternalError))
			return
		}
		c.Set(sessionKey, sess)

		original := c.Writer
		w := &sessionWriter{ResponseWriter: original}
		w.commit = func() {
			if err := m.manager.Save(c.Request.Context(), original, sess); err != nil {
				log.Error("Failed to save session", err, map[string]interface{}{
					"path": c.Request.URL.Path,
				})
			}
		}
		c.Writer = w

		c.Next()

		w.flush()
		c.Writer = original
	}
}

// VerifyCSRF rejects state-changing requests whose token does not match
// the session's.
func (m *SessionMiddleware) VerifyCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		sess, ok := GetSession(c)
		if !ok {
			apperrors.PageExpired(c, i18n.T(GetLocale(c), i18n.MsgPageExpired))
			return
		}

		token := c.PostForm(CSRFField)
		if token == "" {
			token = c.GetHeader(CSRFHeader)
		}
		if !sess.VerifyCSRF(token) {
			GetLoggerFromContext(c).Warn("CSRF token mismatch", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.PageExpired(c, i18n.T(GetLocale(c), i18n.MsgPageExpired))
			return
		}
		c.Next()
	}
}

// currentUser resolves the session's user. A session pointing at a deleted
// user is reset.
func (m *SessionMiddleware) currentUser(c *gin.Context, sess *session.Session) (*model.User, bool, error) {
	id, ok := sess.UserID()
	if !ok {
		return nil, false, nil
	}
	user, err := m.users.CurrentUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return nil, false, m.manager.Invalidate(c.Request.Context(), sess)
		}
		return nil, false, err
	}
	return user, true, nil
}

// Authenticated requires a signed-in session. Guests are sent to loginPath
// and their GET target is remembered for after login.
func (m *SessionMiddleware) Authenticated(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := GetSession(c)
		if !ok {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}

		user, ok, err := m.currentUser(c, sess)
		if err != nil {
			GetLoggerFromContext(c).Error("Failed to load session user", err)
			apperrors.InternalError(c, i18n.T(GetLocale(c), i18n.MsgInternalError))
			return
		}
		if !ok {
			if c.Request.Method == http.MethodGet {
				sess.SetIntended(c.Request.URL.RequestURI())
			}
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// Guest keeps signed-in users away from the login and register pages.
func (m *SessionMiddleware) Guest(homePath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := GetSession(c)
		if ok {
			_, signedIn, err := m.currentUser(c, sess)
			if err != nil {
				GetLoggerFromContext(c).Error("Failed to load session user", err)
				apperrors.InternalError(c, i18n.T(GetLocale(c), i18n.MsgInternalError))
				return
			}
			if signedIn {
				c.Redirect(http.StatusFound, homePath)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

// GetSession returns the session started by StartSession.
func GetSession(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok
}
