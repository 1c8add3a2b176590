package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/inkpress/blog-backend/pkg/util"
)

// Flash holds values that survive exactly one redirect.
type Flash struct {
	Messages map[string]string `json:"messages,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
	Old      map[string]string `json:"old,omitempty"`
}

// Data is the persisted session payload.
type Data struct {
	UserID    *uint  `json:"user_id,omitempty"`
	CSRFToken string `json:"csrf_token"`
	Flash     Flash  `json:"flash"`
	Intended  string `json:"intended,omitempty"`
	Remember  bool   `json:"remember,omitempty"`
}

// Session is the per-request view of a stored session.
type Session struct {
	ID   string
	data *Data

	// previous holds the flash written by the previous request.
	previous  Flash
	persisted bool
}

func (s *Session) UserID() (uint, bool) {
	if s.data.UserID == nil {
		return 0, false
	}
	return *s.data.UserID, true
}

func (s *Session) SetUserID(id uint) {
	s.data.UserID = &id
}

func (s *Session) CSRFToken() string {
	return s.data.CSRFToken
}

// VerifyCSRF compares a submitted token with the session token in constant time.
func (s *Session) VerifyCSRF(token string) bool {
	return token != "" && util.SecureCompare(token, s.data.CSRFToken)
}

func (s *Session) Remember() bool {
	return s.data.Remember
}

func (s *Session) SetRemember(remember bool) {
	s.data.Remember = remember
}

// SetIntended records where to go after a successful login.
func (s *Session) SetIntended(url string) {
	s.data.Intended = url
}

// PullIntended returns and forgets the intended URL, or fallback.
func (s *Session) PullIntended(fallback string) string {
	url := s.data.Intended
	s.data.Intended = ""
	if url == "" {
		return fallback
	}
	return url
}

// FlashMessage stores a message for the next request.
func (s *Session) FlashMessage(key, message string) {
	if s.data.Flash.Messages == nil {
		s.data.Flash.Messages = map[string]string{}
	}
	s.data.Flash.Messages[key] = message
}

// FlashErrors stores field errors and the submitted input for the next request.
func (s *Session) FlashErrors(errors map[string]string, old map[string]string) {
	s.data.Flash.Errors = errors
	s.data.Flash.Old = old
}

// Flashed returns what the previous request flashed.
func (s *Session) Flashed() Flash {
	return s.previous
}

// Manager starts, persists and rotates sessions.
type Manager struct {
	store    *Store
	codec    *CookieCodec
	config   Config
	newID    func() string
	newToken func() (string, error)
}

type Config struct {
	CookieName       string
	Lifetime         time.Duration
	RememberLifetime time.Duration
	Secure           bool
}

func NewManager(store *Store, codec *CookieCodec, cfg Config) *Manager {
	return &Manager{
		store:  store,
		codec:  codec,
		config: cfg,
		newID:  uuid.NewString,
		newToken: func() (string, error) {
			return util.RandomString(40)
		},
	}
}

func (m *Manager) CookieName() string {
	return m.config.CookieName
}

// Start loads the session named by the request cookie, or begins a new one.
// Flash data from the previous request moves to Flashed and is cleared.
func (m *Manager) Start(ctx context.Context, r *http.Request) (*Session, error) {
	if cookie, err := r.Cookie(m.config.CookieName); err == nil {
		if id, err := m.codec.Decode(cookie.Value); err == nil {
			data, err := m.store.Load(ctx, id)
			switch {
			case err == nil:
				sess := &Session{ID: id, data: data, previous: data.Flash, persisted: true}
				data.Flash = Flash{}
				return sess, nil
			case !errors.Is(err, ErrNotFound):
				return nil, err
			}
		}
	}
	return m.fresh()
}

func (m *Manager) fresh() (*Session, error) {
	token, err := m.newToken()
	if err != nil {
		return nil, err
	}
	return &Session{ID: m.newID(), data: &Data{CSRFToken: token}}, nil
}

func (m *Manager) lifetime(s *Session) time.Duration {
	if s.data.Remember {
		return m.config.RememberLifetime
	}
	return m.config.Lifetime
}

// Save persists the session and writes its cookie. Untouched anonymous
// sessions are still saved so the CSRF token survives to the next request.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	ttl := m.lifetime(s)
	if err := m.store.Save(ctx, s.ID, s.data, ttl); err != nil {
		return err
	}
	s.persisted = true

	expires := time.Now().Add(ttl)
	value, err := m.codec.Encode(s.ID, expires)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Regenerate moves the session to a new id and drops the old key, keeping
// its data. Called on every privilege change.
func (m *Manager) Regenerate(ctx context.Context, s *Session) error {
	oldID, wasPersisted := s.ID, s.persisted
	s.ID = m.newID()
	s.persisted = false
	if !wasPersisted {
		return nil
	}
	return m.store.Delete(ctx, oldID)
}

// Invalidate destroys the session and replaces it with an empty one that
// carries a rotated CSRF token.
func (m *Manager) Invalidate(ctx context.Context, s *Session) error {
	if s.persisted {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			return err
		}
	}
	fresh, err := m.fresh()
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}
