package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupManager(t *testing.T) (*miniredis.Miniredis, *Manager) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	m := NewManager(NewStore(client), NewCookieCodec("test-app-key"), Config{
		CookieName:       "blog_session",
		Lifetime:         2 * time.Hour,
		RememberLifetime: 30 * 24 * time.Hour,
	})
	return mr, m
}

// roundTrip saves sess and starts the next request with the issued cookie.
func roundTrip(t *testing.T, m *Manager, sess *Session) (*Session, *http.Cookie) {
	t.Helper()
	ctx := context.Background()

	w := httptest.NewRecorder()
	require.NoError(t, m.Save(ctx, w, sess))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	next, err := m.Start(ctx, req)
	require.NoError(t, err)
	return next, cookies[0]
}

func TestManager_StartWithoutCookie(t *testing.T) {
	_, m := setupManager(t)

	sess, err := m.Start(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Len(t, sess.CSRFToken(), 40)
	_, ok := sess.UserID()
	assert.False(t, ok)
}

func TestManager_PersistsAcrossRequests(t *testing.T) {
	_, m := setupManager(t)

	sess, err := m.Start(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUserID(7)

	next, cookie := roundTrip(t, m, sess)
	assert.Equal(t, sess.ID, next.ID)
	assert.Equal(t, sess.CSRFToken(), next.CSRFToken())
	id, ok := next.UserID()
	assert.True(t, ok)
	assert.EqualValues(t, 7, id)

	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int((2 * time.Hour).Seconds()), cookie.MaxAge)
}

func TestManager_FlashLivesOneRequest(t *testing.T) {
	_, m := setupManager(t)

	sess, err := m.Start(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.FlashMessage("success", "Welcome back, Aya!")
	sess.FlashErrors(map[string]string{"email": "bad"}, map[string]string{"email": "aya@example.com"})

	second, _ := roundTrip(t, m, sess)
	assert.Equal(t, "Welcome back, Aya!", second.Flashed().Messages["success"])
	assert.Equal(t, "bad", second.Flashed().Errors["email"])
	assert.Equal(t, "aya@example.com", second.Flashed().Old["email"])

	third, _ := roundTrip(t, m, second)
	assert.Empty(t, third.Flashed().Messages)
	assert.Empty(t, third.Flashed().Errors)
}

func TestManager_Regenerate(t *testing.T) {
	mr, m := setupManager(t)
	ctx := context.Background()

	sess, err := m.Start(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	next, _ := roundTrip(t, m, sess)
	oldID := next.ID
	token := next.CSRFToken()

	require.NoError(t, m.Regenerate(ctx, next))
	assert.NotEqual(t, oldID, next.ID)
	assert.Equal(t, token, next.CSRFToken())
	assert.False(t, mr.Exists("session:"+oldID))

	// the old cookie no longer resolves to the session
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	value, err := m.codec.Encode(oldID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "blog_session", Value: value})
	stale, err := m.Start(ctx, req)
	require.NoError(t, err)
	assert.NotEqual(t, oldID, stale.ID)
}

func TestManager_Invalidate(t *testing.T) {
	mr, m := setupManager(t)
	ctx := context.Background()

	sess, err := m.Start(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUserID(3)
	next, _ := roundTrip(t, m, sess)
	oldID, oldToken := next.ID, next.CSRFToken()

	require.NoError(t, m.Invalidate(ctx, next))

	assert.False(t, mr.Exists("session:"+oldID))
	assert.NotEqual(t, oldID, next.ID)
	assert.NotEqual(t, oldToken, next.CSRFToken())
	_, ok := next.UserID()
	assert.False(t, ok)
}

func TestManager_RememberExtendsLifetime(t *testing.T) {
	mr, m := setupManager(t)

	sess, err := m.Start(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetRemember(true)

	_, cookie := roundTrip(t, m, sess)
	assert.Equal(t, int((30 * 24 * time.Hour).Seconds()), cookie.MaxAge)
	assert.Equal(t, 30*24*time.Hour, mr.TTL("session:"+sess.ID))
}

func TestSession_VerifyCSRF(t *testing.T) {
	s := &Session{data: &Data{CSRFToken: "abc"}}
	assert.True(t, s.VerifyCSRF("abc"))
	assert.False(t, s.VerifyCSRF("abd"))
	assert.False(t, s.VerifyCSRF(""))
}

func TestSession_PullIntended(t *testing.T) {
	s := &Session{data: &Data{}}
	assert.Equal(t, "/dashboard", s.PullIntended("/dashboard"))

	s.SetIntended("/dashboard?tab=tokens")
	assert.Equal(t, "/dashboard?tab=tokens", s.PullIntended("/dashboard"))
	assert.Equal(t, "/dashboard", s.PullIntended("/dashboard"))
}

func TestCookieCodec(t *testing.T) {
	codec := NewCookieCodec("key-one")

	value, err := codec.Encode("session-id", time.Now().Add(time.Hour))
	require.NoError(t, err)

	id, err := codec.Decode(value)
	require.NoError(t, err)
	assert.Equal(t, "session-id", id)

	_, err = NewCookieCodec("key-two").Decode(value)
	assert.ErrorIs(t, err, ErrInvalidCookie)

	expired, err := codec.Encode("session-id", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = codec.Decode(expired)
	assert.ErrorIs(t, err, ErrInvalidCookie)

	_, err = codec.Decode("garbage")
	assert.ErrorIs(t, err, ErrInvalidCookie)
}
