package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, issued, err := env.tokens.Register(ctx, "Writer", "writer@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, TokenName, issued.Token.Name)
	assert.Equal(t, []string{model.AbilityAll}, []string(issued.Token.Abilities))
	assert.True(t, strings.HasPrefix(issued.PlainText, fmt.Sprintf("%d|", issued.Token.ID)))
	assert.NotContains(t, issued.Token.Token, "|", "only the hash is stored")

	_, _, err = env.tokens.Register(ctx, "Other", "WRITER@example.com", "password123")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	authed, _, err := env.tokens.Authenticate(ctx, issued.PlainText)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestTokenService_LoginAbilities(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "writer@example.com", "password123", false)
	env.createUser(t, "admin@example.com", "password123", true)

	tests := []struct {
		name      string
		email     string
		abilities []string
	}{
		{name: "Regular user", email: "writer@example.com", abilities: []string{model.AbilityRead, model.AbilityWrite}},
		{name: "Admin", email: "admin@example.com", abilities: []string{model.AbilityAll}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, issued, err := env.tokens.Login(ctx, tt.email, "password123", "127.0.0.1")
			require.NoError(t, err)
			assert.Equal(t, tt.abilities, []string(issued.Token.Abilities))
			require.NotNil(t, issued.Token.ExpiresAt)
			assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), *issued.Token.ExpiresAt, time.Minute)
		})
	}
}

func TestTokenService_Authenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "writer@example.com", "password123", false)
	_, issued, err := env.tokens.Login(ctx, "writer@example.com", "password123", "127.0.0.1")
	require.NoError(t, err)

	_, secret, _ := strings.Cut(issued.PlainText, "|")

	tests := []struct {
		name  string
		plain string
		ok    bool
	}{
		{name: "Valid token", plain: issued.PlainText, ok: true},
		{name: "Missing separator", plain: secret},
		{name: "Non numeric id", plain: "abc|" + secret},
		{name: "Unknown id", plain: "9999|" + secret},
		{name: "Wrong secret", plain: fmt.Sprintf("%d|%s", issued.Token.ID, strings.Repeat("x", 40))},
		{name: "Empty secret", plain: fmt.Sprintf("%d|", issued.Token.ID)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, token, err := env.tokens.Authenticate(ctx, tt.plain)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrUnauthenticated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "writer@example.com", user.Email)
			assert.NotNil(t, token.LastUsedAt)
		})
	}
}

func TestTokenService_AuthenticateExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "writer@example.com", "password123", false)
	_, issued, err := env.tokens.Login(ctx, "writer@example.com", "password123", "127.0.0.1")
	require.NoError(t, err)

	svc := env.tokens.(*tokenService)
	svc.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }

	_, _, err = env.tokens.Authenticate(ctx, issued.PlainText)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestTokenService_LogoutAndRevoke(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "writer@example.com", "password123", false)

	_, first, err := env.tokens.Login(ctx, "writer@example.com", "password123", "127.0.0.1")
	require.NoError(t, err)
	_, second, err := env.tokens.Login(ctx, "writer@example.com", "password123", "127.0.0.1")
	require.NoError(t, err)

	summaries, err := env.tokens.ListTokens(ctx, user, second.Token)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.False(t, summaries[0].IsCurrent)
	assert.True(t, summaries[1].IsCurrent)

	assert.ErrorIs(t, env.tokens.Revoke(ctx, user, second.Token, second.Token.ID), ErrCannotRevokeCurrent)
	assert.ErrorIs(t, env.tokens.Revoke(ctx, user, second.Token, 9999), ErrTokenNotFound)

	other := env.createUser(t, "other@example.com", "password123", false)
	assert.ErrorIs(t, env.tokens.Revoke(ctx, other, nil, first.Token.ID), ErrTokenNotFound)

	require.NoError(t, env.tokens.Revoke(ctx, user, second.Token, first.Token.ID))
	_, _, err = env.tokens.Authenticate(ctx, first.PlainText)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	require.NoError(t, env.tokens.Logout(ctx, second.Token))
	_, _, err = env.tokens.Authenticate(ctx, second.PlainText)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestTokenService_LogoutAll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "writer@example.com", "password123", false)

	for i := 0; i < 3; i++ {
		_, _, err := env.tokens.Login(ctx, "writer@example.com", "password123", "127.0.0.1")
		require.NoError(t, err)
	}

	revoked, err := env.tokens.LogoutAll(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 3, revoked)

	summaries, err := env.tokens.ListTokens(ctx, user, nil)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestTokenService_Refresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "writer@example.com", "password123", false)
	_, issued, err := env.tokens.Login(ctx, "writer@example.com", "password123", "127.0.0.1")
	require.NoError(t, err)

	refreshed, err := env.tokens.Refresh(ctx, user, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, RefreshedTokenName, refreshed.Token.Name)
	assert.NotEqual(t, issued.Token.ID, refreshed.Token.ID)

	_, _, err = env.tokens.Authenticate(ctx, issued.PlainText)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, _, err = env.tokens.Authenticate(ctx, refreshed.PlainText)
	assert.NoError(t, err)

	// refreshing an already rotated token fails and issues nothing
	_, err = env.tokens.Refresh(ctx, user, issued.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	summaries, err := env.tokens.ListTokens(ctx, user, nil)
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestTokenService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "writer@example.com", "password123", false)

	_, current, err := env.tokens.Login(ctx, "writer@example.com", "password123", "127.0.0.1")
	require.NoError(t, err)
	_, other, err := env.tokens.Login(ctx, "writer@example.com", "password123", "127.0.0.1")
	require.NoError(t, err)

	_, err = env.tokens.ChangePassword(ctx, user, current.Token, "wrong-password1", "newpassword456")
	assert.ErrorIs(t, err, ErrIncorrectCurrentPassword)

	revoked, err := env.tokens.ChangePassword(ctx, user, current.Token, "password123", "newpassword456")
	require.NoError(t, err)
	assert.EqualValues(t, 1, revoked)

	_, _, err = env.tokens.Authenticate(ctx, current.PlainText)
	assert.NoError(t, err)
	_, _, err = env.tokens.Authenticate(ctx, other.PlainText)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = env.auth.Verify(ctx, "writer@example.com", "newpassword456")
	assert.NoError(t, err)
}
