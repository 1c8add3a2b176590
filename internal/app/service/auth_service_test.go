package service

import (
	"context"
	"testing"

	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{name: "Valid registration", email: "Writer@Example.com"},
		{name: "Duplicate email differing in case", email: "writer@example.COM", wantErr: ErrEmailAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := env.auth.Create(ctx, "Writer", tt.email, "password123")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "writer@example.com", user.Email)
			assert.NotEqual(t, "password123", user.PasswordHash)
		})
	}
}

func TestAuthService_Verify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "writer@example.com", "password123", false)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "Valid credentials", email: "writer@example.com", password: "password123"},
		{name: "Email case ignored", email: " WRITER@example.com", password: "password123"},
		{name: "Wrong password", email: "writer@example.com", password: "wrong-password1", wantErr: ErrInvalidCredentials},
		{name: "Unknown email", email: "nobody@example.com", password: "password123", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := env.auth.Verify(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "writer@example.com", user.Email)
		})
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "writer@example.com", "password123", false)

	bio := "Writes about Go."
	website := "https://writer.example.com"
	github := "https://github.com/writer"

	updated, err := env.auth.UpdateProfile(ctx, user, ProfileUpdate{
		Bio:         Patch[string]{Set: true, Value: &bio},
		Website:     Patch[string]{Set: true, Value: &website},
		SocialLinks: Patch[model.SocialLinks]{Set: true, Value: &model.SocialLinks{GitHub: &github}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Test User", updated.Name)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, bio, *updated.Bio)
	require.NotNil(t, updated.SocialLinks)
	assert.Equal(t, github, *updated.SocialLinks.GitHub)

	name := "Renamed"
	updated, err = env.auth.UpdateProfile(ctx, user, ProfileUpdate{
		Name: &name,
		Bio:  Patch[string]{Set: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Nil(t, updated.Bio)
	require.NotNil(t, updated.Website, "fields not sent stay unchanged")
	assert.Equal(t, website, *updated.Website)
}

func TestAuthService_UpdatePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "writer@example.com", "password123", false)

	require.NoError(t, env.auth.UpdatePassword(ctx, user, "newpassword456"))

	_, err := env.auth.Verify(ctx, "writer@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.auth.Verify(ctx, "writer@example.com", "newpassword456")
	assert.NoError(t, err)
}

func TestAuthService_GetUserByID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "writer@example.com", "password123", false)

	found, err := env.auth.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = env.auth.GetUserByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
