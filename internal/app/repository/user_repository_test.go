package repository

import (
	"context"
	"testing"
	"time"

	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/inkpress/blog-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*gorm.DB, UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	repo := NewUserRepository(testDB)
	return testDB, repo
}

func newTestUser(email string) *model.User {
	return &model.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hashedpassword",
	}
}

func TestUserRepository_Create(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *model.User
		wantErr error
	}{
		{
			name: "Valid user",
			user: newTestUser("test@example.com"),
		},
		{
			name:    "Duplicate email",
			user:    newTestUser("test@example.com"),
			wantErr: gorm.ErrDuplicatedKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, tt.user.ID)
			}
		})
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	user := newTestUser("author@example.com")
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.FindByEmail(ctx, "author@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "hashedpassword", found.PasswordHash)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	exists, err := repo.ExistsByEmail(ctx, "author@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_FindByID(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	user := newTestUser("test@example.com")
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_UpdateFields(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	bio := "old bio"
	user := newTestUser("test@example.com")
	user.Bio = &bio
	require.NoError(t, repo.Create(ctx, user))

	website := "https://example.com"
	err := repo.UpdateFields(ctx, user.ID, map[string]interface{}{
		"name":    "Renamed",
		"website": &website,
		"bio":     nil,
		"social_links": &model.SocialLinks{
			GitHub: &website,
		},
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Name)
	assert.Nil(t, found.Bio)
	require.NotNil(t, found.Website)
	assert.Equal(t, website, *found.Website)
	require.NotNil(t, found.SocialLinks)
	require.NotNil(t, found.SocialLinks.GitHub)
	assert.Equal(t, website, *found.SocialLinks.GitHub)

	err = repo.UpdateFields(ctx, 9999, map[string]interface{}{"name": "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_TouchLastActive(t *testing.T) {
	_, repo := setupUserTest(t)
	ctx := context.Background()

	user := newTestUser("test@example.com")
	require.NoError(t, repo.Create(ctx, user))

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.TouchLastActive(ctx, user.ID, now))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastActiveAt)
	assert.True(t, found.LastActiveAt.Equal(now))
}

func TestUserRepository_Delete(t *testing.T) {
	testDB, repo := setupUserTest(t)
	ctx := context.Background()
	tokens := NewAccessTokenRepository(testDB)

	user := newTestUser("test@example.com")
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, tokens.Create(ctx, &model.AccessToken{UserID: user.ID, Name: "auth-token", Token: "hash-1"}))

	require.NoError(t, repo.Delete(ctx, user.ID))

	_, err := repo.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	remaining, err := tokens.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestUserRepository_ChangePassword(t *testing.T) {
	testDB, repo := setupUserTest(t)
	ctx := context.Background()
	tokens := NewAccessTokenRepository(testDB)

	user := newTestUser("test@example.com")
	require.NoError(t, repo.Create(ctx, user))

	keep := &model.AccessToken{UserID: user.ID, Name: "auth-token", Token: "keep"}
	require.NoError(t, tokens.Create(ctx, keep))
	require.NoError(t, tokens.Create(ctx, &model.AccessToken{UserID: user.ID, Name: "auth-token", Token: "other"}))

	revoked, err := repo.ChangePassword(ctx, user.ID, "newhash", keep.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, revoked)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", found.PasswordHash)

	remaining, err := tokens.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, keep.ID, remaining[0].ID)

	_, err = repo.ChangePassword(ctx, 9999, "x", 0)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
