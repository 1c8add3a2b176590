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

func TestPasswordResetRepository_UpsertReplacesPrevious(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	repo := NewPasswordResetRepository(testDB)
	ctx := context.Background()
	email := "reader@example.com"

	first := time.Now().Add(-30 * time.Minute).UTC().Truncate(time.Second)
	require.NoError(t, repo.Upsert(ctx, &model.PasswordResetToken{Email: email, Token: "first", CreatedAt: first}))

	second := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Upsert(ctx, &model.PasswordResetToken{Email: email, Token: "second", CreatedAt: second}))

	found, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, "second", found.Token)
	assert.True(t, found.CreatedAt.Equal(second))

	var count int64
	require.NoError(t, testDB.Model(&model.PasswordResetToken{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, repo.DeleteByEmail(ctx, email))
	_, err = repo.FindByEmail(ctx, email)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPasswordResetRepository_DeleteOlderThan(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	repo := NewPasswordResetRepository(testDB)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Upsert(ctx, &model.PasswordResetToken{Email: "stale@example.com", Token: "x", CreatedAt: now.Add(-2 * time.Hour)}))
	require.NoError(t, repo.Upsert(ctx, &model.PasswordResetToken{Email: "fresh@example.com", Token: "y", CreatedAt: now}))

	deleted, err := repo.DeleteOlderThan(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = repo.FindByEmail(ctx, "fresh@example.com")
	assert.NoError(t, err)
}

func TestPasswordResetRepository_Consume(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	ctx := context.Background()
	users := NewUserRepository(testDB)
	tokens := NewAccessTokenRepository(testDB)
	repo := NewPasswordResetRepository(testDB)

	user := newTestUser("reader@example.com")
	require.NoError(t, users.Create(ctx, user))
	require.NoError(t, tokens.Create(ctx, &model.AccessToken{UserID: user.ID, Name: "auth-token", Token: "t1"}))
	require.NoError(t, repo.Upsert(ctx, &model.PasswordResetToken{Email: user.Email, Token: "hash", CreatedAt: time.Now()}))

	reset, err := repo.FindByEmail(ctx, user.Email)
	require.NoError(t, err)

	revoked, err := repo.Consume(ctx, reset, user.ID, "newhash")
	require.NoError(t, err)
	assert.EqualValues(t, 1, revoked)

	_, err = repo.Consume(ctx, reset, user.ID, "otherhash")
	assert.ErrorIs(t, err, ErrResetTokenConsumed)

	_, err = repo.FindByEmail(ctx, user.Email)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	found, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", found.PasswordHash)
}

func TestPasswordResetRepository_ConsumeReplacedToken(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	ctx := context.Background()
	users := NewUserRepository(testDB)
	tokens := NewAccessTokenRepository(testDB)
	repo := NewPasswordResetRepository(testDB)

	user := newTestUser("reader@example.com")
	require.NoError(t, users.Create(ctx, user))
	require.NoError(t, tokens.Create(ctx, &model.AccessToken{UserID: user.ID, Name: "auth-token", Token: "t1"}))
	require.NoError(t, repo.Upsert(ctx, &model.PasswordResetToken{Email: user.Email, Token: "old", CreatedAt: time.Now()}))

	checked, err := repo.FindByEmail(ctx, user.Email)
	require.NoError(t, err)

	// a new reset request lands between the check and the consume
	require.NoError(t, repo.Upsert(ctx, &model.PasswordResetToken{Email: user.Email, Token: "new", CreatedAt: time.Now()}))

	_, err = repo.Consume(ctx, checked, user.ID, "newhash")
	assert.ErrorIs(t, err, ErrResetTokenConsumed)

	current, err := repo.FindByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, "new", current.Token)

	found, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, found.PasswordHash)

	remaining, err := tokens.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
