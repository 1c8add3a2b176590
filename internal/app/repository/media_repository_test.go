package repository

import (
	"context"
	"testing"

	"github.com/inkpress/blog-backend/internal/app/model"
	"github.com/inkpress/blog-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMediaRepository_OwnerScoped(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	ctx := context.Background()
	users := NewUserRepository(testDB)
	repo := NewMediaRepository(testDB)

	owner := newTestUser("owner@example.com")
	other := newTestUser("other@example.com")
	require.NoError(t, users.Create(ctx, owner))
	require.NoError(t, users.Create(ctx, other))

	media := &model.Media{
		UserID:       owner.ID,
		OriginalName: "cat.png",
		FileName:     "0b7c.png",
		MimeType:     "image/png",
		Path:         "media/1/0b7c.png",
		Size:         1024,
		Metadata:     model.MediaMetadata{"width": "640"},
	}
	require.NoError(t, repo.Create(ctx, media))

	found, err := repo.FindByIDForUser(ctx, owner.ID, media.ID)
	require.NoError(t, err)
	assert.Equal(t, "640", found.Metadata["width"])
	assert.Equal(t, "s3", found.Disk)

	_, err = repo.FindByIDForUser(ctx, other.ID, media.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	list, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, media.ID))
	list, err = repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
