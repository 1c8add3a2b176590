package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/inkpress/blog-backend/internal/app/repository"
	"github.com/inkpress/blog-backend/internal/app/service"
	"github.com/inkpress/blog-backend/internal/db"
	"github.com/inkpress/blog-backend/pkg/logger"
	"github.com/inkpress/blog-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	util.SetHashCost(bcrypt.MinCost)
	logger.Initialize(logger.Config{Level: "disabled"})
	m.Run()
}

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "users.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadUsersFromXLSX(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"name", "email", "password", "is_admin"},
		{"Alice", " Alice@Example.com ", "password123", "yes"},
		{"Bob", "bob@example.com", "password456"},
		{"", "nobody@example.com", "password789", "no"},
		{"Carol", "carol@example.com", "password000", "TRUE"},
	})

	users, skipped, err := readUsersFromXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, users, 3)

	assert.Equal(t, "alice@example.com", users[0].Email)
	assert.True(t, users[0].IsAdmin)
	assert.Equal(t, 2, users[0].Row)
	assert.False(t, users[1].IsAdmin)
	assert.True(t, users[2].IsAdmin)
	assert.Equal(t, 5, users[2].Row)
}

func TestReadUsersFromXLSX_MissingFile(t *testing.T) {
	_, _, err := readUsersFromXLSX(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestParseFlag(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"yes", true},
		{"Y", true},
		{"1", true},
		{"true", true},
		{"", false},
		{"no", false},
		{"0", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseFlag(tt.in), tt.in)
	}
}

func TestImportUsers(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	userRepo := repository.NewUserRepository(testDB)
	auth := service.NewAuthService(userRepo)
	ctx := context.Background()

	_, err = auth.Create(ctx, "Existing", "existing@example.com", "password123")
	require.NoError(t, err)

	result := importUsers(ctx, auth, userRepo, []seedUser{
		{Row: 2, Name: "Admin", Email: "admin@example.com", Password: "password123", IsAdmin: true},
		{Row: 3, Name: "Existing", Email: "existing@example.com", Password: "password123"},
		{Row: 4, Name: "Writer", Email: "writer@example.com", Password: "password123"},
	})

	assert.Equal(t, importResult{Created: 2, Duplicates: 1}, result)

	admin, err := userRepo.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	writer, err := userRepo.FindByEmail(ctx, "writer@example.com")
	require.NoError(t, err)
	assert.False(t, writer.IsAdmin)
	assert.True(t, util.VerifyPassword(writer.PasswordHash, "password123"))
}
