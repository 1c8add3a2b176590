package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/inkpress/blog-backend/config"
	"github.com/inkpress/blog-backend/internal/app/repository"
	"github.com/inkpress/blog-backend/internal/app/service"
	"github.com/inkpress/blog-backend/internal/db"
	"github.com/inkpress/blog-backend/pkg/logger"
	"github.com/inkpress/blog-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

// seedUser is one spreadsheet row: name | email | password | is_admin.
type seedUser struct {
	Row      int
	Name     string
	Email    string
	Password string
	IsAdmin  bool
}

type importResult struct {
	Created    int
	Duplicates int
	Failed     int
}

func main() {
	assumeYes := flag.Bool("y", false, "import without asking for confirmation")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: go run cmd/seed/main.go [-y] <xlsx_file_path>")
	}
	filePath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{Level: "warn", Format: "console"})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	users, skipped, err := readUsersFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Users to import: %d (skipped %d incomplete rows)\n", len(users), skipped)

	if !*assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	result := importUsers(context.Background(), service.NewAuthService(userRepo), userRepo, users)

	fmt.Println("Import completed!")
	fmt.Printf("Created: %d, duplicates: %d, failed: %d\n", result.Created, result.Duplicates, result.Failed)
	if result.Failed > 0 {
		os.Exit(1)
	}
}

func readUsersFromXLSX(filePath string) ([]seedUser, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	var users []seedUser
	skipped := 0

	// first row is the header
	for i, row := range rows[1:] {
		cell := func(n int) string {
			if n < len(row) {
				return strings.TrimSpace(row[n])
			}
			return ""
		}

		u := seedUser{
			Row:      i + 2,
			Name:     cell(0),
			Email:    util.NormalizeEmail(cell(1)),
			Password: cell(2),
			IsAdmin:  parseFlag(cell(3)),
		}
		if u.Name == "" || u.Email == "" || u.Password == "" {
			skipped++
			continue
		}
		users = append(users, u)
	}

	return users, skipped, nil
}

// parseFlag accepts the usual spreadsheet spellings of true.
func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "y", "o", "x":
		return true
	}
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func importUsers(ctx context.Context, auth service.AuthService, userRepo repository.UserRepository, users []seedUser) importResult {
	var result importResult

	for _, u := range users {
		created, err := auth.Create(ctx, u.Name, u.Email, u.Password)
		if err != nil {
			if errors.Is(err, service.ErrEmailAlreadyExists) {
				result.Duplicates++
				continue
			}
			fmt.Printf("Row %d (%s): %v\n", u.Row, u.Email, err)
			result.Failed++
			continue
		}

		if u.IsAdmin {
			if err := userRepo.UpdateFields(ctx, created.ID, map[string]interface{}{"is_admin": true}); err != nil {
				fmt.Printf("Row %d (%s): failed to grant admin: %v\n", u.Row, u.Email, err)
				result.Failed++
				continue
			}
		}
		result.Created++
	}

	return result
}
