// seed-technicians loads the technician directory from a CSV file
// (name,email,role per line) and upserts each row keyed by email.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-technicians technicians.csv
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/begoneskadedjur/kundportal-sub005/config"
	"github.com/begoneskadedjur/kundportal-sub005/models"
	"github.com/begoneskadedjur/kundportal-sub005/utils"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: seed-technicians <file.csv>")
		os.Exit(2)
	}

	file, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse csv: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	var created, updated, skipped int
	for i, row := range rows {
		if len(row) < 2 {
			fmt.Fprintf(os.Stderr, "line %d: expected name,email[,role]; skipping\n", i+1)
			skipped++
			continue
		}
		name := strings.TrimSpace(row[0])
		email := strings.ToLower(strings.TrimSpace(row[1]))
		role := ""
		if len(row) > 2 {
			role = strings.TrimSpace(row[2])
		}
		if name == "" || !utils.IsValidEmail(email) {
			fmt.Fprintf(os.Stderr, "line %d: invalid name or email; skipping\n", i+1)
			skipped++
			continue
		}

		var existing models.Technician
		err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
		if err != nil {
			if err != gorm.ErrRecordNotFound {
				fmt.Fprintf(os.Stderr, "line %d: lookup failed: %v\n", i+1, err)
				os.Exit(1)
			}
			t := models.Technician{
				Name:     name,
				Email:    email,
				Role:     role,
				IsActive: utils.NewTrue(),
			}
			if err := db.WithContext(ctx).Create(&t).Error; err != nil {
				fmt.Fprintf(os.Stderr, "line %d: create failed: %v\n", i+1, err)
				os.Exit(1)
			}
			created++
			continue
		}

		if err := db.WithContext(ctx).Model(&models.Technician{}).Where("email = ?", email).Updates(map[string]any{
			"name":      name,
			"role":      role,
			"is_active": utils.NewTrue(),
		}).Error; err != nil {
			fmt.Fprintf(os.Stderr, "line %d: update failed: %v\n", i+1, err)
			os.Exit(1)
		}
		updated++
	}

	_ = models.InvalidateTechnicianCache()
	fmt.Printf("Seeded technicians: created=%d updated=%d skipped=%d\n", created, updated, skipped)
}
