// Seeds the database with an admin account and the default pathology
// catalog. Safe to run repeatedly: existing rows are left untouched.
package main

import (
	"errors"
	"log"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/jmoreau/nutritrack/config"
	"github.com/jmoreau/nutritrack/internal/database"
	"github.com/jmoreau/nutritrack/internal/models"
	"github.com/jmoreau/nutritrack/internal/service"
)

var defaultPathologies = []string{
	"Diabète Type 1",
	"Diabète Type 2",
	"Hypertension",
	"Hypercholestérolémie",
	"Maladie cœliaque",
	"Insuffisance rénale",
	"Intolérance au lactose",
	"Syndrome de l'intestin irritable",
	"Goutte",
	"Anémie",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	if err := seedAdmin(db); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	if err := seedPathologies(db); err != nil {
		log.Fatalf("failed to seed pathologies: %v", err)
	}

	log.Println("seed complete")
}

func seedAdmin(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@nutritrack.local"
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.Printf("admin %s already exists", email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = uuid.NewString()
		log.Printf("ADMIN_PASSWORD not set, generated password: %s", password)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         "admin",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	profile := models.Profile{
		UserID: admin.ID,
		Login:  service.FallbackLogin(email, admin.ID),
	}
	if err := db.Create(&profile).Error; err != nil {
		return err
	}

	log.Printf("created admin %s", email)
	return nil
}

func seedPathologies(db *gorm.DB) error {
	for _, label := range defaultPathologies {
		var count int64
		if err := db.Model(&models.Pathology{}).
			Where("LOWER(label) = LOWER(?)", label).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		entry := models.Pathology{
			Code:  service.CodeFromLabel(label),
			Label: label,
		}
		if err := db.Create(&entry).Error; err != nil {
			return err
		}
		log.Printf("created pathology %s (%s)", entry.Label, entry.Code)
	}
	return nil
}
