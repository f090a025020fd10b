package database

import (
	"gorm.io/gorm"

	"github.com/jmoreau/nutritrack/internal/models"
)

// Migrate creates or updates the schema for all entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Aliment{},
		&models.Recipe{},
		&models.RecipeItem{},
		&models.FoodPreference{},
		&models.Pathology{},
		&models.UserPathology{},
		&models.CustomPathology{},
	)
}
