package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jmoreau/nutritrack/internal/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Aliment{},
		&models.Recipe{},
		&models.RecipeItem{},
		&models.FoodPreference{},
		&models.Pathology{},
		&models.UserPathology{},
		&models.CustomPathology{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		PasswordHash: "x",
		Role:         "user",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func floatPtr(f float64) *float64 { return &f }

func createTestAliment(t *testing.T, db *gorm.DB, userID uuid.UUID, name, category string, kcal float64) *models.Aliment {
	t.Helper()
	aliment := models.Aliment{
		UserID:      userID,
		Name:        name,
		Category:    category,
		KcalPer100g: kcal,
	}
	require.NoError(t, db.Create(&aliment).Error)
	return &aliment
}
