package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jmoreau/nutritrack/internal/models"
)

// PreferenceService handles the three-state food preference tags.
type PreferenceService struct {
	db *gorm.DB
}

// NewPreferenceService creates a new PreferenceService instance
func NewPreferenceService(db *gorm.DB) *PreferenceService {
	return &PreferenceService{db: db}
}

// Map returns the user's preferences as aliment id -> state.
func (s *PreferenceService) Map(ctx context.Context, userID uuid.UUID) (map[string]string, error) {
	var rows []models.FoodPreference
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&rows).Error; err != nil {
		return nil, mapDBError(err)
	}
	prefs := make(map[string]string, len(rows))
	for _, row := range rows {
		prefs[row.AlimentID.String()] = row.Preference
	}
	return prefs, nil
}

// Set stores or overwrites the preference for one aliment. Setting the
// same state twice leaves exactly one row per (user, aliment) pair.
func (s *PreferenceService) Set(ctx context.Context, userID, alimentID uuid.UUID, preference string) error {
	if !models.ValidPreference(preference) {
		return ErrInvalid
	}
	pref := models.FoodPreference{
		UserID:     userID,
		AlimentID:  alimentID,
		Preference: preference,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "aliment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"preference", "updated_at"}),
	}).Create(&pref).Error
	return mapDBError(err)
}

// Clear removes the preference for one aliment. Clearing an absent
// preference is a no-op, not an error.
func (s *PreferenceService) Clear(ctx context.Context, userID, alimentID uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND aliment_id = ?", userID, alimentID).
		Delete(&models.FoodPreference{}).Error
	return mapDBError(err)
}
