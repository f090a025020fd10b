package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PreferenceLike    = "like"
	PreferenceDislike = "dislike"
	PreferenceAllergy = "allergy"
)

// FoodPreference is a three-state tag on a (user, aliment) pair. At most one
// row exists per pair; absence means no preference.
type FoodPreference struct {
	ID         uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_food_prefs_user_aliment" json:"user_id"`
	AlimentID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_food_prefs_user_aliment" json:"aliment_id"`
	Preference string    `gorm:"size:20;not null" json:"preference"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (FoodPreference) TableName() string {
	return "user_food_preferences"
}

func (p *FoodPreference) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ValidPreference reports whether s is one of the three allowed states.
func ValidPreference(s string) bool {
	return s == PreferenceLike || s == PreferenceDislike || s == PreferenceAllergy
}
