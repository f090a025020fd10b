package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Aliment is one entry of a user's food catalog. Nutrient values are
// expressed per 100 g. The name is unique per owner; deletes are hard so a
// removed name can be reused right away.
type Aliment struct {
	ID              uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_aliments_owner_name" json:"user_id"`
	Name            string    `gorm:"size:255;not null;uniqueIndex:idx_aliments_owner_name" json:"name"`
	Category        string    `gorm:"size:100" json:"category"`
	KcalPer100g     float64   `gorm:"column:kcal_per_100g;not null;check:kcal_per_100g >= 0" json:"kcal_per_100g"`
	ProteinGPer100g float64   `gorm:"column:protein_g_per_100g;not null;check:protein_g_per_100g >= 0" json:"protein_g_per_100g"`
	CarbsGPer100g   float64   `gorm:"column:carbs_g_per_100g;not null;check:carbs_g_per_100g >= 0" json:"carbs_g_per_100g"`
	FatGPer100g     float64   `gorm:"column:fat_g_per_100g;not null;check:fat_g_per_100g >= 0" json:"fat_g_per_100g"`
	Notes           *string   `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Aliment) TableName() string {
	return "aliments"
}

func (a *Aliment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AlimentPage is one page of a filtered/sorted aliment listing.
// Page is always within [1, PageCount] and PageCount is at least 1.
type AlimentPage struct {
	Items     []Aliment `json:"items"`
	Total     int64     `json:"total"`
	Page      int       `json:"page"`
	PageSize  int       `json:"pageSize"`
	PageCount int       `json:"pageCount"`
}
