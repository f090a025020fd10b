package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recipe struct {
	ID        uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Servings  int            `gorm:"not null;default:1;check:servings >= 1" json:"servings"`
	Notes     *string        `gorm:"type:text" json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Items     []RecipeItem   `gorm:"foreignKey:RecipeID" json:"items"`
}

func (Recipe) TableName() string {
	return "recipes"
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RecipeItem references an aliment with a quantity in grams. Items keep
// their insertion order via CreatedAt.
type RecipeItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;index" json:"recipe_id"`
	AlimentID uuid.UUID `gorm:"type:uuid;not null" json:"aliment_id"`
	QuantityG float64   `gorm:"not null;check:quantity_g >= 0" json:"quantity_g"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Aliment   *Aliment  `gorm:"foreignKey:AlimentID" json:"aliment,omitempty"`
}

func (RecipeItem) TableName() string {
	return "recipe_items"
}

func (i *RecipeItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
