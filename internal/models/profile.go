package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NeedsDisplayAbsolute   = "absolute"
	NeedsDisplayPercentage = "percentage"
)

// JSONBBoolMap stores a field-name -> private? map as JSONB.
type JSONBBoolMap map[string]bool

// Value implements the driver.Valuer interface
func (m JSONBBoolMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface
func (m *JSONBBoolMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONBBoolMap{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Profile holds display and biometric data, one row per user. AvatarKey is
// an opaque object-storage path, never a public URL.
type Profile struct {
	ID               uuid.UUID    `gorm:"type:uuid;primarykey" json:"id"`
	UserID           uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Login            string       `gorm:"size:50;not null;uniqueIndex" json:"login"`
	FirstName        *string      `gorm:"size:60" json:"first_name"`
	LastName         *string      `gorm:"size:60" json:"last_name"`
	Age              *int         `gorm:"check:age >= 0 AND age <= 130" json:"age"`
	HeightCm         *float64     `gorm:"check:height_cm >= 0" json:"height_cm"`
	WeightKg         *float64     `gorm:"check:weight_kg >= 0" json:"weight_kg"`
	BMI              *float64     `json:"bmi"`
	AvatarKey        string       `gorm:"size:255" json:"avatar_key"`
	NeedsKcal        *float64     `json:"needs_kcal"`
	NeedsProteinG    *float64     `json:"needs_protein_g"`
	NeedsCarbsG      *float64     `json:"needs_carbs_g"`
	NeedsFatG        *float64     `json:"needs_fat_g"`
	NeedsDisplayMode string       `gorm:"size:20;not null;default:'absolute'" json:"needs_display_mode"`
	Privacy          JSONBBoolMap `gorm:"type:jsonb;not null;default:'{}'" json:"privacy"`
	IsDisabled       bool         `gorm:"not null;default:false" json:"is_disabled"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
