package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pathology is an entry of the shared default condition catalog.
type Pathology struct {
	ID        uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	Code      string    `gorm:"size:10;not null;uniqueIndex" json:"code"`
	Label     string    `gorm:"size:120;not null;uniqueIndex" json:"label"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Pathology) TableName() string {
	return "pathologies"
}

func (p *Pathology) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// UserPathology links a user to a default catalog entry.
type UserPathology struct {
	ID          uuid.UUID  `gorm:"type:uuid;primarykey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_pathologies_pair" json:"user_id"`
	PathologyID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_pathologies_pair" json:"pathology_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Pathology   *Pathology `gorm:"foreignKey:PathologyID" json:"pathology,omitempty"`
}

func (UserPathology) TableName() string {
	return "user_pathologies"
}

func (p *UserPathology) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CustomPathology is a per-user condition entry. Hidden entries stay stored
// but are excluded from the user's active conditions.
type CustomPathology struct {
	ID        uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Label     string    `gorm:"size:120;not null" json:"label"`
	Code      *string   `gorm:"size:10" json:"code"`
	IsHidden  bool      `gorm:"not null;default:false" json:"is_hidden"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CustomPathology) TableName() string {
	return "user_custom_pathologies"
}

func (p *CustomPathology) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
