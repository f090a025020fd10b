package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmoreau/nutritrack/internal/models"
)

// ProfileInput updates only the fields it carries; nil pointers leave the
// stored value untouched.
type ProfileInput struct {
	Login            *string             `json:"login" validate:"omitempty,min=3,max=50"`
	FirstName        *string             `json:"first_name" validate:"omitempty,max=60"`
	LastName         *string             `json:"last_name" validate:"omitempty,max=60"`
	Age              *int                `json:"age" validate:"omitempty,gte=0,lte=130"`
	HeightCm         *float64            `json:"height_cm" validate:"omitempty,gte=0,lte=300"`
	WeightKg         *float64            `json:"weight_kg" validate:"omitempty,gte=0,lte=500"`
	NeedsKcal        *float64            `json:"needs_kcal" validate:"omitempty,gte=0,lte=20000"`
	NeedsProteinG    *float64            `json:"needs_protein_g" validate:"omitempty,gte=0,lte=1000"`
	NeedsCarbsG      *float64            `json:"needs_carbs_g" validate:"omitempty,gte=0,lte=2000"`
	NeedsFatG        *float64            `json:"needs_fat_g" validate:"omitempty,gte=0,lte=1000"`
	NeedsDisplayMode *string             `json:"needs_display_mode" validate:"omitempty,oneof=absolute percentage"`
	Privacy          models.JSONBBoolMap `json:"privacy"`
}

// ProfileService handles user profile operations
type ProfileService struct {
	db       *gorm.DB
	validate *validator.Validate
}

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{
		db:       db,
		validate: validator.New(),
	}
}

// Get retrieves a user's profile.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, mapDBError(err)
	}
	return &profile, nil
}

// Upsert applies the provided fields to the user's profile, creating the
// row on first write. BMI is recomputed whenever height and weight are both
// known.
func (s *ProfileService) Upsert(ctx context.Context, userID uuid.UUID, input ProfileInput) (*models.Profile, error) {
	if err := s.validate.Struct(&input); err != nil {
		return nil, ErrInvalid
	}

	var profile models.Profile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.Profile{UserID: userID}
		var user models.User
		if uerr := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; uerr == nil {
			profile.Login = FallbackLogin(user.Email, userID)
		}
	} else if err != nil {
		return nil, mapDBError(err)
	}

	if input.Login != nil {
		profile.Login = strings.TrimSpace(*input.Login)
	}
	if input.FirstName != nil {
		profile.FirstName = input.FirstName
	}
	if input.LastName != nil {
		profile.LastName = input.LastName
	}
	if input.Age != nil {
		profile.Age = input.Age
	}
	if input.HeightCm != nil {
		profile.HeightCm = input.HeightCm
	}
	if input.WeightKg != nil {
		profile.WeightKg = input.WeightKg
	}
	if input.NeedsKcal != nil {
		profile.NeedsKcal = input.NeedsKcal
	}
	if input.NeedsProteinG != nil {
		profile.NeedsProteinG = input.NeedsProteinG
	}
	if input.NeedsCarbsG != nil {
		profile.NeedsCarbsG = input.NeedsCarbsG
	}
	if input.NeedsFatG != nil {
		profile.NeedsFatG = input.NeedsFatG
	}
	if input.NeedsDisplayMode != nil {
		profile.NeedsDisplayMode = *input.NeedsDisplayMode
	}
	if input.Privacy != nil {
		profile.Privacy = input.Privacy
	}

	profile.BMI = ComputeBMI(profile.HeightCm, profile.WeightKg)

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, mapDBError(err)
	}
	return &profile, nil
}

// SetAvatarKey stores the storage object key of the user's avatar.
func (s *ProfileService) SetAvatarKey(ctx context.Context, userID uuid.UUID, key string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("avatar_key", key)
	if result.Error != nil {
		return mapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LoginAvailable reports whether a login is free, case-insensitively,
// ignoring the user's own profile.
func (s *ProfileService) LoginAvailable(ctx context.Context, userID uuid.UUID, login string) (bool, error) {
	candidate := strings.TrimSpace(login)
	if candidate == "" {
		return false, nil
	}
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("LOWER(login) = LOWER(?) AND user_id <> ?", candidate, userID).
		Count(&count).Error; err != nil {
		return false, mapDBError(err)
	}
	return count == 0, nil
}

// ComputeBMI returns weight / (height in m)^2, or nil when either side is
// missing or height is zero.
func ComputeBMI(heightCm, weightKg *float64) *float64 {
	if heightCm == nil || weightKg == nil || *heightCm <= 0 {
		return nil
	}
	m := *heightCm / 100
	bmi := *weightKg / (m * m)
	return &bmi
}
