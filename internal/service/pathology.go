package service

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/jmoreau/nutritrack/internal/models"
)

// PathologyService manages the shared default condition catalog, per-user
// custom entries, and the promote/demote flows between the two.
type PathologyService struct {
	db *gorm.DB
}

// NewPathologyService creates a new PathologyService instance
func NewPathologyService(db *gorm.DB) *PathologyService {
	return &PathologyService{db: db}
}

// ListDefaults returns the shared catalog sorted by label.
func (s *PathologyService) ListDefaults(ctx context.Context) ([]models.Pathology, error) {
	var rows []models.Pathology
	if err := s.db.WithContext(ctx).Order("label ASC").Find(&rows).Error; err != nil {
		return nil, mapDBError(err)
	}
	return rows, nil
}

// ListMine returns the user's links to default catalog entries, joined.
func (s *PathologyService) ListMine(ctx context.Context, userID uuid.UUID) ([]models.UserPathology, error) {
	var rows []models.UserPathology
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Pathology").
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, mapDBError(err)
	}
	return rows, nil
}

// AddMine links a default catalog entry to the user.
func (s *PathologyService) AddMine(ctx context.Context, userID, pathologyID uuid.UUID) (*models.UserPathology, error) {
	link := models.UserPathology{
		UserID:      userID,
		PathologyID: pathologyID,
	}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		return nil, mapDBError(err)
	}
	if err := s.db.WithContext(ctx).Preload("Pathology").First(&link, "id = ?", link.ID).Error; err != nil {
		return nil, mapDBError(err)
	}
	return &link, nil
}

// RemoveMine unlinks a default catalog entry from the user.
func (s *PathologyService) RemoveMine(ctx context.Context, userID, pathologyID uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND pathology_id = ?", userID, pathologyID).
		Delete(&models.UserPathology{}).Error
	return mapDBError(err)
}

// ListCustom returns the user's custom entries, hidden ones included.
func (s *PathologyService) ListCustom(ctx context.Context, userID uuid.UUID) ([]models.CustomPathology, error) {
	var rows []models.CustomPathology
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, mapDBError(err)
	}
	return rows, nil
}

// AddCustom records a custom entry. Adding a label that already exists for
// the user is idempotent: a hidden entry is revived, an active one is
// returned as-is.
func (s *PathologyService) AddCustom(ctx context.Context, userID uuid.UUID, label string, code *string) (*models.CustomPathology, error) {
	sanitized := strings.TrimSpace(label)
	if len(sanitized) < 2 {
		return nil, ErrInvalid
	}

	var existing models.CustomPathology
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(label) = LOWER(?)", userID, sanitized).
		First(&existing).Error
	if err == nil {
		if existing.IsHidden {
			existing.IsHidden = false
			if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
				return nil, mapDBError(err)
			}
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, mapDBError(err)
	}

	entry := models.CustomPathology{
		UserID: userID,
		Label:  sanitized,
	}
	if code != nil && strings.TrimSpace(*code) != "" {
		trimmed := strings.ToUpper(strings.TrimSpace(*code))
		entry.Code = &trimmed
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, mapDBError(err)
	}
	return &entry, nil
}

// SetCustomHidden toggles visibility of a custom entry.
func (s *PathologyService) SetCustomHidden(ctx context.Context, userID, id uuid.UUID, hidden bool) error {
	result := s.db.WithContext(ctx).
		Model(&models.CustomPathology{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("is_hidden", hidden)
	if result.Error != nil {
		return mapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveCustom deletes a custom entry.
func (s *PathologyService) RemoveCustom(ctx context.Context, userID, id uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.CustomPathology{}).Error
	return mapDBError(err)
}

// Promote copies custom entries into the default catalog. Entries whose
// derived code or label collides with an existing default are skipped, not
// overwritten. The custom rows are left in place.
func (s *PathologyService) Promote(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	var customs []models.CustomPathology
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&customs).Error; err != nil {
		return mapDBError(err)
	}
	for _, c := range customs {
		code := CodeFromLabel(c.Label)
		if c.Code != nil && strings.TrimSpace(*c.Code) != "" {
			code = strings.ToUpper(strings.TrimSpace(*c.Code))
		}
		var count int64
		if err := s.db.WithContext(ctx).
			Model(&models.Pathology{}).
			Where("code = ? OR LOWER(label) = LOWER(?)", code, c.Label).
			Count(&count).Error; err != nil {
			return mapDBError(err)
		}
		if count > 0 {
			continue
		}
		entry := models.Pathology{Code: code, Label: c.Label}
		if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
			if errors.Is(mapDBError(err), ErrConflict) {
				continue
			}
			return mapDBError(err)
		}
	}
	return nil
}

// Demote copies a default catalog entry into the user's custom catalog.
// The default row stays until an explicit delete; demoting an entry the
// user already has as a custom label is a no-op.
func (s *PathologyService) Demote(ctx context.Context, userID, pathologyID uuid.UUID) error {
	var def models.Pathology
	if err := s.db.WithContext(ctx).First(&def, "id = ?", pathologyID).Error; err != nil {
		return mapDBError(err)
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.CustomPathology{}).
		Where("user_id = ? AND LOWER(label) = LOWER(?)", userID, def.Label).
		Count(&count).Error; err != nil {
		return mapDBError(err)
	}
	if count > 0 {
		return nil
	}

	code := def.Code
	entry := models.CustomPathology{
		UserID: userID,
		Label:  def.Label,
		Code:   &code,
	}
	return mapDBError(s.db.WithContext(ctx).Create(&entry).Error)
}

// DeleteDefault removes a default catalog entry and its user links.
func (s *PathologyService) DeleteDefault(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pathology_id = ?", id).Delete(&models.UserPathology{}).Error; err != nil {
			return mapDBError(err)
		}
		result := tx.Delete(&models.Pathology{}, "id = ?", id)
		if result.Error != nil {
			return mapDBError(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// stripDiacritics removes combining marks: "Diabète" -> "Diabete".
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// CodeFromLabel derives a two-character catalog code from a label:
// first letter of the first word, then the first digit if any, else the
// second word's initial, else the second letter. "Diabète Type 2" -> "D2".
func CodeFromLabel(label string) string {
	cleaned := stripDiacritics(label)
	var b strings.Builder
	for _, r := range cleaned {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	words := strings.Fields(b.String())
	if len(words) == 0 {
		return "CU"
	}

	first := strings.ToUpper(string([]rune(words[0])[0]))

	second := ""
	for _, r := range b.String() {
		if unicode.IsDigit(r) {
			second = string(r)
			break
		}
	}
	if second == "" && len(words) > 1 {
		second = strings.ToUpper(string([]rune(words[1])[0]))
	}
	if second == "" {
		runes := []rune(words[0])
		if len(runes) > 1 {
			second = strings.ToUpper(string(runes[1]))
		} else {
			second = "U"
		}
	}
	return first + second
}

// Slugify lowers, strips diacritics and collapses non-alphanumerics into
// hyphens: "Fruits à coque" -> "fruits-a-coque".
func Slugify(label string) string {
	cleaned := strings.ToLower(stripDiacritics(label))
	var b strings.Builder
	lastHyphen := true
	for _, r := range cleaned {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
