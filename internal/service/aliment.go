package service

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmoreau/nutritrack/internal/listquery"
	"github.com/jmoreau/nutritrack/internal/models"
)

// AlimentInput carries the user-editable fields of a food item.
type AlimentInput struct {
	Name            string  `json:"name" validate:"required,max=255"`
	Category        string  `json:"category" validate:"max=100"`
	KcalPer100g     float64 `json:"kcal_per_100g" validate:"gte=0"`
	ProteinGPer100g float64 `json:"protein_g_per_100g" validate:"gte=0"`
	CarbsGPer100g   float64 `json:"carbs_g_per_100g" validate:"gte=0"`
	FatGPer100g     float64 `json:"fat_g_per_100g" validate:"gte=0"`
	Notes           string  `json:"notes"`
}

// AlimentService handles food catalog operations
type AlimentService struct {
	db       *gorm.DB
	validate *validator.Validate
}

// NewAlimentService creates a new AlimentService instance
func NewAlimentService(db *gorm.DB) *AlimentService {
	return &AlimentService{
		db:       db,
		validate: validator.New(),
	}
}

var alimentSortColumns = map[string]string{
	"name": "name",
	"kcal": "kcal_per_100g",
	"prot": "protein_g_per_100g",
	"carb": "carbs_g_per_100g",
	"fat":  "fat_g_per_100g",
}

// List runs one filtered/sorted/paginated query over the user's catalog.
// A requested page past the end clamps to the last page instead of erroring.
func (s *AlimentService) List(ctx context.Context, userID uuid.UUID, p listquery.Params) (models.AlimentPage, error) {
	pageSize := p.PageSize
	if pageSize < 1 {
		pageSize = listquery.DefaultPageSize
	}

	query := s.db.WithContext(ctx).Model(&models.Aliment{}).Where("user_id = ?", userID)

	if cat := strings.TrimSpace(p.Category); cat != "" && !strings.EqualFold(cat, "all") {
		query = query.Where("category = ?", s.resolveCategory(ctx, userID, cat))
	}

	if q := strings.TrimSpace(p.Q); q != "" {
		if s.db.Dialector.Name() == "postgres" {
			query = query.Where("name ILIKE ?", "%"+q+"%")
		} else {
			query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
		}
	}

	query = applyRange(query, "kcal_per_100g", p.KcalMin, p.KcalMax)
	query = applyRange(query, "protein_g_per_100g", p.ProtMin, p.ProtMax)
	query = applyRange(query, "carbs_g_per_100g", p.CarbMin, p.CarbMax)
	query = applyRange(query, "fat_g_per_100g", p.FatMin, p.FatMax)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return models.AlimentPage{}, mapDBError(err)
	}

	pageCount := listquery.PageCount(total, pageSize)
	page := listquery.ClampPage(p.Page, pageCount)

	column, ok := alimentSortColumns[p.SortBy]
	if !ok {
		column = "name"
	}
	dir := "asc"
	if p.SortDir == "desc" {
		dir = "desc"
	}

	var items []models.Aliment
	if err := query.
		Order(column + " " + dir).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error; err != nil {
		return models.AlimentPage{}, mapDBError(err)
	}

	return models.AlimentPage{
		Items:     items,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
		PageCount: pageCount,
	}, nil
}

// Categories returns the distinct non-empty category labels of the user's
// catalog, sorted.
func (s *AlimentService) Categories(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var rows []string
	if err := s.db.WithContext(ctx).
		Model(&models.Aliment{}).
		Where("user_id = ? AND category <> ''", userID).
		Distinct("category").
		Pluck("category", &rows).Error; err != nil {
		return nil, mapDBError(err)
	}
	sort.Strings(rows)
	return rows, nil
}

// resolveCategory maps a category filter onto a stored label. Shared URLs
// carry slugged categories, so a value with no verbatim match is matched by
// slug against the user's labels instead.
func (s *AlimentService) resolveCategory(ctx context.Context, userID uuid.UUID, cat string) string {
	labels, err := s.Categories(ctx, userID)
	if err != nil {
		return cat
	}
	for _, label := range labels {
		if label == cat {
			return cat
		}
	}
	want := Slugify(cat)
	for _, label := range labels {
		if Slugify(label) == want {
			return label
		}
	}
	return cat
}

// Get retrieves one aliment owned by the user.
func (s *AlimentService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Aliment, error) {
	var aliment models.Aliment
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&aliment).Error; err != nil {
		return nil, mapDBError(err)
	}
	return &aliment, nil
}

// Create inserts a new aliment for the user.
func (s *AlimentService) Create(ctx context.Context, userID uuid.UUID, input AlimentInput) (*models.Aliment, error) {
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}
	aliment := models.Aliment{
		UserID:          userID,
		Name:            input.Name,
		Category:        input.Category,
		KcalPer100g:     input.KcalPer100g,
		ProteinGPer100g: input.ProteinGPer100g,
		CarbsGPer100g:   input.CarbsGPer100g,
		FatGPer100g:     input.FatGPer100g,
		Notes:           optionalText(input.Notes),
	}
	if err := s.db.WithContext(ctx).Create(&aliment).Error; err != nil {
		return nil, mapDBError(err)
	}
	return &aliment, nil
}

// Update modifies an aliment owned by the user and returns the stored row.
func (s *AlimentService) Update(ctx context.Context, userID, id uuid.UUID, input AlimentInput) (*models.Aliment, error) {
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}
	aliment, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	aliment.Name = input.Name
	aliment.Category = input.Category
	aliment.KcalPer100g = input.KcalPer100g
	aliment.ProteinGPer100g = input.ProteinGPer100g
	aliment.CarbsGPer100g = input.CarbsGPer100g
	aliment.FatGPer100g = input.FatGPer100g
	aliment.Notes = optionalText(input.Notes)
	if err := s.db.WithContext(ctx).Save(aliment).Error; err != nil {
		return nil, mapDBError(err)
	}
	return aliment, nil
}

// Delete removes an aliment owned by the user.
func (s *AlimentService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Aliment{})
	if result.Error != nil {
		return mapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AlimentService) validateInput(input *AlimentInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Category = strings.TrimSpace(input.Category)
	if err := s.validate.Struct(input); err != nil {
		return ErrInvalid
	}
	return nil
}

// applyRange adds min/max bounds on a column; an inconsistent pair
// (min > max) is ignored rather than producing an empty result.
func applyRange(query *gorm.DB, column string, min, max *float64) *gorm.DB {
	if min != nil && max != nil && *min > *max {
		return query
	}
	if min != nil {
		query = query.Where(column+" >= ?", *min)
	}
	if max != nil {
		query = query.Where(column+" <= ?", *max)
	}
	return query
}

func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
