package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmoreau/nutritrack/internal/models"
)

// RecipeInput carries the user-editable fields of a recipe.
type RecipeInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Servings int    `json:"servings" validate:"gte=1"`
	Notes    string `json:"notes"`
}

// RecipeItemInput references an aliment with a quantity in grams.
type RecipeItemInput struct {
	AlimentID uuid.UUID `json:"aliment_id" validate:"required"`
	QuantityG float64   `json:"quantity_g" validate:"gte=0"`
}

// RecipeService handles recipe operations
type RecipeService struct {
	db       *gorm.DB
	validate *validator.Validate
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{
		db:       db,
		validate: validator.New(),
	}
}

// List returns the user's recipes with items and their aliments joined,
// items in insertion order.
func (s *RecipeService) List(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	var recipes []models.Recipe
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_items.created_at ASC")
		}).
		Preload("Items.Aliment").
		Order("name ASC").
		Find(&recipes).Error; err != nil {
		return nil, mapDBError(err)
	}
	return recipes, nil
}

// Get retrieves one recipe owned by the user, items joined.
func (s *RecipeService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_items.created_at ASC")
		}).
		Preload("Items.Aliment").
		First(&recipe).Error; err != nil {
		return nil, mapDBError(err)
	}
	return &recipe, nil
}

// Create inserts a new recipe for the user.
func (s *RecipeService) Create(ctx context.Context, userID uuid.UUID, input RecipeInput) (*models.Recipe, error) {
	if err := s.validateRecipe(&input); err != nil {
		return nil, err
	}
	recipe := models.Recipe{
		UserID:   userID,
		Name:     input.Name,
		Servings: input.Servings,
		Notes:    optionalText(input.Notes),
	}
	if err := s.db.WithContext(ctx).Create(&recipe).Error; err != nil {
		return nil, mapDBError(err)
	}
	return &recipe, nil
}

// Update modifies a recipe owned by the user.
func (s *RecipeService) Update(ctx context.Context, userID, id uuid.UUID, input RecipeInput) (*models.Recipe, error) {
	if err := s.validateRecipe(&input); err != nil {
		return nil, err
	}
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&recipe).Error; err != nil {
		return nil, mapDBError(err)
	}
	recipe.Name = input.Name
	recipe.Servings = input.Servings
	recipe.Notes = optionalText(input.Notes)
	if err := s.db.WithContext(ctx).Save(&recipe).Error; err != nil {
		return nil, mapDBError(err)
	}
	return s.Get(ctx, userID, id)
}

// Delete removes a recipe and its items.
func (s *RecipeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	recipe, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeItem{}).Error; err != nil {
			return mapDBError(err)
		}
		if err := tx.Delete(&models.Recipe{}, "id = ?", recipe.ID).Error; err != nil {
			return mapDBError(err)
		}
		return nil
	})
}

// AddItem appends an aliment reference to a recipe owned by the user.
func (s *RecipeService) AddItem(ctx context.Context, userID, recipeID uuid.UUID, input RecipeItemInput) (*models.RecipeItem, error) {
	if err := s.validate.Struct(&input); err != nil {
		return nil, ErrInvalid
	}
	if _, err := s.Get(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	item := models.RecipeItem{
		RecipeID:  recipeID,
		AlimentID: input.AlimentID,
		QuantityG: input.QuantityG,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, mapDBError(err)
	}
	// return with the aliment joined
	if err := s.db.WithContext(ctx).Preload("Aliment").First(&item, "id = ?", item.ID).Error; err != nil {
		return nil, mapDBError(err)
	}
	return &item, nil
}

// UpdateItem changes the quantity of one recipe item.
func (s *RecipeService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantityG float64) (*models.RecipeItem, error) {
	if quantityG < 0 {
		return nil, ErrInvalid
	}
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	item.QuantityG = quantityG
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, mapDBError(err)
	}
	if err := s.db.WithContext(ctx).Preload("Aliment").First(item, "id = ?", item.ID).Error; err != nil {
		return nil, mapDBError(err)
	}
	return item, nil
}

// DeleteItem removes one recipe item.
func (s *RecipeService) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	return mapDBError(s.db.WithContext(ctx).Delete(&models.RecipeItem{}, "id = ?", item.ID).Error)
}

// ownedItem loads an item only when its recipe belongs to the user.
func (s *RecipeService) ownedItem(ctx context.Context, userID, itemID uuid.UUID) (*models.RecipeItem, error) {
	var item models.RecipeItem
	if err := s.db.WithContext(ctx).
		Joins("JOIN recipes ON recipes.id = recipe_items.recipe_id").
		Where("recipe_items.id = ? AND recipes.user_id = ?", itemID, userID).
		First(&item).Error; err != nil {
		return nil, mapDBError(err)
	}
	return &item, nil
}

func (s *RecipeService) validateRecipe(input *RecipeInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if err := s.validate.Struct(input); err != nil {
		return ErrInvalid
	}
	return nil
}
