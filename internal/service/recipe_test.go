package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmoreau/nutritrack/internal/models"
)

func TestRecipeCreateAndAddItems(t *testing.T) {
	db := setupDB(t)
	user := createTestUser(t, db, "a@example.com")
	svc := NewRecipeService(db)
	ctx := context.Background()

	chicken := createTestAliment(t, db, user.ID, "Poulet", "Viandes", 165)
	rice := createTestAliment(t, db, user.ID, "Riz", "Féculents", 130)

	recipe, err := svc.Create(ctx, user.ID, RecipeInput{Name: "Poulet riz", Servings: 2})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, user.ID, recipe.ID, RecipeItemInput{AlimentID: chicken.ID, QuantityG: 200})
	require.NoError(t, err)
	item, err := svc.AddItem(ctx, user.ID, recipe.ID, RecipeItemInput{AlimentID: rice.ID, QuantityG: 150})
	require.NoError(t, err)
	require.NotNil(t, item.Aliment)
	assert.Equal(t, "Riz", item.Aliment.Name)

	got, err := svc.Get(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)

	totals := models.ComputeRecipeTotals(got.Items, got.Servings)
	assert.InDelta(t, 165*2.0+130*1.5, totals.Kcal, 1e-9)
	assert.InDelta(t, totals.Kcal/2, totals.PerServing.Kcal, 1e-9)
}

func TestRecipeCreateInvalidServings(t *testing.T) {
	db := setupDB(t)
	user := createTestUser(t, db, "a@example.com")
	svc := NewRecipeService(db)

	_, err := svc.Create(context.Background(), user.ID, RecipeInput{Name: "X", Servings: 0})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRecipeOwnership(t *testing.T) {
	db := setupDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	svc := NewRecipeService(db)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, alice.ID, RecipeInput{Name: "Secret", Servings: 1})
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	aliment := createTestAliment(t, db, alice.ID, "Sel", "", 0)
	_, err = svc.AddItem(ctx, bob.ID, recipe.ID, RecipeItemInput{AlimentID: aliment.ID, QuantityG: 5})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecipeUpdateItemQuantity(t *testing.T) {
	db := setupDB(t)
	user := createTestUser(t, db, "a@example.com")
	svc := NewRecipeService(db)
	ctx := context.Background()

	aliment := createTestAliment(t, db, user.ID, "Riz", "", 130)
	recipe, err := svc.Create(ctx, user.ID, RecipeInput{Name: "Riz nature", Servings: 1})
	require.NoError(t, err)
	item, err := svc.AddItem(ctx, user.ID, recipe.ID, RecipeItemInput{AlimentID: aliment.ID, QuantityG: 100})
	require.NoError(t, err)

	updated, err := svc.UpdateItem(ctx, user.ID, item.ID, 250)
	require.NoError(t, err)
	assert.Equal(t, 250.0, updated.QuantityG)

	_, err = svc.UpdateItem(ctx, user.ID, item.ID, -1)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRecipeDeleteRemovesItems(t *testing.T) {
	db := setupDB(t)
	user := createTestUser(t, db, "a@example.com")
	svc := NewRecipeService(db)
	ctx := context.Background()

	aliment := createTestAliment(t, db, user.ID, "Riz", "", 130)
	recipe, err := svc.Create(ctx, user.ID, RecipeInput{Name: "Riz nature", Servings: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, user.ID, recipe.ID, RecipeItemInput{AlimentID: aliment.ID, QuantityG: 100})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, user.ID, recipe.ID))

	var count int64
	require.NoError(t, db.Model(&models.RecipeItem{}).Where("recipe_id = ?", recipe.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	_, err = svc.Get(ctx, user.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecipeDeletedAlimentContributesZero(t *testing.T) {
	items := []models.RecipeItem{
		{AlimentID: uuid.New(), QuantityG: 100, Aliment: &models.Aliment{KcalPer100g: 100}},
		{AlimentID: uuid.New(), QuantityG: 500, Aliment: nil},
	}
	totals := models.ComputeRecipeTotals(items, 1)
	assert.Equal(t, 100.0, totals.Kcal)
}
