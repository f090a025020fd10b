package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmoreau/nutritrack/internal/models"
	"github.com/jmoreau/nutritrack/internal/service"
)

// RecipeHandler exposes recipes and their items. Nutrient totals are
// computed on read, never stored.
type RecipeHandler struct {
	recipes *service.RecipeService
}

// NewRecipeHandler creates a new RecipeHandler instance
func NewRecipeHandler(recipes *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

// RegisterRoutes registers the recipe routes
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, mutation ...gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.List)
		recipes.GET("/:id", h.Get)
		recipes.POST("", append(mutation, h.Create)...)
		recipes.PUT("/:id", append(mutation, h.Update)...)
		recipes.DELETE("/:id", append(mutation, h.Delete)...)
		recipes.POST("/:id/items", append(mutation, h.AddItem)...)
	}
	items := router.Group("/recipe-items")
	{
		items.PUT("/:id", append(mutation, h.UpdateItem)...)
		items.DELETE("/:id", append(mutation, h.DeleteItem)...)
	}
}

type recipeResponse struct {
	*models.Recipe
	Totals models.RecipeTotals `json:"totals"`
}

func withTotals(r *models.Recipe) recipeResponse {
	return recipeResponse{
		Recipe: r,
		Totals: models.ComputeRecipeTotals(r.Items, r.Servings),
	}
}

// List returns the caller's recipes with computed totals.
func (h *RecipeHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	recipes, err := h.recipes.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]recipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, withTotals(&recipes[i]))
	}
	c.JSON(http.StatusOK, gin.H{"recipes": out})
}

// Get returns one recipe with computed totals.
func (h *RecipeHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, withTotals(recipe))
}

// Create adds a recipe.
func (h *RecipeHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input service.RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, withTotals(recipe))
}

// Update changes a recipe's name, servings, or notes.
func (h *RecipeHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input service.RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), userID, id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, withTotals(recipe))
}

// Delete removes a recipe and its items.
func (h *RecipeHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddItem appends an ingredient line to a recipe.
func (h *RecipeHandler) AddItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	recipeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input service.RecipeItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.recipes.AddItem(c.Request.Context(), userID, recipeID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdateItem changes an ingredient line's quantity.
func (h *RecipeHandler) UpdateItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		QuantityG float64 `json:"quantity_g"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.recipes.UpdateItem(c.Request.Context(), userID, itemID, req.QuantityG)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteItem removes an ingredient line.
func (h *RecipeHandler) DeleteItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.recipes.DeleteItem(c.Request.Context(), userID, itemID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
