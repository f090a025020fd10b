package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jmoreau/nutritrack/internal/cache"
	"github.com/jmoreau/nutritrack/internal/listquery"
	"github.com/jmoreau/nutritrack/internal/models"
	"github.com/jmoreau/nutritrack/internal/service"
)

// AlimentHandler exposes the food catalog. List responses are cached per
// user and parameterization; mutations invalidate every cached view of the
// caller's catalog.
type AlimentHandler struct {
	aliments *service.AlimentService
	cache    *cache.QueryCache
}

// NewAlimentHandler creates a new AlimentHandler instance
func NewAlimentHandler(aliments *service.AlimentService, queryCache *cache.QueryCache) *AlimentHandler {
	return &AlimentHandler{aliments: aliments, cache: queryCache}
}

// RegisterRoutes registers the aliment routes
func (h *AlimentHandler) RegisterRoutes(router *gin.RouterGroup, mutation ...gin.HandlerFunc) {
	aliments := router.Group("/aliments")
	{
		aliments.GET("", h.List)
		aliments.GET("/categories", h.Categories)
		aliments.GET("/:id", h.Get)
		aliments.POST("", append(mutation, h.Create)...)
		aliments.PUT("/:id", append(mutation, h.Update)...)
		aliments.DELETE("/:id", append(mutation, h.Delete)...)
	}
}

func alimentsEntity(userID uuid.UUID) string {
	return "aliments:" + userID.String()
}

// List returns one page of the caller's catalog, filtered and sorted per
// the query string. Unknown or malformed parameters fall back to defaults.
func (h *AlimentHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := listquery.Decode(c.Request.URL.Query())
	page, err := cache.Fetch(c.Request.Context(), h.cache, alimentsEntity(userID), params,
		func(ctx context.Context) (models.AlimentPage, error) {
			return h.aliments.List(ctx, userID, params)
		})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Categories returns the distinct category names in the caller's catalog.
// Cached under the same entity as the listing so mutations drop both.
func (h *AlimentHandler) Categories(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	categories, err := cache.Fetch(c.Request.Context(), h.cache, alimentsEntity(userID), "categories",
		func(ctx context.Context) ([]string, error) {
			return h.aliments.Categories(ctx, userID)
		})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Get returns a single catalog entry.
func (h *AlimentHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	aliment, err := h.aliments.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, aliment)
}

// Create adds a catalog entry.
func (h *AlimentHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input service.AlimentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	aliment, err := h.aliments.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidate(c, userID)
	c.JSON(http.StatusCreated, aliment)
}

// Update replaces a catalog entry.
func (h *AlimentHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input service.AlimentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	aliment, err := h.aliments.Update(c.Request.Context(), userID, id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidate(c, userID)
	c.JSON(http.StatusOK, aliment)
}

// Delete removes a catalog entry.
func (h *AlimentHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.aliments.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}

	h.invalidate(c, userID)
	c.Status(http.StatusNoContent)
}

func (h *AlimentHandler) invalidate(c *gin.Context, userID uuid.UUID) {
	h.cache.CancelReads(alimentsEntity(userID))
	_ = h.cache.Invalidate(c.Request.Context(), alimentsEntity(userID))
}
