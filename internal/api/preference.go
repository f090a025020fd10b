package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmoreau/nutritrack/internal/service"
)

// PreferenceHandler exposes per-aliment food preferences.
type PreferenceHandler struct {
	prefs *service.PreferenceService
}

// NewPreferenceHandler creates a new PreferenceHandler instance
func NewPreferenceHandler(prefs *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs}
}

// RegisterRoutes registers the preference routes
func (h *PreferenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	prefs := router.Group("/preferences")
	{
		prefs.GET("", h.Map)
		prefs.PUT("/:alimentId", h.Set)
		prefs.DELETE("/:alimentId", h.Clear)
	}
}

// Map returns the caller's full preference map, aliment id to state.
func (h *PreferenceHandler) Map(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	prefs, err := h.prefs.Map(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

// Set stores a preference state for an aliment, replacing any previous one.
func (h *PreferenceHandler) Set(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	alimentID, ok := pathUUID(c, "alimentId")
	if !ok {
		return
	}

	var req struct {
		Preference string `json:"preference" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.prefs.Set(c.Request.Context(), userID, alimentID, req.Preference); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"aliment_id": alimentID, "preference": req.Preference})
}

// Clear removes a preference. Clearing an absent one succeeds.
func (h *PreferenceHandler) Clear(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	alimentID, ok := pathUUID(c, "alimentId")
	if !ok {
		return
	}

	if err := h.prefs.Clear(c.Request.Context(), userID, alimentID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
