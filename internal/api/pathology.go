package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jmoreau/nutritrack/internal/middleware"
	"github.com/jmoreau/nutritrack/internal/service"
)

// PathologyHandler exposes the shared condition catalog, the caller's
// links and custom entries, and the admin promote flow.
type PathologyHandler struct {
	pathologies *service.PathologyService
}

// NewPathologyHandler creates a new PathologyHandler instance
func NewPathologyHandler(pathologies *service.PathologyService) *PathologyHandler {
	return &PathologyHandler{pathologies: pathologies}
}

// RegisterRoutes registers the pathology routes
func (h *PathologyHandler) RegisterRoutes(router *gin.RouterGroup) {
	pathologies := router.Group("/pathologies")
	{
		pathologies.GET("", h.ListDefaults)
		pathologies.GET("/mine", h.ListMine)
		pathologies.POST("/mine/:id", h.AddMine)
		pathologies.DELETE("/mine/:id", h.RemoveMine)
		pathologies.POST("/:id/demote", h.Demote)

		custom := pathologies.Group("/custom")
		{
			custom.GET("", h.ListCustom)
			custom.POST("", h.AddCustom)
			custom.PATCH("/:id", h.SetCustomHidden)
			custom.DELETE("/:id", h.RemoveCustom)
		}

		admin := pathologies.Group("", middleware.RequireAdmin())
		{
			admin.POST("/promote", h.Promote)
			admin.DELETE("/:id", h.DeleteDefault)
		}
	}
}

// ListDefaults returns the shared catalog.
func (h *PathologyHandler) ListDefaults(c *gin.Context) {
	rows, err := h.pathologies.ListDefaults(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pathologies": rows})
}

// ListMine returns the caller's catalog links.
func (h *PathologyHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	rows, err := h.pathologies.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pathologies": rows})
}

// AddMine links a catalog entry to the caller.
func (h *PathologyHandler) AddMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	link, err := h.pathologies.AddMine(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

// RemoveMine unlinks a catalog entry from the caller.
func (h *PathologyHandler) RemoveMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.pathologies.RemoveMine(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListCustom returns the caller's custom entries.
func (h *PathologyHandler) ListCustom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	rows, err := h.pathologies.ListCustom(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pathologies": rows})
}

// AddCustom records a custom entry, reviving a hidden one with the same
// label instead of duplicating it.
func (h *PathologyHandler) AddCustom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Label string  `json:"label" binding:"required"`
		Code  *string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.pathologies.AddCustom(c.Request.Context(), userID, req.Label, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// SetCustomHidden toggles a custom entry's visibility.
func (h *PathologyHandler) SetCustomHidden(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Hidden *bool `json:"hidden" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.pathologies.SetCustomHidden(c.Request.Context(), userID, id, *req.Hidden); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveCustom deletes a custom entry.
func (h *PathologyHandler) RemoveCustom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.pathologies.RemoveCustom(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Promote copies custom entries into the shared catalog. Admin only.
func (h *PathologyHandler) Promote(c *gin.Context) {
	var req struct {
		IDs []uuid.UUID `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.pathologies.Promote(c.Request.Context(), req.IDs); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Demote copies a shared entry into the caller's custom catalog.
func (h *PathologyHandler) Demote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.pathologies.Demote(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteDefault removes a shared catalog entry. Admin only.
func (h *PathologyHandler) DeleteDefault(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.pathologies.DeleteDefault(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
