package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jmoreau/nutritrack/internal/models"
	"github.com/jmoreau/nutritrack/internal/service"
)

// ProfileHandler exposes the caller's profile and avatar. Avatars live in a
// private bucket, so reads return a short-lived signed URL rather than the
// storage key.
type ProfileHandler struct {
	profiles *service.ProfileService
	storage  *service.StorageService
}

// NewProfileHandler creates a new ProfileHandler instance
func NewProfileHandler(profiles *service.ProfileService, storage *service.StorageService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, storage: storage}
}

// RegisterRoutes registers the profile routes
func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.Get)
		profile.PUT("", h.Upsert)
		profile.POST("/avatar", h.UploadAvatar)
		profile.GET("/login-available", h.LoginAvailable)
	}
}

type profileResponse struct {
	*models.Profile
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (h *ProfileHandler) respond(c *gin.Context, status int, p *models.Profile) {
	resp := profileResponse{Profile: p}
	if p.AvatarKey != "" {
		if url, err := h.storage.AvatarURL(c.Request.Context(), p.AvatarKey); err == nil {
			resp.AvatarURL = url
		}
	}
	c.JSON(status, resp)
}

// Get returns the caller's profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respond(c, http.StatusOK, profile)
}

// Upsert creates the caller's profile on first write, then applies partial
// updates. Only fields present in the body change.
func (h *ProfileHandler) Upsert(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input service.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, err := h.profiles.Upsert(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	h.respond(c, http.StatusOK, profile)
}

// UploadAvatar stores a new profile picture and returns its signed URL.
// The previous object, if any, is removed once the new key is recorded.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}
	defer file.Close()

	var previousKey string
	if profile, err := h.profiles.Get(c.Request.Context(), userID); err == nil {
		previousKey = profile.AvatarKey
	}

	key, err := h.storage.UploadAvatar(c.Request.Context(), userID, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.profiles.SetAvatarKey(c.Request.Context(), userID, key); err != nil {
		_ = h.storage.DeleteObject(c.Request.Context(), key)
		respondError(c, err)
		return
	}

	if previousKey != "" && previousKey != key {
		_ = h.storage.DeleteObject(c.Request.Context(), previousKey)
	}

	url, err := h.storage.AvatarURL(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_key": key, "avatar_url": url})
}

// LoginAvailable reports whether a display login is free to claim. The
// caller's own login always reads as available.
func (h *ProfileHandler) LoginAvailable(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	login := strings.TrimSpace(c.Query("login"))
	if login == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "login query parameter is required"})
		return
	}

	available, err := h.profiles.LoginAvailable(c.Request.Context(), userID, login)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"login": login, "available": available})
}
