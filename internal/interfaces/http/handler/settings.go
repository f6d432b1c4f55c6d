package handler

import (
	"github.com/gin-gonic/gin"
	settingsapp "github.com/retailpos/backend/internal/application/settings"
)

// SettingsHandler handles the store settings endpoints
type SettingsHandler struct {
	BaseHandler
	settings *settingsapp.Service
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings *settingsapp.Service) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get returns the store-wide settings
func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, s)
}

// Update replaces the store-wide settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var req settingsapp.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	s, err := h.settings.Update(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, s)
}
