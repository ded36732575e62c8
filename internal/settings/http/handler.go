package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/camp-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/camp-booking-backend/internal/settings"
)

type Handler struct {
	service settings.Service
}

func NewHandler(service settings.Service) *Handler {
	return &Handler{service: service}
}

// Get serves the live pricing configuration. Browsers must never cache it.
func (h *Handler) Get(c *gin.Context) {
	s, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.NoStore(c)
	c.JSON(http.StatusOK, s)
}

func (h *Handler) Patch(c *gin.Context) {
	var body PatchSettingsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s, err := h.service.Patch(c.Request.Context(), body.toPatch())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, PatchSettingsResponse{Success: true, Settings: s})
}
