package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, adminMiddleware ...gin.HandlerFunc) {
	group := g.Group("/settings")

	// === Public Routes ===
	group.GET("", h.Get)

	// === Admin Routes ===
	group.Group("", adminMiddleware...).PATCH("", h.Patch)
}
