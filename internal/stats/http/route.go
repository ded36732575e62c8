package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, adminMiddleware ...gin.HandlerFunc) {
	// === Admin Routes ===
	admin := g.Group("", adminMiddleware...)
	{
		admin.GET("/stats", h.Stats)
		admin.GET("/charts", h.Charts)
	}
}
