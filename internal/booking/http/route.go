package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts booking and date-constraint endpoints. rateLimit guards the
// public form submission; adminMiddleware guards everything operators use.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, rateLimit gin.HandlerFunc, adminMiddleware ...gin.HandlerFunc) {
	group := g.Group("/bookings")

	// === Public Routes ===
	group.POST("", rateLimit, h.Create)

	// === Admin Routes ===
	admin := group.Group("", adminMiddleware...)
	{
		admin.GET("", h.List)
		admin.GET("/export", h.Export)
		admin.GET("/:id", h.Get)
		admin.GET("/:id/receipt", h.Receipt)
	}

	constraints := g.Group("/date-constraints")
	constraints.GET("", h.GetDateConstraints)
	constraints.Group("", adminMiddleware...).POST("", h.RebuildDateConstraints)
}
