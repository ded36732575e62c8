package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts checkout (public, rate limited) and the provider webhook.
// The webhook authenticates itself by signature.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, rateLimit gin.HandlerFunc) {
	g.POST("/checkout", rateLimit, h.Checkout)
	g.POST("/webhooks/stripe", h.Webhook)
}
