package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/camp-booking-backend/internal/payment"
	"github.com/nekogravitycat/camp-booking-backend/internal/pkg/response"
)

// maxWebhookBytes bounds webhook bodies; provider events are a few kilobytes.
const maxWebhookBytes = 64 << 10

type Handler struct {
	service  payment.Service
	verifier payment.Verifier
}

func NewHandler(service payment.Service, verifier payment.Verifier) *Handler {
	return &Handler{service: service, verifier: verifier}
}

func (h *Handler) Checkout(c *gin.Context) {
	var body CheckoutBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess, err := h.service.StartCheckout(c.Request.Context(), body.BookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, CheckoutResponse{SessionID: sess.ID, URL: sess.URL})
}

func (h *Handler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	event, err := h.verifier.Verify(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) || errors.Is(err, payment.ErrNotConfigured) {
			response.Error(c, err)
			return
		}
		response.Error(c, payment.ErrHandlerFailed)
		return
	}

	if err := h.service.HandleEvent(c.Request.Context(), event); err != nil {
		response.Error(c, payment.ErrHandlerFailed)
		return
	}

	c.JSON(http.StatusOK, WebhookResponse{Received: true})
}
