package payment

import (
	"net/http"

	"github.com/nekogravitycat/camp-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotConfigured    = apperror.New(http.StatusServiceUnavailable, "payments are not configured")
	ErrInvalidSignature = apperror.New(http.StatusBadRequest, "Invalid signature")
	ErrHandlerFailed    = apperror.New(http.StatusInternalServerError, "Webhook handler failed")
)

// Webhook event types the service reacts to.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// CheckoutRequest describes the single line item charged for a booking.
type CheckoutRequest struct {
	BookingID     string
	CustomerEmail string
	Description   string
	Amount        float64 // major units, VAT included
}

type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent is a verified provider notification reduced to what bookings need.
type WebhookEvent struct {
	ID         string
	Type       string
	SessionID  string
	BookingID  string // from session metadata, empty when absent
	PaymentRef string // payment intent id, falling back to the session id
}
