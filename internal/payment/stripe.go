package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Checkout opens hosted payment pages.
type Checkout interface {
	CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

// Verifier authenticates webhook deliveries.
type Verifier interface {
	Verify(payload []byte, signature string) (*WebhookEvent, error)
}

// StripeCheckout creates Stripe Checkout sessions.
type StripeCheckout struct {
	client     session.Client
	currency   string
	successURL string
	cancelURL  string
}

func NewStripeCheckout(secretKey, currency, successURL, cancelURL string) *StripeCheckout {
	return &StripeCheckout{
		client:     session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		currency:   strings.ToLower(currency),
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

func (s *StripeCheckout) CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail:     stripe.String(req.CustomerEmail),
		ClientReferenceID: stripe.String(req.BookingID),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.currency),
					UnitAmount: stripe.Int64(ToMinorUnits(req.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Desert camping booking"),
						Description: stripe.String(req.Description),
					},
				},
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("bookingId", req.BookingID)

	sess, err := s.client.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session failed: %w", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// ToMinorUnits converts an amount to the provider's integer representation (fils for AED).
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// StripeVerifier checks the Stripe-Signature header against the endpoint secret.
type StripeVerifier struct {
	secret string
}

func NewStripeVerifier(secret string) *StripeVerifier {
	return &StripeVerifier{secret: secret}
}

func (v *StripeVerifier) Verify(payload []byte, signature string) (*WebhookEvent, error) {
	if v.secret == "" {
		return nil, ErrNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, ErrInvalidSignature
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if !strings.HasPrefix(out.Type, "checkout.session.") || event.Data == nil {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("decode checkout session failed: %w", err)
	}
	out.SessionID = sess.ID
	out.BookingID = sess.Metadata["bookingId"]
	out.PaymentRef = sess.ID
	if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
		out.PaymentRef = sess.PaymentIntent.ID
	}
	return out, nil
}
