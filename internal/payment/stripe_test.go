package payment

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

const testSecret = "whsec_test_secret"

func checkoutEventPayload(eventType, bookingID, paymentIntent string) []byte {
	pi := "null"
	if paymentIntent != "" {
		pi = fmt.Sprintf("%q", paymentIntent)
	}
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"api_version": "2025-08-27.basil",
		"type": %q,
		"data": {
			"object": {
				"id": "cs_test_1",
				"object": "checkout.session",
				"metadata": {"bookingId": %q},
				"payment_intent": %s
			}
		}
	}`, eventType, bookingID, pi))
}

func sign(payload []byte, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	}).Header
}

func TestStripeVerifier(t *testing.T) {
	v := NewStripeVerifier(testSecret)

	t.Run("Completed checkout", func(t *testing.T) {
		payload := checkoutEventPayload(EventCheckoutCompleted, "b-1", "pi_123")

		e, err := v.Verify(payload, sign(payload, testSecret))
		require.NoError(t, err)
		assert.Equal(t, &WebhookEvent{
			ID:         "evt_1",
			Type:       EventCheckoutCompleted,
			SessionID:  "cs_test_1",
			BookingID:  "b-1",
			PaymentRef: "pi_123",
		}, e)
	})

	t.Run("Payment reference falls back to session id", func(t *testing.T) {
		payload := checkoutEventPayload(EventCheckoutCompleted, "b-1", "")

		e, err := v.Verify(payload, sign(payload, testSecret))
		require.NoError(t, err)
		assert.Equal(t, "cs_test_1", e.PaymentRef)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		payload := checkoutEventPayload(EventCheckoutCompleted, "b-1", "pi_123")

		_, err := v.Verify(payload, sign(payload, "whsec_other"))
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("Tampered payload", func(t *testing.T) {
		payload := checkoutEventPayload(EventCheckoutCompleted, "b-1", "pi_123")
		header := sign(payload, testSecret)

		_, err := v.Verify(checkoutEventPayload(EventCheckoutCompleted, "b-2", "pi_123"), header)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("Missing secret", func(t *testing.T) {
		payload := checkoutEventPayload(EventCheckoutCompleted, "b-1", "pi_123")

		_, err := NewStripeVerifier("").Verify(payload, sign(payload, testSecret))
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(136185), ToMinorUnits(1361.85))
	assert.Equal(t, int64(434805), ToMinorUnits(4348.05))
	assert.Equal(t, int64(0), ToMinorUnits(0))
}
