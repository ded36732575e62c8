package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/nekogravitycat/camp-booking-backend/internal/auth"
	"github.com/nekogravitycat/camp-booking-backend/internal/booking"
	"github.com/nekogravitycat/camp-booking-backend/internal/config"
	"github.com/nekogravitycat/camp-booking-backend/internal/settings"
)

const webhookSecret = "whsec_container_test"

// newTestContainer wires the full application against TEST_DB_DSN.
func newTestContainer(t *testing.T) *Container {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../migrations/001_init.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, "TRUNCATE TABLE public.bookings, public.date_location_locks, public.settings")
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)
	gin.SetMode(gin.TestMode)

	return NewContainer(Config{
		Logger:           log,
		DBPool:           pool,
		JWTSecret:        "container-secret",
		JWTTTL:           30 * time.Minute,
		SettingsDefaults: settings.Defaults(),
		Booking: booking.Options{
			Timezone:    time.FixedZone("GST", 4*60*60),
			PhonePrefix: "+971",
		},
		Stripe: config.StripeConfig{WebhookSecret: webhookSecret},
	})
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bookingForm(date, location string, tents int) map[string]any {
	arrangements := make([]map[string]any, tents)
	for i := range arrangements {
		arrangements[i] = map[string]any{"tentNumber": i + 1, "arrangement": "two-doubles"}
	}
	return map[string]any{
		"customerName":         "Sara Ali",
		"customerEmail":        "sara@example.com",
		"customerPhone":        "+971501234567",
		"bookingDate":          date,
		"location":             location,
		"numberOfTents":        tents,
		"adults":               tents * 2,
		"children":             0,
		"sleepingArrangements": arrangements,
		"addOns":               map[string]bool{"charcoal": true},
	}
}

func completeCheckout(t *testing.T, r http.Handler, bookingID string) *httptest.ResponseRecorder {
	t.Helper()
	payload := []byte(fmt.Sprintf(`{"id":"evt_%[1]s","object":"event","api_version":"2025-08-27.basil",
		"type":"checkout.session.completed",
		"data":{"object":{"id":"cs_%[1]s","object":"checkout.session","metadata":{"bookingId":%[1]q},"payment_intent":"pi_%[1]s"}}}`, bookingID))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    webhookSecret,
		Timestamp: time.Now(),
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBookingLifecycle(t *testing.T) {
	c := newTestContainer(t)
	r := c.Router

	adminToken, err := c.JWTManager.GenerateAccessToken("ops", auth.RoleAdmin)
	require.NoError(t, err)

	date := time.Now().UTC().AddDate(0, 0, 10).Format(booking.DateLayout)

	// 1. Submit a booking
	w := doJSON(t, r, http.MethodPost, "/v1/bookings", "", bookingForm(date, "Desert", 2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		BookingID string `json:"bookingId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.BookingID)

	// 2. Unpaid bookings do not hold the date
	w = doJSON(t, r, http.MethodGet, "/v1/date-constraints?date="+date, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"lockedLocation":null,"totalTents":0,"remainingCapacity":10,"availableLocations":["Desert","Mountain","Wadi"]}`, w.Body.String())

	// 3. Payment confirmation, delivered twice
	require.Equal(t, http.StatusOK, completeCheckout(t, r, created.BookingID).Code)
	require.Equal(t, http.StatusOK, completeCheckout(t, r, created.BookingID).Code)

	w = doJSON(t, r, http.MethodGet, "/v1/date-constraints?date="+date, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"lockedLocation":"Desert","totalTents":2,"remainingCapacity":8,"availableLocations":["Desert"]}`, w.Body.String())

	// 4. The date is now locked to Desert
	w = doJSON(t, r, http.MethodPost, "/v1/bookings", "", bookingForm(date, "Mountain", 2))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already booked for Desert location")

	w = doJSON(t, r, http.MethodGet, "/v1/bookings?isPaid=false", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bookings":[]`, "the rejected submission must not be stored")
	assert.Contains(t, w.Body.String(), `"total":0`)

	// 5. Operators see the paid booking
	w = doJSON(t, r, http.MethodGet, "/v1/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/v1/bookings", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Bookings []struct {
			ID              string `json:"id"`
			IsPaid          bool   `json:"isPaid"`
			PaymentIntentID string `json:"paymentIntentId"`
		} `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Bookings, 1)
	assert.Equal(t, created.BookingID, list.Bookings[0].ID)
	assert.True(t, list.Bookings[0].IsPaid)
	assert.Equal(t, "pi_"+created.BookingID, list.Bookings[0].PaymentIntentID)

	w = doJSON(t, r, http.MethodGet, "/v1/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"paidBookings":1`)
}
