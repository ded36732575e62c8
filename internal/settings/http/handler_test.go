package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/camp-booking-backend/internal/settings"
)

type fakeService struct {
	current settings.Settings
	patched *settings.PatchRequest
	err     error
}

func (f *fakeService) Get(context.Context) (*settings.Settings, error) {
	s := f.current
	return &s, nil
}

func (f *fakeService) Patch(_ context.Context, req settings.PatchRequest) (*settings.Settings, error) {
	f.patched = &req
	if f.err != nil {
		return nil, f.err
	}
	s := f.current
	return &s, nil
}

func newTestRouter(svc settings.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc), func(c *gin.Context) { c.Next() })
	return r
}

func TestGetSettings(t *testing.T) {
	r := newTestRouter(&fakeService{current: settings.Defaults()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/settings", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, map[string]any{"weekday": 1297.0, "weekend": 1497.0, "multipleTents": 1297.0}, got["tentPrices"])
	assert.Equal(t, 0.05, got["vatRate"])
	assert.Equal(t, []any{}, got["customAddOns"])
}

func TestPatchSettings(t *testing.T) {
	t.Run("Converts body to a patch", func(t *testing.T) {
		svc := &fakeService{current: settings.Defaults()}
		body := `{
			"tentPrices": {"weekend": 1599},
			"customAddOns": [
				{"id": "bbq", "name": "BBQ", "price": "150.5"},
				{"name": "Stargazing", "price": "free"},
				{"name": "Drums", "price": 90}
			]
		}`

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/v1/settings", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		newTestRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"success":true`)

		require.NotNil(t, svc.patched)
		require.NotNil(t, svc.patched.TentPrices)
		assert.Equal(t, 1599.0, *svc.patched.TentPrices.Weekend)
		assert.Nil(t, svc.patched.TentPrices.Weekday)
		assert.Nil(t, svc.patched.AddOnPrices)

		addOns := *svc.patched.CustomAddOns
		require.Len(t, addOns, 3)
		assert.Equal(t, 150.5, *addOns[0].Price)
		assert.Equal(t, 0.0, *addOns[1].Price, "non-numeric price becomes 0")
		assert.Equal(t, 90.0, *addOns[2].Price)
	})

	t.Run("Validation errors", func(t *testing.T) {
		svc := &fakeService{err: settings.ErrInvalidPrice}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/v1/settings", bytes.NewBufferString(`{"wadiSurcharge": -5}`))
		req.Header.Set("Content-Type", "application/json")
		newTestRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"prices must not be negative"}`, w.Body.String())
	})
}
