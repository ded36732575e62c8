package settings

import (
	"errors"
	"net/http"
	"time"

	"github.com/nekogravitycat/camp-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = errors.New("settings not found")
	ErrInvalidPrice     = apperror.New(http.StatusBadRequest, "prices must not be negative")
	ErrInvalidVATRate   = apperror.New(http.StatusBadRequest, "vat rate must be between 0 and 1")
	ErrDuplicateAddOnID = apperror.New(http.StatusBadRequest, "custom add-on ids must be unique")
)

// TentPrices are per-tent rates. Weekend applies Friday to Sunday for single tents;
// bookings of two or more tents always use MultipleTents.
type TentPrices struct {
	Weekday       float64 `json:"weekday" yaml:"weekday"`
	Weekend       float64 `json:"weekend" yaml:"weekend"`
	MultipleTents float64 `json:"multipleTents" yaml:"multiple_tents"`
}

// AddOnPrices are the prices of the standard add-ons.
type AddOnPrices struct {
	Charcoal       float64 `json:"charcoal" yaml:"charcoal"`
	Firewood       float64 `json:"firewood" yaml:"firewood"`
	PortableToilet float64 `json:"portableToilet" yaml:"portable_toilet"`
}

// CustomAddOn is an operator-defined extra.
type CustomAddOn struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Price       float64 `json:"price" yaml:"price"`
	Description string  `json:"description" yaml:"description"`
	IsActive    bool    `json:"isActive" yaml:"is_active"`
}

// Settings is the pricing configuration. There is exactly one stored instance.
type Settings struct {
	TentPrices    TentPrices    `json:"tentPrices" yaml:"tent_prices"`
	AddOnPrices   AddOnPrices   `json:"addOnPrices" yaml:"add_on_prices"`
	WadiSurcharge float64       `json:"wadiSurcharge" yaml:"wadi_surcharge"`
	VATRate       float64       `json:"vatRate" yaml:"vat_rate"`
	CustomAddOns  []CustomAddOn `json:"customAddOns" yaml:"custom_add_ons"`
	UpdatedAt     time.Time     `json:"updatedAt" yaml:"-"`
}

// Defaults returns the built-in pricing configuration.
func Defaults() Settings {
	return Settings{
		TentPrices: TentPrices{
			Weekday:       1297,
			Weekend:       1497,
			MultipleTents: 1297,
		},
		AddOnPrices: AddOnPrices{
			Charcoal:       60,
			Firewood:       75,
			PortableToilet: 200,
		},
		WadiSurcharge: 250,
		VATRate:       0.05,
		CustomAddOns:  []CustomAddOn{},
	}
}

func (s Settings) validate() error {
	prices := []float64{
		s.TentPrices.Weekday, s.TentPrices.Weekend, s.TentPrices.MultipleTents,
		s.AddOnPrices.Charcoal, s.AddOnPrices.Firewood, s.AddOnPrices.PortableToilet,
		s.WadiSurcharge,
	}
	for _, a := range s.CustomAddOns {
		prices = append(prices, a.Price)
	}
	for _, p := range prices {
		if p < 0 {
			return ErrInvalidPrice
		}
	}
	if s.VATRate < 0 || s.VATRate > 1 {
		return ErrInvalidVATRate
	}

	seen := make(map[string]struct{}, len(s.CustomAddOns))
	for _, a := range s.CustomAddOns {
		if _, dup := seen[a.ID]; dup {
			return ErrDuplicateAddOnID
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}
