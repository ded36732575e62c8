// Package pricing computes the price of a camping booking from the current settings.
package pricing

import (
	"math"
	"time"

	"github.com/nekogravitycat/camp-booking-backend/internal/settings"
)

// PremiumLocation carries the location surcharge.
const PremiumLocation = "Wadi"

// AddOns are the standard add-on selections.
type AddOns struct {
	Charcoal       bool `json:"charcoal"`
	Firewood       bool `json:"firewood"`
	PortableToilet bool `json:"portableToilet"`
}

// SelectedAddOn is a custom add-on from the settings catalogue with its selection state.
type SelectedAddOn struct {
	ID       string
	Name     string
	Price    float64
	Selected bool
}

// Input describes what is being priced.
type Input struct {
	Tents        int
	Location     string
	AddOns       AddOns
	HasChildren  bool
	CustomAddOns []SelectedAddOn
	// Date is the calendar date of the stay. When nil, single tents are priced at the weekend rate.
	Date *time.Time
}

// Breakdown is the full price computation. All amounts are in the settings currency.
type Breakdown struct {
	TentPrice         float64 `json:"tentPrice"`
	LocationSurcharge float64 `json:"locationSurcharge"`
	AddOnsCost        float64 `json:"addOnsCost"`
	CustomAddOnsCost  float64 `json:"customAddOnsCost"`
	Subtotal          float64 `json:"subtotal"`
	VAT               float64 `json:"vat"`
	Total             float64 `json:"total"`
}

// Calculate prices a booking. It has no side effects.
func Calculate(in Input, s settings.Settings) Breakdown {
	var b Breakdown

	switch {
	case in.Tents >= 2:
		b.TentPrice = s.TentPrices.MultipleTents * float64(in.Tents)
	case in.Date == nil || IsWeekend(*in.Date):
		b.TentPrice = s.TentPrices.Weekend
	default:
		b.TentPrice = s.TentPrices.Weekday
	}
	b.TentPrice = roundMoney(b.TentPrice)

	if in.Location == PremiumLocation {
		b.LocationSurcharge = s.WadiSurcharge
	}

	if in.AddOns.Charcoal {
		b.AddOnsCost += s.AddOnPrices.Charcoal
	}
	if in.AddOns.Firewood {
		b.AddOnsCost += s.AddOnPrices.Firewood
	}
	// The portable toilet is included free of charge for families.
	if in.AddOns.PortableToilet && !in.HasChildren {
		b.AddOnsCost += s.AddOnPrices.PortableToilet
	}
	b.AddOnsCost = roundMoney(b.AddOnsCost)

	for _, a := range in.CustomAddOns {
		if a.Selected {
			b.CustomAddOnsCost += a.Price
		}
	}
	b.CustomAddOnsCost = roundMoney(b.CustomAddOnsCost)

	b.Subtotal = roundMoney(b.TentPrice + b.LocationSurcharge + b.AddOnsCost + b.CustomAddOnsCost)
	b.VAT = roundMoney(b.Subtotal * s.VATRate)
	b.Total = roundMoney(b.Subtotal + b.VAT)
	return b
}

// IsWeekend reports whether the date falls on Friday, Saturday or Sunday.
func IsWeekend(d time.Time) bool {
	switch d.Weekday() {
	case time.Friday, time.Saturday, time.Sunday:
		return true
	}
	return false
}

// SelectCustomAddOns marks the catalogue entries whose ids were chosen.
// Unknown ids are ignored and inactive add-ons are never selected.
func SelectCustomAddOns(catalogue []settings.CustomAddOn, ids []string) []SelectedAddOn {
	chosen := make(map[string]bool, len(ids))
	for _, id := range ids {
		chosen[id] = true
	}

	out := make([]SelectedAddOn, 0, len(catalogue))
	for _, a := range catalogue {
		out = append(out, SelectedAddOn{
			ID:       a.ID,
			Name:     a.Name,
			Price:    a.Price,
			Selected: a.IsActive && chosen[a.ID],
		})
	}
	return out
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
