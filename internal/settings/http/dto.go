package http

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/nekogravitycat/camp-booking-backend/internal/settings"
)

// LenientFloat decodes a JSON number or numeric string. Anything else decodes to 0.
type LenientFloat float64

func (f *LenientFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = LenientFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*f = LenientFloat(v)
			return nil
		}
	}
	*f = 0
	return nil
}

type TentPricesBody struct {
	Weekday       *float64 `json:"weekday"`
	Weekend       *float64 `json:"weekend"`
	MultipleTents *float64 `json:"multipleTents"`
}

type AddOnPricesBody struct {
	Charcoal       *float64 `json:"charcoal"`
	Firewood       *float64 `json:"firewood"`
	PortableToilet *float64 `json:"portableToilet"`
}

type CustomAddOnBody struct {
	ID          *string       `json:"id"`
	Name        *string       `json:"name"`
	Price       *LenientFloat `json:"price"`
	Description *string       `json:"description"`
	IsActive    *bool         `json:"isActive"`
}

// PatchSettingsBody is a partial settings update. Absent fields keep their value;
// customAddOns replaces the whole catalogue when present.
type PatchSettingsBody struct {
	TentPrices    *TentPricesBody    `json:"tentPrices"`
	AddOnPrices   *AddOnPricesBody   `json:"addOnPrices"`
	WadiSurcharge *float64           `json:"wadiSurcharge"`
	VATRate       *float64           `json:"vatRate"`
	CustomAddOns  *[]CustomAddOnBody `json:"customAddOns"`
}

func (b *PatchSettingsBody) toPatch() settings.PatchRequest {
	req := settings.PatchRequest{
		WadiSurcharge: b.WadiSurcharge,
		VATRate:       b.VATRate,
	}
	if b.TentPrices != nil {
		req.TentPrices = &settings.TentPricesPatch{
			Weekday:       b.TentPrices.Weekday,
			Weekend:       b.TentPrices.Weekend,
			MultipleTents: b.TentPrices.MultipleTents,
		}
	}
	if b.AddOnPrices != nil {
		req.AddOnPrices = &settings.AddOnPricesPatch{
			Charcoal:       b.AddOnPrices.Charcoal,
			Firewood:       b.AddOnPrices.Firewood,
			PortableToilet: b.AddOnPrices.PortableToilet,
		}
	}
	if b.CustomAddOns != nil {
		inputs := make([]settings.CustomAddOnInput, 0, len(*b.CustomAddOns))
		for _, a := range *b.CustomAddOns {
			in := settings.CustomAddOnInput{
				ID:          a.ID,
				Name:        a.Name,
				Description: a.Description,
				IsActive:    a.IsActive,
			}
			if a.Price != nil {
				p := float64(*a.Price)
				in.Price = &p
			}
			inputs = append(inputs, in)
		}
		req.CustomAddOns = &inputs
	}
	return req
}

type PatchSettingsResponse struct {
	Success  bool               `json:"success"`
	Settings *settings.Settings `json:"settings"`
}
