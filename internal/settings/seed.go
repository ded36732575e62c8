package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// seedFile mirrors Settings but keeps custom add-on fields optional so that
// absent keys get the same defaults as a PATCH request.
type seedFile struct {
	TentPrices    *TentPrices        `yaml:"tent_prices"`
	AddOnPrices   *AddOnPrices       `yaml:"add_on_prices"`
	WadiSurcharge *float64           `yaml:"wadi_surcharge"`
	VATRate       *float64           `yaml:"vat_rate"`
	CustomAddOns  []CustomAddOnInput `yaml:"custom_add_ons"`
}

// LoadDefaults reads the seed settings used when the store is empty.
// Environment variables in the file are expanded before parsing. A missing
// file is not an error: the built-in defaults are returned instead.
func LoadDefaults(path string) (Settings, error) {
	def := Defaults()
	if path == "" {
		return def, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return def, nil
		}
		return def, fmt.Errorf("read settings seed %s: %w", path, err)
	}

	// Pre-filled so keys omitted inside a section keep their built-in value.
	tp, ap := def.TentPrices, def.AddOnPrices
	seed := seedFile{TentPrices: &tp, AddOnPrices: &ap}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &seed); err != nil {
		return def, fmt.Errorf("parse settings seed %s: %w", path, err)
	}

	out := def
	if seed.TentPrices != nil {
		out.TentPrices = *seed.TentPrices
	}
	if seed.AddOnPrices != nil {
		out.AddOnPrices = *seed.AddOnPrices
	}
	if seed.WadiSurcharge != nil {
		out.WadiSurcharge = *seed.WadiSurcharge
	}
	if seed.VATRate != nil {
		out.VATRate = *seed.VATRate
	}
	out.CustomAddOns = normalizeCustomAddOns(seed.CustomAddOns)

	if err := out.validate(); err != nil {
		return def, fmt.Errorf("invalid settings seed %s: %w", path, err)
	}
	return out, nil
}
