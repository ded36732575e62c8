package settings

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TentPricesPatch carries optional tent price updates.
type TentPricesPatch struct {
	Weekday       *float64
	Weekend       *float64
	MultipleTents *float64
}

// AddOnPricesPatch carries optional standard add-on price updates.
type AddOnPricesPatch struct {
	Charcoal       *float64
	Firewood       *float64
	PortableToilet *float64
}

// CustomAddOnInput is a custom add-on as submitted by an operator; every field may be missing.
type CustomAddOnInput struct {
	ID          *string  `yaml:"id"`
	Name        *string  `yaml:"name"`
	Price       *float64 `yaml:"price"`
	Description *string  `yaml:"description"`
	IsActive    *bool    `yaml:"is_active"`
}

// PatchRequest merges into the stored settings. A nil field is left unchanged;
// a non-nil CustomAddOns replaces the whole catalogue.
type PatchRequest struct {
	TentPrices    *TentPricesPatch
	AddOnPrices   *AddOnPricesPatch
	WadiSurcharge *float64
	VATRate       *float64
	CustomAddOns  *[]CustomAddOnInput
}

type Service interface {
	// Get returns the current settings, creating them from the defaults on first use.
	Get(ctx context.Context) (*Settings, error)
	Patch(ctx context.Context, req PatchRequest) (*Settings, error)
}

type service struct {
	repo     Repository
	defaults Settings
	log      *logrus.Logger
}

func NewService(repo Repository, defaults Settings, log *logrus.Logger) Service {
	return &service{repo: repo, defaults: defaults, log: log}
}

func (s *service) Get(ctx context.Context) (*Settings, error) {
	cur, err := s.repo.Get(ctx)
	if err == nil {
		if cur.CustomAddOns == nil {
			cur.CustomAddOns = []CustomAddOn{}
		}
		return cur, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	seed := s.defaults
	seed.CustomAddOns = append([]CustomAddOn{}, s.defaults.CustomAddOns...)
	if err := s.repo.Save(ctx, &seed); err != nil {
		return nil, err
	}
	s.log.Info("settings record created from defaults")
	return &seed, nil
}

func (s *service) Patch(ctx context.Context, req PatchRequest) (*Settings, error) {
	cur, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if tp := req.TentPrices; tp != nil {
		setIfPresent(&cur.TentPrices.Weekday, tp.Weekday)
		setIfPresent(&cur.TentPrices.Weekend, tp.Weekend)
		setIfPresent(&cur.TentPrices.MultipleTents, tp.MultipleTents)
	}
	if ap := req.AddOnPrices; ap != nil {
		setIfPresent(&cur.AddOnPrices.Charcoal, ap.Charcoal)
		setIfPresent(&cur.AddOnPrices.Firewood, ap.Firewood)
		setIfPresent(&cur.AddOnPrices.PortableToilet, ap.PortableToilet)
	}
	setIfPresent(&cur.WadiSurcharge, req.WadiSurcharge)
	setIfPresent(&cur.VATRate, req.VATRate)
	if req.CustomAddOns != nil {
		cur.CustomAddOns = normalizeCustomAddOns(*req.CustomAddOns)
	}

	if err := cur.validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, cur); err != nil {
		return nil, err
	}

	s.log.WithField("custom_add_ons", len(cur.CustomAddOns)).Info("settings updated")
	return cur, nil
}

func setIfPresent(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// normalizeCustomAddOns fills defaults for missing fields: a fresh id, empty
// name and description, zero price and active state.
func normalizeCustomAddOns(in []CustomAddOnInput) []CustomAddOn {
	out := make([]CustomAddOn, 0, len(in))
	for _, a := range in {
		addOn := CustomAddOn{IsActive: true}

		if a.ID != nil && strings.TrimSpace(*a.ID) != "" {
			addOn.ID = strings.TrimSpace(*a.ID)
		} else {
			addOn.ID = uuid.NewString()
		}
		if a.Name != nil {
			addOn.Name = strings.TrimSpace(*a.Name)
		}
		if a.Price != nil && !math.IsNaN(*a.Price) && !math.IsInf(*a.Price, 0) {
			addOn.Price = *a.Price
		}
		if a.Description != nil {
			addOn.Description = *a.Description
		}
		if a.IsActive != nil {
			addOn.IsActive = *a.IsActive
		}
		out = append(out, addOn)
	}
	return out
}
