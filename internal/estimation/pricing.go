package estimation

import (
	"errors"
	"fmt"
	"maps"
	"os"

	"storeroom_backend/internal/domain"

	"gopkg.in/yaml.v3"
)

// Pricing holds every constant the quote engine uses. Amounts are cents.
type Pricing struct {
	BaseFeeCents        map[domain.VisitType]int64 `yaml:"base_fee_cents"`
	SmallPerItemCents   int64                      `yaml:"small_per_item_cents"`
	MediumFlatCents     int64                      `yaml:"medium_flat_cents"`
	LargeFlatCents      int64                      `yaml:"large_flat_cents"`
	RushCents           int64                      `yaml:"rush_cents"`
	WeekendCents        int64                      `yaml:"weekend_cents"`
	BundleDiscountCents int64                      `yaml:"bundle_discount_cents"`

	MediumOverCubicFeet float64 `yaml:"medium_over_cubic_feet"`
	MediumOverLbs       float64 `yaml:"medium_over_lbs"`
	LargeOverCubicFeet  float64 `yaml:"large_over_cubic_feet"`
	LargeOverLbs        float64 `yaml:"large_over_lbs"`

	MinimumMinutes int `yaml:"minimum_minutes"`
	PerItemMinutes int `yaml:"per_item_minutes"`
}

// DefaultPricing returns the standard price list.
func DefaultPricing() Pricing {
	return Pricing{
		BaseFeeCents: map[domain.VisitType]int64{
			domain.VisitPickup:            4_900,
			domain.VisitDelivery:          3_900,
			domain.VisitContainerDelivery: 2_900,
		},
		SmallPerItemCents:   500,
		MediumFlatCents:     7_500,
		LargeFlatCents:      15_000,
		RushCents:           5_000,
		WeekendCents:        3_500,
		BundleDiscountCents: 2_000,
		MediumOverCubicFeet: 50,
		MediumOverLbs:       250,
		LargeOverCubicFeet:  100,
		LargeOverLbs:        500,
		MinimumMinutes:      30,
		PerItemMinutes:      5,
	}
}

// LoadPricing reads overrides from a YAML file on top of the defaults.
// An empty path returns the defaults.
func LoadPricing(path string) (Pricing, error) {
	p := DefaultPricing()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read pricing file: %w", err)
	}

	base := maps.Clone(p.BaseFeeCents)
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return DefaultPricing(), fmt.Errorf("parse pricing file: %w", err)
	}
	// A partial base_fee_cents map keeps the defaults for unlisted types.
	if p.BaseFeeCents == nil {
		p.BaseFeeCents = make(map[domain.VisitType]int64, len(base))
	}
	for visitType, fee := range base {
		if _, ok := p.BaseFeeCents[visitType]; !ok {
			p.BaseFeeCents[visitType] = fee
		}
	}
	if err := p.Validate(); err != nil {
		return DefaultPricing(), err
	}
	return p, nil
}

// Validate rejects negative amounts and inverted tier thresholds.
func (p Pricing) Validate() error {
	for visitType, fee := range p.BaseFeeCents {
		if fee < 0 {
			return fmt.Errorf("base fee for %s is negative", visitType)
		}
	}
	for _, amount := range []int64{p.SmallPerItemCents, p.MediumFlatCents, p.LargeFlatCents, p.RushCents, p.WeekendCents, p.BundleDiscountCents} {
		if amount < 0 {
			return errors.New("pricing amounts must not be negative")
		}
	}
	if p.LargeOverCubicFeet < p.MediumOverCubicFeet || p.LargeOverLbs < p.MediumOverLbs {
		return errors.New("large thresholds must not be below medium thresholds")
	}
	if p.MinimumMinutes < 0 || p.PerItemMinutes < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}
