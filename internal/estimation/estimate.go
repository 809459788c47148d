// Package estimation prices a visit from the items it moves.
// Everything here is a pure function of its inputs.
package estimation

import (
	"fmt"
	"time"

	"storeroom_backend/internal/domain"
)

// Flags are the customer's optional choices for a visit.
type Flags struct {
	Rush   bool `json:"rush"`
	Bundle bool `json:"bundle"`
}

// Line is one itemised fee or discount.
type Line struct {
	Code        string `json:"code"`
	Label       string `json:"label"`
	AmountCents int64  `json:"amountCents"`
}

// Quote is the priced result of an estimate.
type Quote struct {
	VisitType       domain.VisitType   `json:"visitType"`
	Tier            domain.VehicleTier `json:"tier"`
	CubicFeet       float64            `json:"cubicFeet"`
	WeightLbs       float64            `json:"weightLbs"`
	ItemCount       int                `json:"itemCount"`
	Weekend         bool               `json:"weekend"`
	Lines           []Line             `json:"lines"`
	TotalCents      int64              `json:"totalCents"`
	DurationMinutes int                `json:"durationMinutes"`
}

// Estimate prices a visit with the default price list.
func Estimate(visitType domain.VisitType, items []domain.Item, flags Flags, date time.Time) Quote {
	return DefaultPricing().Estimate(visitType, items, flags, date)
}

// Tier picks the vehicle size. Large wins over medium when both apply.
func (p Pricing) Tier(cubicFeet, weightLbs float64) domain.VehicleTier {
	switch {
	case cubicFeet > p.LargeOverCubicFeet || weightLbs > p.LargeOverLbs:
		return domain.VehicleLarge
	case cubicFeet > p.MediumOverCubicFeet || weightLbs > p.MediumOverLbs:
		return domain.VehicleMedium
	default:
		return domain.VehicleSmall
	}
}

// Estimate prices a visit.
func (p Pricing) Estimate(visitType domain.VisitType, items []domain.Item, flags Flags, date time.Time) Quote {
	volume, weight, count := domain.Totals(items)
	q := Quote{
		VisitType: visitType,
		Tier:      p.Tier(volume, weight),
		CubicFeet: volume,
		WeightLbs: weight,
		ItemCount: count,
		Weekend:   domain.IsWeekend(date),
	}

	q.add("base", fmt.Sprintf("%s base fee", label(visitType)), p.BaseFeeCents[visitType])
	switch q.Tier {
	case domain.VehicleSmall:
		if count > 0 {
			q.add("items", fmt.Sprintf("%d item(s) at %s each", count, dollars(p.SmallPerItemCents)), int64(count)*p.SmallPerItemCents)
		}
	case domain.VehicleMedium:
		q.add("vehicle", "Box truck", p.MediumFlatCents)
	case domain.VehicleLarge:
		q.add("vehicle", "Large truck", p.LargeFlatCents)
	}
	if flags.Rush {
		q.add("rush", "Rush service", p.RushCents)
	}
	if q.Weekend {
		q.add("weekend", "Weekend service", p.WeekendCents)
	}
	if flags.Bundle {
		q.add("bundle", "Bundled pickup and delivery", -p.BundleDiscountCents)
	}

	if q.TotalCents < 0 {
		q.TotalCents = 0
	}
	q.DurationMinutes = p.MinimumMinutes + count*p.PerItemMinutes
	return q
}

func (q *Quote) add(code, text string, amount int64) {
	q.Lines = append(q.Lines, Line{Code: code, Label: text, AmountCents: amount})
	q.TotalCents += amount
}

func label(t domain.VisitType) string {
	switch t {
	case domain.VisitPickup:
		return "Pickup"
	case domain.VisitDelivery:
		return "Delivery"
	case domain.VisitContainerDelivery:
		return "Container delivery"
	}
	return string(t)
}

func dollars(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
