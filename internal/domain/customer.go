// Package domain holds the entities of the booking and fulfillment engine
// and the rules that need no I/O.
package domain

import "time"

// PlanTier is a storage subscription level.
type PlanTier string

const (
	PlanStarter PlanTier = "starter"
	PlanMedium  PlanTier = "medium"
	PlanFamily  PlanTier = "family"
)

// PlanLimits are the caps and price attached to a tier.
type PlanLimits struct {
	VolumeCapCubicFeet float64 `json:"volumeCapCubicFeet"`
	InsuranceCapCents  int64   `json:"insuranceCapCents"`
	MonthlyPriceCents  int64   `json:"monthlyPriceCents"`
}

var planLimits = map[PlanTier]PlanLimits{
	PlanStarter: {VolumeCapCubicFeet: 50, InsuranceCapCents: 200_000, MonthlyPriceCents: 5_900},
	PlanMedium:  {VolumeCapCubicFeet: 100, InsuranceCapCents: 500_000, MonthlyPriceCents: 9_900},
	PlanFamily:  {VolumeCapCubicFeet: 200, InsuranceCapCents: 1_000_000, MonthlyPriceCents: 14_900},
}

// Valid reports whether p is a known tier.
func (p PlanTier) Valid() bool {
	_, ok := planLimits[p]
	return ok
}

// Limits returns the caps for p; unknown tiers get zero limits.
func (p PlanTier) Limits() PlanLimits {
	return planLimits[p]
}

// PlanTiers lists the tiers in ascending order.
func PlanTiers() []PlanTier {
	return []PlanTier{PlanStarter, PlanMedium, PlanFamily}
}

// SubscriptionStatus mirrors the payment processor's view of the subscription.
type SubscriptionStatus string

const (
	SubscriptionNone      SubscriptionStatus = "none"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Customer is a person with a storage plan.
//
// SubscriptionID stays empty until FirstPickupCompletedAt is set, and neither
// is cleared afterwards; cancelling only changes SubscriptionStatus.
type Customer struct {
	ID      string   `json:"id"`
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	Phone   string   `json:"phone"`
	Address string   `json:"address"`
	Plan    PlanTier `json:"plan"`

	Limits PlanLimits `json:"limits"`

	UsedCubicFeet    float64 `json:"usedCubicFeet"`
	UsedInsuredCents int64   `json:"usedInsuredCents"`
	ActiveItemCount  int     `json:"activeItemCount"`

	PaymentCustomerID  string             `json:"paymentCustomerId,omitempty"`
	SubscriptionID     string             `json:"subscriptionId,omitempty"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus"`

	SetupFeePaid         bool   `json:"setupFeePaid"`
	SetupFeeCents        int64  `json:"setupFeeCents"`
	SetupFeeWaiverReason string `json:"setupFeeWaiverReason,omitempty"`

	FirstPickupCompletedAt *time.Time `json:"firstPickupCompletedAt,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
}

// BillingActive reports whether recurring billing has been started.
func (c *Customer) BillingActive() bool {
	return c.SubscriptionID != ""
}

// RemainingCubicFeet is the volume still available under the plan cap.
func (c *Customer) RemainingCubicFeet() float64 {
	return c.Limits.VolumeCapCubicFeet - c.UsedCubicFeet
}

// Usage is the storage footprint derived from a customer's items.
type Usage struct {
	CubicFeet    float64 `json:"cubicFeet"`
	InsuredCents int64   `json:"insuredCents"`
	ActiveItems  int     `json:"activeItems"`
}

// SumUsage re-derives usage from every item. Items still at home do not count.
func SumUsage(items []Item) Usage {
	var u Usage
	for _, item := range items {
		if item.Status == ItemAtHome {
			continue
		}
		u.CubicFeet += item.CubicFeet
		u.InsuredCents += item.EstimatedValueCents
		u.ActiveItems++
	}
	return u
}
