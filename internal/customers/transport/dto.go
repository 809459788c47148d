package transport

import (
	"time"

	"storeroom_backend/internal/domain"
)

type SignupRequest struct {
	Email   string `json:"email" validate:"required,email,max=254"`
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address string `json:"address" validate:"required,max=300"`
	Plan    string `json:"plan,omitempty" validate:"omitempty,plantier"`
}

type UpdateProfileRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address *string `json:"address,omitempty" validate:"omitempty,min=1,max=300"`
	Plan    *string `json:"plan,omitempty" validate:"omitempty,plantier"`
}

type PaymentIntentRequest struct {
	Coupon string `json:"coupon,omitempty" validate:"omitempty,max=64"`
}

type CancelSubscriptionRequest struct {
	Immediate bool `json:"immediate"`
}

type WaiveSetupFeeRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type CustomerResponse struct {
	ID                     string                    `json:"id"`
	Email                  string                    `json:"email"`
	Name                   string                    `json:"name"`
	Phone                  string                    `json:"phone,omitempty"`
	Address                string                    `json:"address"`
	Plan                   domain.PlanTier           `json:"plan"`
	Limits                 domain.PlanLimits         `json:"limits"`
	Usage                  domain.Usage              `json:"usage"`
	RemainingCubicFeet     float64                   `json:"remainingCubicFeet"`
	SubscriptionStatus     domain.SubscriptionStatus `json:"subscriptionStatus"`
	BillingActive          bool                      `json:"billingActive"`
	SetupFeePaid           bool                      `json:"setupFeePaid"`
	SetupFeeCents          int64                     `json:"setupFeeCents"`
	SetupFeeWaiverReason   string                    `json:"setupFeeWaiverReason,omitempty"`
	FirstPickupCompletedAt *time.Time                `json:"firstPickupCompletedAt,omitempty"`
	CreatedAt              time.Time                 `json:"createdAt"`
}

type SignupResponse struct {
	Customer CustomerResponse `json:"customer"`
	Created  bool             `json:"created"`
}

type PaymentIntentResponse struct {
	ID               string `json:"id"`
	ClientSecret     string `json:"clientSecret"`
	AmountCents      int64  `json:"amountCents"`
	FinalAmountCents int64  `json:"finalAmountCents"`
	Coupon           string `json:"coupon,omitempty"`
}
