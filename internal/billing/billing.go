// Package billing is the boundary to the payment processor. Services talk to
// Gateway, which turns every processor failure into an apperr billing error
// and derives one idempotency key per customer and purpose.
package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storeroom_backend/internal/domain"
	"storeroom_backend/platform/apperr"
	"storeroom_backend/platform/logger"
)

// Idempotency key purposes.
const (
	PurposeSubscription = "subscription"
	PurposeCancel       = "cancel"
	PurposeSetupFee     = "setup-fee"
)

var (
	// ErrDisabled is returned when no processor is configured.
	ErrDisabled = errors.New("billing is not configured")
	// ErrUnknownCoupon is returned when a promo code does not exist.
	ErrUnknownCoupon = errors.New("unknown coupon")
)

// SubscriptionRequest starts the recurring plan for a customer.
type SubscriptionRequest struct {
	CustomerID        string
	PaymentCustomerID string
	Email             string
	Name              string
	Plan              domain.PlanTier
}

// Subscription is the processor's record of a recurring plan.
type Subscription struct {
	ID                string
	PaymentCustomerID string
	Status            domain.SubscriptionStatus
}

// PaymentIntentRequest charges a one-off amount, optionally discounted.
type PaymentIntentRequest struct {
	CustomerID        string
	PaymentCustomerID string
	AmountCents       int64
	Coupon            string
	Description       string
}

// PaymentIntent is what the client needs to confirm a charge.
type PaymentIntent struct {
	ID               string `json:"id"`
	ClientSecret     string `json:"clientSecret"`
	AmountCents      int64  `json:"amountCents"`
	FinalAmountCents int64  `json:"finalAmountCents"`
	Coupon           string `json:"coupon,omitempty"`
}

// Processor is the payment processor capability set.
type Processor interface {
	CreateSubscription(ctx context.Context, req SubscriptionRequest, idempotencyKey string) (*Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string, immediate bool, idempotencyKey string) error
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest, idempotencyKey string) (*PaymentIntent, error)
}

// Key builds the idempotency key for one customer and purpose.
func Key(customerID, purpose string) string {
	return customerID + ":" + purpose
}

// SetupFeeKey builds the setup-fee key. The amount and coupon are part of it
// because the processor refuses a reused key whose parameters differ.
func SetupFeeKey(customerID string, amountCents int64, coupon string) string {
	return Key(customerID, fmt.Sprintf("%s:%d:%s", PurposeSetupFee, amountCents, strings.TrimSpace(coupon)))
}

// Gateway wraps a Processor for use by services.
type Gateway struct {
	processor Processor
	log       *logger.Logger
}

// NewGateway creates a gateway over p.
func NewGateway(p Processor, log *logger.Logger) *Gateway {
	return &Gateway{processor: p, log: log}
}

// StartSubscription creates the customer's recurring subscription.
func (g *Gateway) StartSubscription(ctx context.Context, c *domain.Customer) (*Subscription, error) {
	sub, err := g.processor.CreateSubscription(ctx, SubscriptionRequest{
		CustomerID:        c.ID,
		PaymentCustomerID: c.PaymentCustomerID,
		Email:             c.Email,
		Name:              c.Name,
		Plan:              c.Plan,
	}, Key(c.ID, PurposeSubscription))
	if err != nil {
		return nil, g.fail(ctx, c.ID, PurposeSubscription, err)
	}
	if sub.ID == "" {
		return nil, g.fail(ctx, c.ID, PurposeSubscription, errors.New("processor returned no subscription id"))
	}
	if sub.Status == "" {
		sub.Status = domain.SubscriptionActive
	}
	return sub, nil
}

// CancelSubscription stops the customer's subscription.
func (g *Gateway) CancelSubscription(ctx context.Context, c *domain.Customer, immediate bool) error {
	if c.SubscriptionID == "" {
		return apperr.Validation("customer has no subscription")
	}
	if err := g.processor.CancelSubscription(ctx, c.SubscriptionID, immediate, Key(c.ID, PurposeCancel)); err != nil {
		return g.fail(ctx, c.ID, PurposeCancel, err)
	}
	return nil
}

// SetupFeeIntent prepares the one-off setup fee charge.
func (g *Gateway) SetupFeeIntent(ctx context.Context, c *domain.Customer, coupon string) (*PaymentIntent, error) {
	intent, err := g.processor.CreatePaymentIntent(ctx, PaymentIntentRequest{
		CustomerID:        c.ID,
		PaymentCustomerID: c.PaymentCustomerID,
		AmountCents:       c.SetupFeeCents,
		Coupon:            coupon,
		Description:       "Storage setup fee",
	}, SetupFeeKey(c.ID, c.SetupFeeCents, coupon))
	if errors.Is(err, ErrUnknownCoupon) {
		return nil, apperr.InvalidFields("invalid coupon", []apperr.FieldError{{Field: "coupon", Message: "unknown coupon code"}})
	}
	if err != nil {
		return nil, g.fail(ctx, c.ID, PurposeSetupFee, err)
	}
	return intent, nil
}

func (g *Gateway) fail(ctx context.Context, customerID, purpose string, err error) error {
	if g.log != nil {
		g.log.WithContext(ctx).BillingAlert(customerID, purpose, err)
	}
	return apperr.Billing(fmt.Sprintf("payment processor failed to %s", describe(purpose)), err)
}

func describe(purpose string) string {
	switch purpose {
	case PurposeSubscription:
		return "start subscription"
	case PurposeCancel:
		return "cancel subscription"
	case PurposeSetupFee:
		return "create setup fee payment"
	}
	return purpose
}

// Disabled rejects every call. It is used when no API key is configured.
type Disabled struct{}

func (Disabled) CreateSubscription(context.Context, SubscriptionRequest, string) (*Subscription, error) {
	return nil, ErrDisabled
}

func (Disabled) CancelSubscription(context.Context, string, bool, string) error {
	return ErrDisabled
}

func (Disabled) CreatePaymentIntent(context.Context, PaymentIntentRequest, string) (*PaymentIntent, error) {
	return nil, ErrDisabled
}
