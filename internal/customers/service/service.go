// Package service implements customer signup, profile, setup fee and usage
// accounting.
package service

import (
	"context"
	"strings"

	"storeroom_backend/internal/billing"
	"storeroom_backend/internal/customers/transport"
	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/events"
	"storeroom_backend/internal/records"
	"storeroom_backend/internal/schema"
	"storeroom_backend/platform/apperr"
	"storeroom_backend/platform/logger"
	"storeroom_backend/platform/phone"
	"storeroom_backend/platform/sanitize"
)

const msgInvalidPhone = "must be a valid phone number"

// CustomerStore is the subset of the customer repository the service needs.
type CustomerStore interface {
	Find(ctx context.Context, id string) (*domain.Customer, error)
	Update(ctx context.Context, id string, c *domain.Customer, fields ...string) (*domain.Customer, error)
	UpsertByKey(ctx context.Context, keyField string, c *domain.Customer, fields ...string) (*domain.Customer, bool, error)
}

// ItemReader lists a customer's items for usage accounting.
type ItemReader interface {
	Query(ctx context.Context, cond records.Cond) ([]domain.Item, error)
}

// Billing is the part of the billing gateway used outside visit completion.
type Billing interface {
	CancelSubscription(ctx context.Context, c *domain.Customer, immediate bool) error
	SetupFeeIntent(ctx context.Context, c *domain.Customer, coupon string) (*billing.PaymentIntent, error)
}

// Service provides business logic for customers.
type Service struct {
	customers     CustomerStore
	items         ItemReader
	billing       Billing
	eventBus      events.Bus
	setupFeeCents int64
	log           *logger.Logger
}

// New creates a new customers service.
func New(customers CustomerStore, items ItemReader, billingGateway Billing, eventBus events.Bus, setupFeeCents int64, log *logger.Logger) *Service {
	return &Service{
		customers:     customers,
		items:         items,
		billing:       billingGateway,
		eventBus:      eventBus,
		setupFeeCents: setupFeeCents,
		log:           log,
	}
}

// Signup creates the customer or refreshes the profile of the one already
// holding the email. Billing state and usage are never touched by a replay.
func (s *Service) Signup(ctx context.Context, req transport.SignupRequest) (transport.SignupResponse, error) {
	phoneNumber, err := phone.Parse(req.Phone, phone.DefaultRegion)
	if err != nil {
		return transport.SignupResponse{}, apperr.InvalidFields("invalid phone number", []apperr.FieldError{{Field: "phone", Message: msgInvalidPhone}})
	}

	plan := domain.PlanTier(req.Plan)
	if plan == "" {
		plan = domain.PlanStarter
	}

	customer := &domain.Customer{
		Email:              normalizeEmail(req.Email),
		Name:               sanitize.Line(req.Name),
		Phone:              phoneNumber,
		Address:            sanitize.Line(req.Address),
		Plan:               plan,
		SubscriptionStatus: domain.SubscriptionNone,
		SetupFeeCents:      s.setupFeeCents,
	}

	fields := []string{schema.FieldName, schema.FieldAddress}
	if phoneNumber != "" {
		fields = append(fields, schema.FieldPhone)
	}
	saved, created, err := s.customers.UpsertByKey(ctx, schema.FieldEmail, customer, fields...)
	if err != nil {
		return transport.SignupResponse{}, err
	}

	s.eventBus.Publish(ctx, events.CustomerSignedUp{
		BaseEvent:  events.NewBaseEvent(),
		CustomerID: saved.ID,
		Email:      saved.Email,
		Name:       saved.Name,
		Plan:       saved.Plan,
		Created:    created,
	})

	return transport.SignupResponse{Customer: toResponse(saved), Created: created}, nil
}

// Get returns one customer.
func (s *Service) Get(ctx context.Context, id string) (transport.CustomerResponse, error) {
	customer, err := s.customers.Find(ctx, id)
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	return toResponse(customer), nil
}

// UpdateProfile patches contact details and the plan tier. The tier is frozen
// once billing has started and may never drop below current usage.
func (s *Service) UpdateProfile(ctx context.Context, id string, req transport.UpdateProfileRequest) (transport.CustomerResponse, error) {
	customer, err := s.customers.Find(ctx, id)
	if err != nil {
		return transport.CustomerResponse{}, err
	}

	var fields []string
	if req.Name != nil {
		customer.Name = sanitize.Line(*req.Name)
		fields = append(fields, schema.FieldName)
	}
	if req.Address != nil {
		customer.Address = sanitize.Line(*req.Address)
		fields = append(fields, schema.FieldAddress)
	}
	if req.Phone != nil {
		normalized, err := phone.Parse(*req.Phone, phone.DefaultRegion)
		if err != nil {
			return transport.CustomerResponse{}, apperr.InvalidFields("invalid phone number", []apperr.FieldError{{Field: "phone", Message: msgInvalidPhone}})
		}
		customer.Phone = normalized
		fields = append(fields, schema.FieldPhone)
	}
	if req.Plan != nil && domain.PlanTier(*req.Plan) != customer.Plan {
		plan := domain.PlanTier(*req.Plan)
		if customer.BillingActive() {
			return transport.CustomerResponse{}, apperr.Conflict("plan cannot change after billing has started")
		}
		if plan.Limits().VolumeCapCubicFeet < customer.UsedCubicFeet {
			return transport.CustomerResponse{}, apperr.InvalidFields("plan too small", []apperr.FieldError{{Field: "plan", Message: "volume cap is below current usage"}})
		}
		customer.Plan = plan
		fields = append(fields, schema.FieldPlan)
	}

	if len(fields) == 0 {
		return toResponse(customer), nil
	}
	updated, err := s.customers.Update(ctx, id, customer, fields...)
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	return toResponse(updated), nil
}

// SetupFeeIntent prepares the setup fee payment. A coupon that discounts the
// fee to zero settles it immediately.
func (s *Service) SetupFeeIntent(ctx context.Context, id string, req transport.PaymentIntentRequest) (transport.PaymentIntentResponse, error) {
	customer, err := s.customers.Find(ctx, id)
	if err != nil {
		return transport.PaymentIntentResponse{}, err
	}
	if customer.SetupFeePaid {
		return transport.PaymentIntentResponse{}, apperr.Conflict("setup fee already settled")
	}

	intent, err := s.billing.SetupFeeIntent(ctx, customer, strings.TrimSpace(req.Coupon))
	if err != nil {
		return transport.PaymentIntentResponse{}, err
	}

	if intent.FinalAmountCents == 0 {
		customer.SetupFeePaid = true
		if _, err := s.customers.Update(ctx, id, customer, schema.FieldSetupFeePaid); err != nil {
			return transport.PaymentIntentResponse{}, err
		}
	}

	return transport.PaymentIntentResponse{
		ID:               intent.ID,
		ClientSecret:     intent.ClientSecret,
		AmountCents:      intent.AmountCents,
		FinalAmountCents: intent.FinalAmountCents,
		Coupon:           intent.Coupon,
	}, nil
}

// WaiveSetupFee settles the fee without payment and records why.
func (s *Service) WaiveSetupFee(ctx context.Context, id string, req transport.WaiveSetupFeeRequest) (transport.CustomerResponse, error) {
	customer, err := s.customers.Find(ctx, id)
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	if customer.SetupFeePaid {
		return transport.CustomerResponse{}, apperr.Conflict("setup fee already settled")
	}

	customer.SetupFeePaid = true
	customer.SetupFeeCents = 0
	customer.SetupFeeWaiverReason = sanitize.Text(req.Reason)
	updated, err := s.customers.Update(ctx, id, customer,
		schema.FieldSetupFeePaid, schema.FieldSetupFeeCents, schema.FieldSetupFeeWaiverReason)
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	return toResponse(updated), nil
}

// CancelSubscription stops recurring billing. The subscription id is kept.
func (s *Service) CancelSubscription(ctx context.Context, id string, req transport.CancelSubscriptionRequest) (transport.CustomerResponse, error) {
	customer, err := s.customers.Find(ctx, id)
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	if customer.SubscriptionStatus == domain.SubscriptionCancelled {
		return transport.CustomerResponse{}, apperr.Conflict("subscription already cancelled")
	}
	if err := s.billing.CancelSubscription(ctx, customer, req.Immediate); err != nil {
		return transport.CustomerResponse{}, err
	}

	customer.SubscriptionStatus = domain.SubscriptionCancelled
	updated, err := s.customers.Update(ctx, id, customer, schema.FieldSubscriptionStatus)
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	return toResponse(updated), nil
}

// RecomputeUsage re-derives the usage counters from every item the customer
// owns. Stored counters are never adjusted incrementally.
func (s *Service) RecomputeUsage(ctx context.Context, customerID string) error {
	_, err := s.recompute(ctx, customerID)
	return err
}

// Usage recomputes and returns the customer's counters.
func (s *Service) Usage(ctx context.Context, customerID string) (transport.CustomerResponse, error) {
	customer, err := s.recompute(ctx, customerID)
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	return toResponse(customer), nil
}

func (s *Service) recompute(ctx context.Context, customerID string) (*domain.Customer, error) {
	customer, err := s.customers.Find(ctx, customerID)
	if err != nil {
		return nil, err
	}
	items, err := s.items.Query(ctx, records.Eq(schema.FieldCustomerID, customerID))
	if err != nil {
		return nil, err
	}

	usage := domain.SumUsage(items)
	if usage.CubicFeet > customer.Limits.VolumeCapCubicFeet && s.log != nil {
		s.log.WithContext(ctx).Warn("customer over plan volume cap",
			"customer_id", customerID, "used", usage.CubicFeet, "cap", customer.Limits.VolumeCapCubicFeet)
	}

	customer.UsedCubicFeet = usage.CubicFeet
	customer.UsedInsuredCents = usage.InsuredCents
	customer.ActiveItemCount = usage.ActiveItems
	updated, err := s.customers.Update(ctx, customerID, customer,
		schema.FieldUsedCubicFeet, schema.FieldUsedInsuredCents, schema.FieldActiveItemCount)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func toResponse(c *domain.Customer) transport.CustomerResponse {
	return transport.CustomerResponse{
		ID:                     c.ID,
		Email:                  c.Email,
		Name:                   c.Name,
		Phone:                  c.Phone,
		Address:                c.Address,
		Plan:                   c.Plan,
		Limits:                 c.Limits,
		Usage:                  domain.Usage{CubicFeet: c.UsedCubicFeet, InsuredCents: c.UsedInsuredCents, ActiveItems: c.ActiveItemCount},
		RemainingCubicFeet:     c.RemainingCubicFeet(),
		SubscriptionStatus:     c.SubscriptionStatus,
		BillingActive:          c.BillingActive(),
		SetupFeePaid:           c.SetupFeePaid,
		SetupFeeCents:          c.SetupFeeCents,
		SetupFeeWaiverReason:   c.SetupFeeWaiverReason,
		FirstPickupCompletedAt: c.FirstPickupCompletedAt,
		CreatedAt:              c.CreatedAt,
	}
}
