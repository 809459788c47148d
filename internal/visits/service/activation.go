package service

import (
	"context"
	"fmt"

	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/events"
	"storeroom_backend/internal/schema"
)

// activateBilling starts recurring billing after a completed pickup.
//
// Calls for one customer are collapsed while in flight, and the customer is
// re-read inside the guard so a subscription that already exists is never
// created again. The processor key is derived from the customer id, which
// covers retries that reach another process.
//
// FirstPickupCompletedAt is persisted before the processor is called. If
// the processor then fails, the customer stays completed without a
// subscription and the next completion call for that pickup retries.
func (s *Service) activateBilling(ctx context.Context, visit *domain.Visit) {
	ctx = context.WithoutCancel(ctx)
	_, _, _ = s.activations.Do(visit.CustomerID, func() (any, error) {
		err := s.activate(ctx, visit)
		if err != nil {
			s.activationFailed(ctx, visit, err)
		}
		return nil, err
	})
}

func (s *Service) activate(ctx context.Context, visit *domain.Visit) error {
	customer, err := s.customers.Find(ctx, visit.CustomerID)
	if err != nil {
		return err
	}
	if customer.BillingActive() {
		return nil
	}

	if customer.FirstPickupCompletedAt == nil {
		completedAt := s.now()
		if visit.CompletedAt != nil {
			completedAt = *visit.CompletedAt
		}
		customer.FirstPickupCompletedAt = &completedAt
		if customer, err = s.customers.Update(ctx, customer.ID, customer, schema.FieldFirstPickupCompletedAt); err != nil {
			return err
		}
	}

	sub, err := s.billing.StartSubscription(ctx, customer)
	if err != nil {
		return err
	}

	customer.SubscriptionID = sub.ID
	customer.SubscriptionStatus = sub.Status
	fields := []string{schema.FieldSubscriptionID, schema.FieldSubscriptionStatus}
	if sub.PaymentCustomerID != "" {
		customer.PaymentCustomerID = sub.PaymentCustomerID
		fields = append(fields, schema.FieldPaymentCustomerID)
	}
	if _, err := s.customers.Update(ctx, customer.ID, customer, fields...); err != nil {
		return fmt.Errorf("persist subscription %s: %w", sub.ID, err)
	}

	if s.log != nil {
		s.log.WithContext(ctx).Info("billing activated",
			"customer_id", customer.ID, "visit_id", visit.ID, "subscription_id", sub.ID, "plan", customer.Plan)
	}
	s.eventBus.Publish(ctx, events.BillingActivated{
		BaseEvent:      events.NewBaseEvent(),
		CustomerID:     customer.ID,
		SubscriptionID: sub.ID,
		VisitID:        visit.ID,
	})
	return nil
}

// activationFailed hands the failure to staff. The visit completion stands.
func (s *Service) activationFailed(ctx context.Context, visit *domain.Visit, err error) {
	if s.log != nil {
		s.log.WithContext(ctx).Error("billing activation failed",
			"customer_id", visit.CustomerID, "visit_id", visit.ID, "error", err)
	}
	s.tasks.Record(ctx, domain.OperationalTask{
		CustomerID: visit.CustomerID,
		VisitID:    visit.ID,
		Priority:   domain.PriorityUrgent,
		Action:     fmt.Sprintf("Start subscription manually: billing activation failed after pickup %s (%v)", visit.ID, err),
	})
	s.eventBus.Publish(ctx, events.BillingActivationFailed{
		BaseEvent:  events.NewBaseEvent(),
		CustomerID: visit.CustomerID,
		VisitID:    visit.ID,
		Reason:     err.Error(),
	})
}
