// Package notification provides event handlers for sending notifications
// in response to domain events. Domain modules publish events and never
// talk to email providers or templates themselves.
package notification

import (
	"context"
	"fmt"
	"strings"

	"storeroom_backend/internal/availability"
	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/email"
	"storeroom_backend/internal/events"
	"storeroom_backend/platform/config"
	"storeroom_backend/platform/logger"
)

// Module sends customer and operator emails for domain events.
type Module struct {
	sender email.Sender
	cfg    config.NotificationConfig
	log    *logger.Logger
}

// New creates the notification module.
func New(sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{sender: sender, cfg: cfg, log: log}
}

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.VisitScheduled{}.EventName(), m)
	bus.Subscribe(events.VisitReminderDue{}.EventName(), m)
	bus.Subscribe(events.BillingActivationFailed{}.EventName(), m)
	bus.Subscribe(events.DoubleBookingDetected{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.VisitScheduled:
		return m.handleVisitScheduled(ctx, e)
	case events.VisitReminderDue:
		return m.handleVisitReminderDue(ctx, e)
	case events.BillingActivationFailed:
		return m.handleBillingActivationFailed(ctx, e)
	case events.DoubleBookingDetected:
		return m.handleDoubleBookingDetected(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleVisitScheduled(ctx context.Context, e events.VisitScheduled) error {
	if strings.TrimSpace(e.CustomerEmail) == "" {
		return nil
	}
	details := email.VisitDetails{
		CustomerName: e.CustomerName,
		VisitType:    visitTypeLabel(e.Type),
		Date:         e.Date.Format("Monday, January 2"),
		Window:       availability.Label(e.Window),
		Address:      e.Address,
		ItemCount:    e.ItemCount,
		PriceCents:   e.QuotedPriceCents,
		ManageURL:    m.visitURL(e.VisitID),
	}
	if err := m.sender.SendVisitScheduledEmail(ctx, e.CustomerEmail, details); err != nil {
		m.log.WithContext(ctx).Error("failed to send visit scheduled email", "visit_id", e.VisitID, "error", err)
		return err
	}
	return nil
}

func (m *Module) handleVisitReminderDue(ctx context.Context, e events.VisitReminderDue) error {
	if strings.TrimSpace(e.CustomerEmail) == "" {
		return nil
	}
	details := email.VisitDetails{
		CustomerName: e.CustomerName,
		VisitType:    visitTypeLabel(e.Type),
		Date:         e.Date.Format("Monday, January 2"),
		Window:       availability.Label(e.Window),
		Address:      e.Address,
		ManageURL:    m.visitURL(e.VisitID),
	}
	if err := m.sender.SendVisitReminderEmail(ctx, e.CustomerEmail, details); err != nil {
		m.log.WithContext(ctx).Error("failed to send visit reminder email", "visit_id", e.VisitID, "error", err)
		return err
	}
	return nil
}

func (m *Module) handleBillingActivationFailed(ctx context.Context, e events.BillingActivationFailed) error {
	msg := fmt.Sprintf("First pickup %s for customer %s completed, but the subscription could not be started.\n\nReason: %s\n\nStart the subscription manually before the next billing cycle.",
		e.VisitID, e.CustomerID, e.Reason)
	return m.alertOps(ctx, "Billing activation failed", msg)
}

func (m *Module) handleDoubleBookingDetected(ctx context.Context, e events.DoubleBookingDetected) error {
	msg := fmt.Sprintf("%d visits hold the %s window on %s: %s.\n\nReschedule all but one.",
		len(e.VisitIDs), availability.Label(e.Window), e.Date.Format("2006-01-02"), strings.Join(e.VisitIDs, ", "))
	return m.alertOps(ctx, "Double booking detected", msg)
}

func (m *Module) alertOps(ctx context.Context, subject, msg string) error {
	to := m.cfg.GetOpsAlertEmail()
	if to == "" {
		m.log.WithContext(ctx).Warn("ops alert not emailed, no recipient configured", "subject", subject)
		return nil
	}
	if err := m.sender.SendOpsAlertEmail(ctx, to, subject, msg); err != nil {
		m.log.WithContext(ctx).Error("failed to send ops alert", "subject", subject, "error", err)
		return err
	}
	return nil
}

func (m *Module) visitURL(visitID string) string {
	base := strings.TrimRight(m.cfg.GetAppBaseURL(), "/")
	if base == "" || visitID == "" {
		return ""
	}
	return base + "/visits/" + visitID
}

func visitTypeLabel(t domain.VisitType) string {
	switch t {
	case domain.VisitPickup:
		return "pickup"
	case domain.VisitDelivery:
		return "delivery"
	case domain.VisitContainerDelivery:
		return "container delivery"
	}
	return string(t)
}
