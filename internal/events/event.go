// Package events defines what the booking engine announces: customer
// signups, visit scheduling and status changes, reminders, double
// bookings and storage billing activation. Dispatch lives in platform/events.
package events

import (
	"time"

	"storeroom_backend/internal/domain"
	"storeroom_backend/platform/events"
	"storeroom_backend/platform/logger"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus returns the bus shared by the visits, customers,
// notification and scheduler modules of one process.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Customer Events
// =============================================================================

// CustomerSignedUp is published when signup creates or refreshes a customer.
type CustomerSignedUp struct {
	BaseEvent
	CustomerID string          `json:"customerId"`
	Email      string          `json:"email"`
	Name       string          `json:"name"`
	Plan       domain.PlanTier `json:"plan"`
	Created    bool            `json:"created"`
}

func (e CustomerSignedUp) EventName() string { return "customers.signed_up" }

// =============================================================================
// Visit Events
// =============================================================================

// VisitScheduled is published after a visit is stored.
type VisitScheduled struct {
	BaseEvent
	VisitID          string            `json:"visitId"`
	CustomerID       string            `json:"customerId"`
	CustomerEmail    string            `json:"customerEmail"`
	CustomerName     string            `json:"customerName"`
	Type             domain.VisitType  `json:"type"`
	Date             time.Time         `json:"date"`
	Window           domain.TimeWindow `json:"window"`
	Address          string            `json:"address"`
	ItemCount        int               `json:"itemCount"`
	QuotedPriceCents int64             `json:"quotedPriceCents"`
}

func (e VisitScheduled) EventName() string { return "visits.scheduled" }

// VisitStatusChanged is published after every persisted transition.
type VisitStatusChanged struct {
	BaseEvent
	VisitID    string             `json:"visitId"`
	CustomerID string             `json:"customerId"`
	Type       domain.VisitType   `json:"type"`
	From       domain.VisitStatus `json:"from"`
	To         domain.VisitStatus `json:"to"`
	ActorID    string             `json:"actorId"`
}

func (e VisitStatusChanged) EventName() string { return "visits.status_changed" }

// VisitReminderDue is published by the scheduler a day before a visit.
type VisitReminderDue struct {
	BaseEvent
	VisitID       string            `json:"visitId"`
	CustomerID    string            `json:"customerId"`
	CustomerEmail string            `json:"customerEmail"`
	CustomerName  string            `json:"customerName"`
	Type          domain.VisitType  `json:"type"`
	Date          time.Time         `json:"date"`
	Window        domain.TimeWindow `json:"window"`
	Address       string            `json:"address"`
}

func (e VisitReminderDue) EventName() string { return "visits.reminder_due" }

// DoubleBookingDetected is published when two live visits hold one window.
type DoubleBookingDetected struct {
	BaseEvent
	Date     time.Time         `json:"date"`
	Window   domain.TimeWindow `json:"window"`
	VisitIDs []string          `json:"visitIds"`
}

func (e DoubleBookingDetected) EventName() string { return "visits.double_booking_detected" }

// =============================================================================
// Billing Events
// =============================================================================

// BillingActivated is published once a customer's subscription starts.
type BillingActivated struct {
	BaseEvent
	CustomerID     string `json:"customerId"`
	SubscriptionID string `json:"subscriptionId"`
	VisitID        string `json:"visitId"`
}

func (e BillingActivated) EventName() string { return "billing.activated" }

// BillingActivationFailed is published when the pickup completed but the
// subscription could not be created. Staff must follow up.
type BillingActivationFailed struct {
	BaseEvent
	CustomerID string `json:"customerId"`
	VisitID    string `json:"visitId"`
	Reason     string `json:"reason"`
}

func (e BillingActivationFailed) EventName() string { return "billing.activation_failed" }
