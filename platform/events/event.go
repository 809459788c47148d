// Package events carries booking notifications (signups, scheduled
// visits, status changes, billing activation) between modules in the
// same process. Event payloads are defined in internal/events.
package events

import "time"

// Event is a named fact about a customer, visit or invoice. The name is
// the subscription key, e.g. "visits.scheduled".
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent stamps an event in UTC so reminder and billing handlers
// compare against the same clock as the scheduler.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now().UTC()}
}
