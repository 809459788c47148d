package domain

import "time"

// VisitType is the kind of crew trip.
type VisitType string

const (
	VisitPickup            VisitType = "pickup"
	VisitDelivery          VisitType = "delivery"
	VisitContainerDelivery VisitType = "container_delivery"
)

// Valid reports whether t is a known visit type.
func (t VisitType) Valid() bool {
	switch t {
	case VisitPickup, VisitDelivery, VisitContainerDelivery:
		return true
	}
	return false
}

// IsWeekend reports whether date falls on Saturday or Sunday. Weekend
// visits get the premium window and the weekend surcharge.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// TimeWindow is a bookable slot within a day.
type TimeWindow string

const (
	WindowMorning   TimeWindow = "morning"
	WindowMidday    TimeWindow = "midday"
	WindowAfternoon TimeWindow = "afternoon"
	WindowWeekend   TimeWindow = "weekend"
)

// VisitStatus is a position in the visit lifecycle.
type VisitStatus string

const (
	VisitScheduled  VisitStatus = "scheduled"
	VisitInProgress VisitStatus = "in_progress"
	VisitCompleted  VisitStatus = "completed"
	VisitCancelled  VisitStatus = "cancelled"
)

var visitTransitions = map[VisitStatus][]VisitStatus{
	VisitScheduled:  {VisitInProgress, VisitCancelled},
	VisitInProgress: {VisitCompleted, VisitCancelled},
}

// Valid reports whether s is a known status.
func (s VisitStatus) Valid() bool {
	switch s {
	case VisitScheduled, VisitInProgress, VisitCompleted, VisitCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s VisitStatus) Terminal() bool {
	return s == VisitCompleted || s == VisitCancelled
}

// CanTransitionTo reports whether s -> next is a legal move.
func (s VisitStatus) CanTransitionTo(next VisitStatus) bool {
	for _, allowed := range visitTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// VehicleTier is the truck size a visit needs.
type VehicleTier string

const (
	VehicleSmall  VehicleTier = "small"
	VehicleMedium VehicleTier = "medium"
	VehicleLarge  VehicleTier = "large"
)

// Visit is a scheduled trip to a customer's address.
type Visit struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customerId"`
	Type       VisitType   `json:"type"`
	ItemIDs    []string    `json:"itemIds"`
	Date       time.Time   `json:"date"`
	Window     TimeWindow  `json:"window"`
	Status     VisitStatus `json:"status"`

	TotalCubicFeet float64 `json:"totalCubicFeet"`
	TotalWeightLbs float64 `json:"totalWeightLbs"`
	ItemCount      int     `json:"itemCount"`

	Address      string `json:"address"`
	Instructions string `json:"instructions,omitempty"`

	TriggersBilling bool `json:"triggersBilling"`

	QuotedPriceCents int64       `json:"quotedPriceCents"`
	VehicleTier      VehicleTier `json:"vehicleTier"`
	DurationMinutes  int         `json:"durationMinutes"`
	Rush             bool        `json:"rush"`

	CompletedAt *time.Time `json:"completedAt,omitempty"`
	DriverNotes string     `json:"driverNotes,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Totals sums volume, weight and count over items.
func Totals(items []Item) (cubicFeet, weightLbs float64, count int) {
	for _, item := range items {
		cubicFeet += item.CubicFeet
		weightLbs += item.WeightLbs
	}
	return cubicFeet, weightLbs, len(items)
}
