package transport

import (
	"time"

	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/estimation"
)

// DateLayout is the wire format of visit dates.
const DateLayout = "2006-01-02"

type CreateVisitRequest struct {
	CustomerID   string   `json:"customerId,omitempty" validate:"omitempty,max=64"`
	Type         string   `json:"type" validate:"required,visittype"`
	ItemIDs      []string `json:"itemIds" validate:"max=100,dive,required,max=64"`
	Date         string   `json:"date" validate:"required,datetime=2006-01-02"`
	Window       string   `json:"window" validate:"required,timewindow"`
	Address      string   `json:"address,omitempty" validate:"omitempty,max=300"`
	Instructions string   `json:"instructions,omitempty" validate:"omitempty,max=2000"`
	Rush         bool     `json:"rush"`
	Bundle       bool     `json:"bundle"`
}

type QuoteRequest struct {
	CustomerID string   `json:"customerId,omitempty" validate:"omitempty,max=64"`
	Type       string   `json:"type" validate:"required,visittype"`
	ItemIDs    []string `json:"itemIds" validate:"max=100,dive,required,max=64"`
	Date       string   `json:"date" validate:"required,datetime=2006-01-02"`
	Rush       bool     `json:"rush"`
	Bundle     bool     `json:"bundle"`
}

type TransitionRequest struct {
	Status      string `json:"status" validate:"required,visitstatus"`
	DriverNotes string `json:"driverNotes,omitempty" validate:"omitempty,max=2000"`
}

type ListVisitsRequest struct {
	CustomerID string `form:"customerId" validate:"omitempty,max=64"`
	Status     string `form:"status" validate:"omitempty,visitstatus"`
	Date       string `form:"date" validate:"omitempty,datetime=2006-01-02"`
}

type VisitResponse struct {
	ID               string             `json:"id"`
	CustomerID       string             `json:"customerId"`
	Type             domain.VisitType   `json:"type"`
	ItemIDs          []string           `json:"itemIds"`
	Date             string             `json:"date"`
	Window           domain.TimeWindow  `json:"window"`
	WindowLabel      string             `json:"windowLabel"`
	Status           domain.VisitStatus `json:"status"`
	TotalCubicFeet   float64            `json:"totalCubicFeet"`
	TotalWeightLbs   float64            `json:"totalWeightLbs"`
	ItemCount        int                `json:"itemCount"`
	Address          string             `json:"address"`
	Instructions     string             `json:"instructions,omitempty"`
	TriggersBilling  bool               `json:"triggersBilling"`
	QuotedPriceCents int64              `json:"quotedPriceCents"`
	VehicleTier      domain.VehicleTier `json:"vehicleTier"`
	DurationMinutes  int                `json:"durationMinutes"`
	Rush             bool               `json:"rush"`
	CompletedAt      *time.Time         `json:"completedAt,omitempty"`
	DriverNotes      string             `json:"driverNotes,omitempty"`
	CancelledAt      *time.Time         `json:"cancelledAt,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
}

type CreateVisitResponse struct {
	Visit VisitResponse    `json:"visit"`
	Quote estimation.Quote `json:"quote"`
}

type VisitListResponse struct {
	Items []VisitResponse `json:"items"`
	Total int             `json:"total"`
}
