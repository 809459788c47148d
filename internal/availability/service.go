package availability

import (
	"context"
	"fmt"
	"time"

	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/records"
	"storeroom_backend/internal/schema"
	"storeroom_backend/platform/apperr"
)

// VisitReader is the slice of the visit repository availability needs.
type VisitReader interface {
	Query(ctx context.Context, cond records.Cond) ([]domain.Visit, error)
}

// Day is the window set for one date.
type Day struct {
	Date        string   `json:"date"`
	Weekend     bool     `json:"weekend"`
	Windows     []Window `json:"windows"`
	FullyBooked bool     `json:"fullyBooked"`
}

// Service answers availability questions against stored visits.
type Service struct {
	visits VisitReader
	now    func() time.Time
}

// NewService creates an availability service.
func NewService(visits VisitReader) *Service {
	return &Service{visits: visits, now: time.Now}
}

// GetDay returns every window for date with its availability.
func (s *Service) GetDay(ctx context.Context, date time.Time) (*Day, error) {
	booked, err := s.booked(ctx, date)
	if err != nil {
		return nil, err
	}
	windows := ForDate(date, booked)
	full := true
	for _, w := range windows {
		if w.Available {
			full = false
			break
		}
	}
	return &Day{
		Date:        date.Format(dateLayout),
		Weekend:     domain.IsWeekend(date),
		Windows:     windows,
		FullyBooked: full,
	}, nil
}

// Suggestions returns the next bookable business days.
func (s *Service) Suggestions(count int) []Suggestion {
	return Suggest(s.now(), count)
}

// EnsureOpen is the read-before-create check for a booking.
func (s *Service) EnsureOpen(ctx context.Context, date time.Time, window domain.TimeWindow) error {
	if !ValidWindow(date, window) {
		return apperr.Validation(fmt.Sprintf("window %q is not offered on %s", window, date.Format(dateLayout)))
	}
	booked, err := s.booked(ctx, date)
	if err != nil {
		return err
	}
	for _, w := range ForDate(date, booked) {
		if w.ID == window && !w.Available {
			return apperr.Conflict("time window is already booked")
		}
	}
	return nil
}

// DetectDoubleBooking returns the IDs of every live visit holding
// (date, window). More than one means two bookings raced.
func (s *Service) DetectDoubleBooking(ctx context.Context, date time.Time, window domain.TimeWindow) ([]string, error) {
	booked, err := s.booked(ctx, date)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, v := range booked {
		if v.Window == window && v.Status != domain.VisitCancelled {
			ids = append(ids, v.ID)
		}
	}
	return ids, nil
}

func (s *Service) booked(ctx context.Context, date time.Time) ([]domain.Visit, error) {
	return s.visits.Query(ctx, records.And(
		records.Eq(schema.FieldDate, date),
		records.Not(records.Eq(schema.FieldStatus, domain.VisitCancelled)),
	))
}
