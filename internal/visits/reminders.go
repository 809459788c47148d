package visits

import (
	"context"

	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/scheduler"
	"storeroom_backend/internal/visits/service"
)

// ReminderLoader gives the scheduler worker read access to visits and their
// customers.
type ReminderLoader struct {
	Visits    service.VisitStore
	Customers service.CustomerStore
}

// FindVisit returns one visit.
func (l ReminderLoader) FindVisit(ctx context.Context, id string) (*domain.Visit, error) {
	return l.Visits.Find(ctx, id)
}

// FindCustomer returns one customer.
func (l ReminderLoader) FindCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return l.Customers.Find(ctx, id)
}

var _ scheduler.VisitLoader = ReminderLoader{}
