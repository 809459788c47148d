// Package service books visits, prices them and drives them through their
// lifecycle, including the one-time start of recurring billing.
package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"storeroom_backend/internal/availability"
	"storeroom_backend/internal/billing"
	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/estimation"
	"storeroom_backend/internal/events"
	"storeroom_backend/internal/records"
	"storeroom_backend/internal/scheduler"
	"storeroom_backend/internal/schema"
	"storeroom_backend/internal/tasks"
	"storeroom_backend/internal/visits/transport"
	"storeroom_backend/platform/apperr"
	"storeroom_backend/platform/logger"
	"storeroom_backend/platform/sanitize"
)

// maxParallelLoads bounds concurrent item reads against the record store.
const maxParallelLoads = 4

// VisitStore is the visit repository.
type VisitStore interface {
	Find(ctx context.Context, id string) (*domain.Visit, error)
	Query(ctx context.Context, cond records.Cond) ([]domain.Visit, error)
	Create(ctx context.Context, v *domain.Visit) (*domain.Visit, error)
	Update(ctx context.Context, id string, v *domain.Visit, fields ...string) (*domain.Visit, error)
}

// CustomerStore is the customer repository.
type CustomerStore interface {
	Find(ctx context.Context, id string) (*domain.Customer, error)
	Update(ctx context.Context, id string, c *domain.Customer, fields ...string) (*domain.Customer, error)
}

// ItemStore is the item repository.
type ItemStore interface {
	Find(ctx context.Context, id string) (*domain.Item, error)
	Update(ctx context.Context, id string, item *domain.Item, fields ...string) (*domain.Item, error)
}

// Availability checks and audits window bookings.
type Availability interface {
	EnsureOpen(ctx context.Context, date time.Time, window domain.TimeWindow) error
	DetectDoubleBooking(ctx context.Context, date time.Time, window domain.TimeWindow) ([]string, error)
}

// Billing starts a customer's recurring subscription.
type Billing interface {
	StartSubscription(ctx context.Context, c *domain.Customer) (*billing.Subscription, error)
}

// UsageRecomputer refreshes a customer's usage counters.
type UsageRecomputer interface {
	RecomputeUsage(ctx context.Context, customerID string) error
}

// Deps are the collaborators of the visits service. Reminders may be nil
// when no queue is configured.
type Deps struct {
	Visits       VisitStore
	Customers    CustomerStore
	Items        ItemStore
	Availability Availability
	Billing      Billing
	Usage        UsageRecomputer
	Tasks        tasks.Recorder
	Reminders    scheduler.ReminderScheduler
	EventBus     events.Bus
	Pricing      estimation.Pricing
	Log          *logger.Logger
}

// Service provides business logic for visits.
type Service struct {
	visits       VisitStore
	customers    CustomerStore
	items        ItemStore
	availability Availability
	billing      Billing
	usage        UsageRecomputer
	tasks        tasks.Recorder
	reminders    scheduler.ReminderScheduler
	eventBus     events.Bus
	pricing      estimation.Pricing
	log          *logger.Logger

	activations singleflight.Group
	now         func() time.Time
}

// New creates a new visits service.
func New(deps Deps) *Service {
	return &Service{
		visits:       deps.Visits,
		customers:    deps.Customers,
		items:        deps.Items,
		availability: deps.Availability,
		billing:      deps.Billing,
		usage:        deps.Usage,
		tasks:        deps.Tasks,
		reminders:    deps.Reminders,
		eventBus:     deps.EventBus,
		pricing:      deps.Pricing,
		log:          deps.Log,
		now:          time.Now,
	}
}

// Quote prices a draft visit without booking it.
func (s *Service) Quote(ctx context.Context, actor domain.Actor, req transport.QuoteRequest) (estimation.Quote, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return estimation.Quote{}, err
	}
	owner := ownerFor(actor, req.CustomerID)
	items, err := s.loadItems(ctx, actor, req.ItemIDs)
	if err != nil {
		return estimation.Quote{}, err
	}
	for _, item := range items {
		if owner != "" && item.CustomerID != owner {
			return estimation.Quote{}, apperr.NotFound("item not found")
		}
	}
	flags := estimation.Flags{Rush: req.Rush, Bundle: req.Bundle}
	return s.pricing.Estimate(domain.VisitType(req.Type), items, flags, date), nil
}

// Create books a visit. The window is re-checked immediately before the
// write; a race that still double-books the window is flagged for staff
// after the fact.
func (s *Service) Create(ctx context.Context, actor domain.Actor, req transport.CreateVisitRequest) (transport.CreateVisitResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return transport.CreateVisitResponse{}, err
	}
	if date.Before(startOfDay(s.now())) {
		return transport.CreateVisitResponse{}, apperr.InvalidFields("date in the past", []apperr.FieldError{{Field: "date", Message: "must not be in the past"}})
	}
	visitType := domain.VisitType(req.Type)
	window := domain.TimeWindow(req.Window)
	if visitType != domain.VisitContainerDelivery && len(req.ItemIDs) == 0 {
		return transport.CreateVisitResponse{}, apperr.InvalidFields("no items", []apperr.FieldError{{Field: "itemIds", Message: "is required"}})
	}

	customer, items, err := s.loadCustomerAndItems(ctx, actor, ownerFor(actor, req.CustomerID), req.ItemIDs)
	if err != nil {
		return transport.CreateVisitResponse{}, err
	}
	if err := checkItems(visitType, customer, items); err != nil {
		return transport.CreateVisitResponse{}, err
	}

	quote := s.pricing.Estimate(visitType, items, estimation.Flags{Rush: req.Rush, Bundle: req.Bundle}, date)

	if err := s.availability.EnsureOpen(ctx, date, window); err != nil {
		return transport.CreateVisitResponse{}, err
	}

	address := sanitize.Line(req.Address)
	if address == "" {
		address = customer.Address
	}
	if address == "" {
		return transport.CreateVisitResponse{}, apperr.InvalidFields("no address", []apperr.FieldError{{Field: "address", Message: "is required when the customer has none on file"}})
	}

	triggersBilling := false
	if visitType == domain.VisitPickup {
		if triggersBilling, err = s.isFirstPickup(ctx, customer); err != nil {
			return transport.CreateVisitResponse{}, err
		}
	}

	visit := &domain.Visit{
		CustomerID:       customer.ID,
		Type:             visitType,
		ItemIDs:          idsOf(items),
		Date:             date,
		Window:           window,
		Status:           domain.VisitScheduled,
		TotalCubicFeet:   quote.CubicFeet,
		TotalWeightLbs:   quote.WeightLbs,
		ItemCount:        quote.ItemCount,
		Address:          address,
		Instructions:     sanitize.Text(req.Instructions),
		TriggersBilling:  triggersBilling,
		QuotedPriceCents: quote.TotalCents,
		VehicleTier:      quote.Tier,
		DurationMinutes:  quote.DurationMinutes,
		Rush:             req.Rush,
	}
	created, err := s.visits.Create(ctx, visit)
	if err != nil {
		return transport.CreateVisitResponse{}, err
	}

	s.auditWindow(ctx, created)
	if visitType == domain.VisitDelivery {
		s.linkReturns(ctx, created, items)
	}
	s.tasks.Record(ctx, domain.OperationalTask{
		CustomerID: created.CustomerID,
		VisitID:    created.ID,
		Priority:   priorityFor(created),
		Action:     fmt.Sprintf("Prepare %s for %s on %s, %s (%s vehicle)", label(created.Type), customer.Name, created.Date.Format(transport.DateLayout), availability.Label(created.Window), created.VehicleTier),
	})
	if visitType == domain.VisitPickup {
		s.eventBus.Publish(ctx, events.VisitScheduled{
			BaseEvent:        events.NewBaseEvent(),
			VisitID:          created.ID,
			CustomerID:       customer.ID,
			CustomerEmail:    customer.Email,
			CustomerName:     customer.Name,
			Type:             created.Type,
			Date:             created.Date,
			Window:           created.Window,
			Address:          created.Address,
			ItemCount:        created.ItemCount,
			QuotedPriceCents: created.QuotedPriceCents,
		})
	}
	s.scheduleReminder(ctx, created)

	return transport.CreateVisitResponse{Visit: toResponse(created), Quote: quote}, nil
}

// Get returns one visit the actor may see.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id string) (transport.VisitResponse, error) {
	visit, err := s.load(ctx, actor, id)
	if err != nil {
		return transport.VisitResponse{}, err
	}
	return toResponse(visit), nil
}

// List returns visits ordered by date and window. Customers only see their
// own; staff may filter by customer and date.
func (s *Service) List(ctx context.Context, actor domain.Actor, req transport.ListVisitsRequest) (transport.VisitListResponse, error) {
	var conds []records.Cond
	if owner := ownerFor(actor, req.CustomerID); owner != "" {
		conds = append(conds, records.Eq(schema.FieldCustomerID, owner))
	} else if !actor.Staff {
		return transport.VisitListResponse{}, apperr.Unauthorized("unauthorized")
	}
	if req.Status != "" {
		conds = append(conds, records.Eq(schema.FieldStatus, domain.VisitStatus(req.Status)))
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			return transport.VisitListResponse{}, err
		}
		conds = append(conds, records.Eq(schema.FieldDate, date))
	}

	cond := records.All()
	if len(conds) > 0 {
		cond = records.And(conds...)
	}
	list, err := s.visits.Query(ctx, cond)
	if err != nil {
		return transport.VisitListResponse{}, err
	}
	slices.SortStableFunc(list, func(a, b domain.Visit) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return availability.StartHour(a.Window) - availability.StartHour(b.Window)
	})

	resp := transport.VisitListResponse{Items: make([]transport.VisitResponse, 0, len(list)), Total: len(list)}
	for i := range list {
		resp.Items = append(resp.Items, toResponse(&list[i]))
	}
	return resp, nil
}

// isFirstPickup reports whether a new pickup would be the customer's first:
// no pickup has completed and no other live pickup is booked.
func (s *Service) isFirstPickup(ctx context.Context, customer *domain.Customer) (bool, error) {
	if customer.FirstPickupCompletedAt != nil {
		return false, nil
	}
	existing, err := s.visits.Query(ctx, records.And(
		records.Eq(schema.FieldCustomerID, customer.ID),
		records.Eq(schema.FieldType, domain.VisitPickup),
		records.Not(records.Eq(schema.FieldStatus, domain.VisitCancelled)),
	))
	if err != nil {
		return false, err
	}
	return len(existing) == 0, nil
}

func (s *Service) load(ctx context.Context, actor domain.Actor, id string) (*domain.Visit, error) {
	visit, err := s.visits.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(visit.CustomerID) {
		return nil, apperr.NotFound("visit not found")
	}
	return visit, nil
}

// loadCustomerAndItems reads the customer and every item concurrently.
// Items the customer does not own are reported as not found.
func (s *Service) loadCustomerAndItems(ctx context.Context, actor domain.Actor, customerID string, itemIDs []string) (*domain.Customer, []domain.Item, error) {
	if !actor.Owns(customerID) {
		return nil, nil, apperr.NotFound("customer not found")
	}

	var customer *domain.Customer
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.customers.Find(gctx, customerID)
		customer = c
		return err
	})
	var items []domain.Item
	g.Go(func() error {
		loaded, err := s.loadItems(gctx, actor, itemIDs)
		items = loaded
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for _, item := range items {
		if item.CustomerID != customer.ID {
			return nil, nil, apperr.NotFound("item not found")
		}
	}
	return customer, items, nil
}

func (s *Service) loadItems(ctx context.Context, actor domain.Actor, ids []string) ([]domain.Item, error) {
	ids = dedupe(ids)
	items := make([]domain.Item, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			item, err := s.items.Find(gctx, id)
			if err != nil {
				return err
			}
			if !actor.Owns(item.CustomerID) {
				return apperr.NotFound("item not found")
			}
			items[i] = *item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// checkItems enforces where items must be for the visit type and that a
// pickup fits under the plan's volume cap.
func checkItems(visitType domain.VisitType, customer *domain.Customer, items []domain.Item) error {
	var want domain.ItemStatus
	switch visitType {
	case domain.VisitPickup:
		want = domain.ItemAtHome
	case domain.VisitDelivery:
		want = domain.ItemInStorage
	default:
		return nil
	}

	var fields []apperr.FieldError
	for _, item := range items {
		if item.Status != want {
			fields = append(fields, apperr.FieldError{Field: "itemIds", Message: fmt.Sprintf("item %s is %s, expected %s", item.ID, item.Status, want)})
		} else if visitType == domain.VisitDelivery && item.ReturnVisitID != "" {
			fields = append(fields, apperr.FieldError{Field: "itemIds", Message: fmt.Sprintf("item %s already has a delivery scheduled", item.ID)})
		}
	}
	if len(fields) > 0 {
		return apperr.InvalidFields("items cannot be moved by this visit", fields)
	}

	if visitType == domain.VisitPickup {
		volume, _, _ := domain.Totals(items)
		if volume > customer.RemainingCubicFeet() {
			return apperr.InvalidFields("plan volume exceeded", []apperr.FieldError{{
				Field:   "itemIds",
				Message: fmt.Sprintf("pickup needs %.1f cu ft but only %.1f remain on the %s plan", volume, customer.RemainingCubicFeet(), customer.Plan),
			}})
		}
	}
	return nil
}

// auditWindow looks for a second live booking that slipped past EnsureOpen.
func (s *Service) auditWindow(ctx context.Context, visit *domain.Visit) {
	ids, err := s.availability.DetectDoubleBooking(ctx, visit.Date, visit.Window)
	if err != nil {
		if s.log != nil {
			s.log.WithContext(ctx).Warn("double booking check failed", "visit_id", visit.ID, "error", err)
		}
		return
	}
	if len(ids) < 2 {
		return
	}
	if s.log != nil {
		s.log.WithContext(ctx).Warn("window double booked",
			"date", visit.Date.Format(transport.DateLayout), "window", visit.Window, "visit_ids", strings.Join(ids, ","))
	}
	s.tasks.Record(ctx, domain.OperationalTask{
		CustomerID: visit.CustomerID,
		VisitID:    visit.ID,
		Priority:   domain.PriorityUrgent,
		Action:     fmt.Sprintf("Manual reschedule: %s %s is held by visits %s", visit.Date.Format(transport.DateLayout), availability.Label(visit.Window), strings.Join(ids, ", ")),
	})
	s.eventBus.Publish(ctx, events.DoubleBookingDetected{
		BaseEvent: events.NewBaseEvent(),
		Date:      visit.Date,
		Window:    visit.Window,
		VisitIDs:  ids,
	})
}

// linkReturns marks each item with the delivery that brings it home.
func (s *Service) linkReturns(ctx context.Context, visit *domain.Visit, items []domain.Item) {
	for i := range items {
		item := &items[i]
		item.ReturnVisitID = visit.ID
		if _, err := s.items.Update(ctx, item.ID, item, schema.FieldReturnVisitID); err != nil && s.log != nil {
			s.log.WithContext(ctx).Warn("failed to link return delivery", "item_id", item.ID, "visit_id", visit.ID, "error", err)
		}
	}
}

func (s *Service) scheduleReminder(ctx context.Context, visit *domain.Visit) {
	if s.reminders == nil {
		return
	}
	runAt := scheduler.ReminderTime(visit.Date, availability.StartHour(visit.Window))
	if !runAt.After(s.now()) {
		return
	}
	payload := scheduler.VisitReminderPayload{VisitID: visit.ID, CustomerID: visit.CustomerID}
	if err := s.reminders.ScheduleVisitReminder(ctx, payload, runAt); err != nil && s.log != nil {
		s.log.WithContext(ctx).Warn("failed to schedule visit reminder", "visit_id", visit.ID, "error", err)
	}
}

func priorityFor(v *domain.Visit) domain.TaskPriority {
	if v.Rush {
		return domain.PriorityHigh
	}
	return domain.PriorityNormal
}

func ownerFor(actor domain.Actor, requested string) string {
	if actor.Staff && requested != "" {
		return requested
	}
	if actor.Staff {
		return ""
	}
	return actor.ID
}

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse(transport.DateLayout, value)
	if err != nil {
		return time.Time{}, apperr.InvalidFields("invalid date", []apperr.FieldError{{Field: "date", Message: "must match YYYY-MM-DD"}})
	}
	return date, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func idsOf(items []domain.Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func label(t domain.VisitType) string {
	return strings.ReplaceAll(string(t), "_", " ")
}

func toResponse(v *domain.Visit) transport.VisitResponse {
	itemIDs := v.ItemIDs
	if itemIDs == nil {
		itemIDs = []string{}
	}
	return transport.VisitResponse{
		ID:               v.ID,
		CustomerID:       v.CustomerID,
		Type:             v.Type,
		ItemIDs:          itemIDs,
		Date:             v.Date.Format(transport.DateLayout),
		Window:           v.Window,
		WindowLabel:      availability.Label(v.Window),
		Status:           v.Status,
		TotalCubicFeet:   v.TotalCubicFeet,
		TotalWeightLbs:   v.TotalWeightLbs,
		ItemCount:        v.ItemCount,
		Address:          v.Address,
		Instructions:     v.Instructions,
		TriggersBilling:  v.TriggersBilling,
		QuotedPriceCents: v.QuotedPriceCents,
		VehicleTier:      v.VehicleTier,
		DurationMinutes:  v.DurationMinutes,
		Rush:             v.Rush,
		CompletedAt:      v.CompletedAt,
		DriverNotes:      v.DriverNotes,
		CancelledAt:      v.CancelledAt,
		CreatedAt:        v.CreatedAt,
	}
}
