package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"storeroom_backend/internal/availability"
	"storeroom_backend/internal/billing"
	customersvc "storeroom_backend/internal/customers/service"
	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/estimation"
	"storeroom_backend/internal/events"
	"storeroom_backend/internal/records"
	"storeroom_backend/internal/schema"
	"storeroom_backend/internal/tasks"
	"storeroom_backend/internal/visits/transport"
	"storeroom_backend/platform/apperr"
	"storeroom_backend/platform/recordstore/memstore"
)

// Wednesday 2026-03-04 is two days after the fixture clock.
const visitDate = "2026-03-04"

var fixtureNow = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.EventName() == name {
			n++
		}
	}
	return n
}

// fakeProcessor counts subscription calls and honours idempotency keys the
// way a real processor does.
type fakeProcessor struct {
	mu    sync.Mutex
	calls int
	subs  map[string]*billing.Subscription
	err   error
	delay time.Duration
}

func (p *fakeProcessor) CreateSubscription(_ context.Context, req billing.SubscriptionRequest, key string) (*billing.Subscription, error) {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	if p.subs == nil {
		p.subs = make(map[string]*billing.Subscription)
	}
	if sub, ok := p.subs[key]; ok {
		return sub, nil
	}
	sub := &billing.Subscription{
		ID:                fmt.Sprintf("sub_%d", len(p.subs)+1),
		PaymentCustomerID: "cus_" + req.CustomerID,
		Status:            domain.SubscriptionActive,
	}
	p.subs[key] = sub
	return sub, nil
}

func (p *fakeProcessor) CancelSubscription(context.Context, string, bool, string) error {
	return nil
}

func (p *fakeProcessor) CreatePaymentIntent(_ context.Context, req billing.PaymentIntentRequest, _ string) (*billing.PaymentIntent, error) {
	return &billing.PaymentIntent{ID: "pi_1", AmountCents: req.AmountCents, FinalAmountCents: req.AmountCents}, nil
}

func (p *fakeProcessor) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fixture struct {
	svc       *Service
	customers *records.Repository[domain.Customer]
	items     *records.Repository[domain.Item]
	visits    *records.Repository[domain.Visit]
	tasks     *records.Repository[domain.OperationalTask]
	processor *fakeProcessor
	bus       *recordingBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	f := &fixture{
		customers: records.New(store, schema.Customers, "customer", nil),
		items:     records.New(store, schema.Items, "item", nil),
		visits:    records.New(store, schema.Visits, "visit", nil),
		tasks:     records.New(store, schema.Tasks, "task", nil),
		processor: &fakeProcessor{},
		bus:       &recordingBus{},
	}
	gateway := billing.NewGateway(f.processor, nil)
	f.svc = New(Deps{
		Visits:       f.visits,
		Customers:    f.customers,
		Items:        f.items,
		Availability: availability.NewService(f.visits),
		Billing:      gateway,
		Usage:        customersvc.New(f.customers, f.items, gateway, f.bus, 9900, nil),
		Tasks:        tasks.NewDirect(f.tasks, nil),
		EventBus:     f.bus,
		Pricing:      estimation.DefaultPricing(),
	})
	f.svc.now = func() time.Time { return fixtureNow }
	return f
}

func (f *fixture) customer(t *testing.T, email string) domain.Actor {
	t.Helper()
	c, err := f.customers.Create(context.Background(), &domain.Customer{
		Email:              email,
		Name:               "Test Customer",
		Address:            "1 Main St",
		Plan:               domain.PlanStarter,
		SubscriptionStatus: domain.SubscriptionNone,
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return domain.Actor{ID: c.ID}
}

func (f *fixture) item(t *testing.T, owner domain.Actor, l, w, h, lbs float64, status domain.ItemStatus) string {
	t.Helper()
	item := &domain.Item{CustomerID: owner.ID, Name: "Box", LengthIn: l, WidthIn: w, HeightIn: h, WeightLbs: lbs, Status: status}
	item.Recompute()
	created, err := f.items.Create(context.Background(), item)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return created.ID
}

func (f *fixture) book(t *testing.T, actor domain.Actor, visitType domain.VisitType, window domain.TimeWindow, itemIDs ...string) transport.VisitResponse {
	t.Helper()
	res, err := f.svc.Create(context.Background(), actor, transport.CreateVisitRequest{
		Type:    string(visitType),
		ItemIDs: itemIDs,
		Date:    visitDate,
		Window:  string(window),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return res.Visit
}

func (f *fixture) move(t *testing.T, id string, status domain.VisitStatus) transport.VisitResponse {
	t.Helper()
	res, err := f.svc.Transition(context.Background(), staff, id, transport.TransitionRequest{Status: string(status)})
	if err != nil {
		t.Fatalf("Transition to %s: %v", status, err)
	}
	return res
}

var staff = domain.Actor{ID: "staff-1", Staff: true}

func TestFirstPickupActivatesBillingOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.customer(t, "ann@example.com")
	small := f.item(t, owner, 10, 10, 10, 5, domain.ItemAtHome)
	large := f.item(t, owner, 20, 20, 20, 20, domain.ItemAtHome)

	quote, err := f.svc.Quote(ctx, owner, transport.QuoteRequest{
		Type:    string(domain.VisitPickup),
		ItemIDs: []string{small, large},
		Date:    visitDate,
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.Tier != domain.VehicleSmall {
		t.Fatalf("tier = %s, want small", quote.Tier)
	}

	visit := f.book(t, owner, domain.VisitPickup, domain.WindowMorning, small, large)
	if !visit.TriggersBilling || visit.ItemCount != 2 || visit.Address != "1 Main St" {
		t.Fatalf("unexpected visit: %+v", visit)
	}
	if math.Abs(visit.TotalCubicFeet-9000.0/1728) > 1e-9 {
		t.Fatalf("TotalCubicFeet = %v", visit.TotalCubicFeet)
	}

	f.move(t, visit.ID, domain.VisitInProgress)
	done := f.move(t, visit.ID, domain.VisitCompleted)
	if done.CompletedAt == nil {
		t.Fatal("completion time not recorded")
	}

	customer, err := f.customers.Find(ctx, owner.ID)
	if err != nil {
		t.Fatalf("Find customer: %v", err)
	}
	if customer.FirstPickupCompletedAt == nil || customer.SubscriptionID == "" {
		t.Fatalf("billing not activated: %+v", customer)
	}
	if customer.SubscriptionStatus != domain.SubscriptionActive || customer.PaymentCustomerID != "cus_"+owner.ID {
		t.Fatalf("unexpected billing state: %+v", customer)
	}
	if customer.ActiveItemCount != 2 {
		t.Fatalf("usage not refreshed: %+v", customer)
	}
	item, _ := f.items.Find(ctx, small)
	if item.Status != domain.ItemInStorage {
		t.Fatalf("item status = %s, want in_storage", item.Status)
	}

	// Repeating the completion is acknowledged without a second subscription.
	f.move(t, visit.ID, domain.VisitCompleted)
	if got := f.processor.callCount(); got != 1 {
		t.Fatalf("CreateSubscription called %d times, want 1", got)
	}
	if got := f.bus.count(events.BillingActivated{}.EventName()); got != 1 {
		t.Fatalf("BillingActivated published %d times, want 1", got)
	}
}

func TestConcurrentCompletionCreatesOneSubscription(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.processor.delay = 20 * time.Millisecond
	owner := f.customer(t, "bo@example.com")
	visit := f.book(t, owner, domain.VisitPickup, domain.WindowMidday, f.item(t, owner, 12, 12, 12, 10, domain.ItemAtHome))
	f.move(t, visit.ID, domain.VisitInProgress)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.Transition(ctx, staff, visit.ID, transport.TransitionRequest{Status: string(domain.VisitCompleted)})
		}()
	}
	wg.Wait()

	if got := f.processor.callCount(); got != 1 {
		t.Fatalf("CreateSubscription called %d times, want 1", got)
	}
	customer, _ := f.customers.Find(ctx, owner.ID)
	if customer.SubscriptionID != "sub_1" {
		t.Fatalf("SubscriptionID = %q", customer.SubscriptionID)
	}
}

func TestActivationFailureKeepsCompletionAndRetries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.processor.err = errors.New("card network down")
	owner := f.customer(t, "cy@example.com")
	visit := f.book(t, owner, domain.VisitPickup, domain.WindowAfternoon, f.item(t, owner, 12, 12, 12, 10, domain.ItemAtHome))
	f.move(t, visit.ID, domain.VisitInProgress)

	done := f.move(t, visit.ID, domain.VisitCompleted)
	if done.Status != domain.VisitCompleted {
		t.Fatalf("status = %s, want completed", done.Status)
	}
	customer, _ := f.customers.Find(ctx, owner.ID)
	if customer.FirstPickupCompletedAt == nil || customer.SubscriptionID != "" {
		t.Fatalf("unexpected customer after failed activation: %+v", customer)
	}
	if got := f.bus.count(events.BillingActivationFailed{}.EventName()); got != 1 {
		t.Fatalf("BillingActivationFailed published %d times, want 1", got)
	}
	urgent, err := f.tasks.Query(ctx, records.Eq(schema.FieldPriority, domain.PriorityUrgent))
	if err != nil {
		t.Fatalf("Query tasks: %v", err)
	}
	if len(urgent) != 1 || urgent[0].CustomerID != owner.ID {
		t.Fatalf("expected one urgent task, got %+v", urgent)
	}

	f.processor.mu.Lock()
	f.processor.err = nil
	f.processor.mu.Unlock()
	f.move(t, visit.ID, domain.VisitCompleted)

	customer, _ = f.customers.Find(ctx, owner.ID)
	if customer.SubscriptionID == "" {
		t.Fatal("retry did not activate billing")
	}
	if got := f.processor.callCount(); got != 2 {
		t.Fatalf("CreateSubscription called %d times, want 2", got)
	}
}

func TestSecondPickupDoesNotTriggerBilling(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.customer(t, "di@example.com")
	first := f.book(t, owner, domain.VisitPickup, domain.WindowMorning, f.item(t, owner, 12, 12, 12, 10, domain.ItemAtHome))
	f.move(t, first.ID, domain.VisitInProgress)
	f.move(t, first.ID, domain.VisitCompleted)

	second := f.book(t, owner, domain.VisitPickup, domain.WindowMidday, f.item(t, owner, 12, 12, 12, 10, domain.ItemAtHome))
	if second.TriggersBilling {
		t.Fatal("only the first pickup triggers billing")
	}
	f.move(t, second.ID, domain.VisitInProgress)
	f.move(t, second.ID, domain.VisitCompleted)

	if got := f.processor.callCount(); got != 1 {
		t.Fatalf("CreateSubscription called %d times, want 1", got)
	}
	customer, _ := f.customers.Find(ctx, owner.ID)
	if customer.ActiveItemCount != 2 {
		t.Fatalf("ActiveItemCount = %d, want 2", customer.ActiveItemCount)
	}
}

func TestOnlyFirstBookedPickupTriggersBilling(t *testing.T) {
	f := newFixture(t)
	owner := f.customer(t, "gil@example.com")

	first := f.book(t, owner, domain.VisitPickup, domain.WindowMorning, f.item(t, owner, 12, 12, 12, 10, domain.ItemAtHome))
	second := f.book(t, owner, domain.VisitPickup, domain.WindowMidday, f.item(t, owner, 12, 12, 12, 10, domain.ItemAtHome))
	if !first.TriggersBilling {
		t.Fatal("first pickup should trigger billing")
	}
	if second.TriggersBilling {
		t.Fatal("a pickup booked while another is pending must not trigger billing")
	}
}

func TestCancelledPickupDoesNotCountAsFirst(t *testing.T) {
	f := newFixture(t)
	owner := f.customer(t, "ivy@example.com")

	cancelled := f.book(t, owner, domain.VisitPickup, domain.WindowMorning, f.item(t, owner, 12, 12, 12, 10, domain.ItemAtHome))
	if _, err := f.svc.Transition(context.Background(), owner, cancelled.ID, transport.TransitionRequest{Status: string(domain.VisitCancelled)}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	rebooked := f.book(t, owner, domain.VisitPickup, domain.WindowAfternoon, f.item(t, owner, 12, 12, 12, 10, domain.ItemAtHome))
	if !rebooked.TriggersBilling {
		t.Fatal("a pickup rebooked after cancelling the only one should trigger billing")
	}
}

func TestTransitionRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.customer(t, "ed@example.com")
	other := f.customer(t, "fay@example.com")
	visit := f.book(t, owner, domain.VisitPickup, domain.WindowMorning, f.item(t, owner, 12, 12, 12, 10, domain.ItemAtHome))

	tests := []struct {
		name   string
		actor  domain.Actor
		status domain.VisitStatus
		kind   apperr.Kind
	}{
		{name: "customer cannot start", actor: owner, status: domain.VisitInProgress, kind: apperr.KindForbidden},
		{name: "other customer sees nothing", actor: other, status: domain.VisitCancelled, kind: apperr.KindNotFound},
		{name: "skip to completed", actor: staff, status: domain.VisitCompleted, kind: apperr.KindValidation},
		{name: "unknown status", actor: staff, status: "lost", kind: apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Transition(ctx, tt.actor, visit.ID, transport.TransitionRequest{Status: string(tt.status)})
			if !apperr.Is(err, tt.kind) {
				t.Fatalf("expected %s, got %v", tt.kind, err)
			}
		})
	}

	cancelled, err := f.svc.Transition(ctx, owner, visit.ID, transport.TransitionRequest{Status: string(domain.VisitCancelled)})
	if err != nil {
		t.Fatalf("customer cancel: %v", err)
	}
	if cancelled.CancelledAt == nil {
		t.Fatal("cancellation time not recorded")
	}
	if _, err := f.svc.Transition(ctx, staff, visit.ID, transport.TransitionRequest{Status: string(domain.VisitInProgress)}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("leaving a terminal state should fail, got %v", err)
	}
	if _, err := f.svc.Transition(ctx, owner, visit.ID, transport.TransitionRequest{Status: string(domain.VisitCancelled)}); err != nil {
		t.Fatalf("repeated cancel should be a no-op, got %v", err)
	}
}

func TestCancelledPickupReturnsItemsHome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.customer(t, "gus@example.com")
	itemID := f.item(t, owner, 12, 12, 12, 10, domain.ItemAtHome)
	visit := f.book(t, owner, domain.VisitPickup, domain.WindowMorning, itemID)

	f.move(t, visit.ID, domain.VisitInProgress)
	item, _ := f.items.Find(ctx, itemID)
	if item.Status != domain.ItemInTransit {
		t.Fatalf("status = %s, want in_transit", item.Status)
	}
	f.move(t, visit.ID, domain.VisitCancelled)
	item, _ = f.items.Find(ctx, itemID)
	if item.Status != domain.ItemAtHome {
		t.Fatalf("status = %s, want at_home", item.Status)
	}
	if f.processor.callCount() != 0 {
		t.Fatal("a cancelled pickup must not start billing")
	}
}

func TestDeliveryLinksAndReturnsItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.customer(t, "hal@example.com")
	itemID := f.item(t, owner, 12, 12, 12, 10, domain.ItemInStorage)

	visit := f.book(t, owner, domain.VisitDelivery, domain.WindowAfternoon, itemID)
	if visit.TriggersBilling {
		t.Fatal("deliveries never trigger billing")
	}
	item, _ := f.items.Find(ctx, itemID)
	if item.ReturnVisitID != visit.ID {
		t.Fatalf("ReturnVisitID = %q, want %q", item.ReturnVisitID, visit.ID)
	}

	_, err := f.svc.Create(ctx, owner, transport.CreateVisitRequest{
		Type: string(domain.VisitDelivery), ItemIDs: []string{itemID}, Date: "2026-03-05", Window: string(domain.WindowMorning),
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("second delivery for the same item should fail, got %v", err)
	}

	f.move(t, visit.ID, domain.VisitInProgress)
	f.move(t, visit.ID, domain.VisitCompleted)
	item, _ = f.items.Find(ctx, itemID)
	if item.Status != domain.ItemAtHome || item.ReturnVisitID != "" {
		t.Fatalf("unexpected item after delivery: %+v", item)
	}
	if f.processor.callCount() != 0 {
		t.Fatal("deliveries must not start billing")
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.customer(t, "ivy@example.com")
	other := f.customer(t, "jo@example.com")
	atHome := f.item(t, owner, 12, 12, 12, 10, domain.ItemAtHome)
	stored := f.item(t, owner, 12, 12, 12, 10, domain.ItemInStorage)
	huge := f.item(t, owner, 48, 48, 48, 100, domain.ItemAtHome)
	foreign := f.item(t, other, 12, 12, 12, 10, domain.ItemAtHome)

	tests := []struct {
		name string
		req  transport.CreateVisitRequest
		kind apperr.Kind
	}{
		{name: "past date", req: transport.CreateVisitRequest{Type: "pickup", ItemIDs: []string{atHome}, Date: "2026-03-01", Window: "morning"}, kind: apperr.KindValidation},
		{name: "no items", req: transport.CreateVisitRequest{Type: "pickup", Date: visitDate, Window: "morning"}, kind: apperr.KindValidation},
		{name: "stored item picked up", req: transport.CreateVisitRequest{Type: "pickup", ItemIDs: []string{stored}, Date: visitDate, Window: "morning"}, kind: apperr.KindValidation},
		{name: "home item delivered", req: transport.CreateVisitRequest{Type: "delivery", ItemIDs: []string{atHome}, Date: visitDate, Window: "morning"}, kind: apperr.KindValidation},
		{name: "over plan cap", req: transport.CreateVisitRequest{Type: "pickup", ItemIDs: []string{huge}, Date: visitDate, Window: "morning"}, kind: apperr.KindValidation},
		{name: "weekend window on weekday", req: transport.CreateVisitRequest{Type: "pickup", ItemIDs: []string{atHome}, Date: visitDate, Window: "weekend"}, kind: apperr.KindValidation},
		{name: "someone else's item", req: transport.CreateVisitRequest{Type: "pickup", ItemIDs: []string{foreign}, Date: visitDate, Window: "morning"}, kind: apperr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, owner, tt.req)
			if !apperr.Is(err, tt.kind) {
				t.Fatalf("expected %s, got %v", tt.kind, err)
			}
		})
	}

	container, err := f.svc.Create(ctx, owner, transport.CreateVisitRequest{Type: "container_delivery", Date: visitDate, Window: "midday"})
	if err != nil {
		t.Fatalf("container delivery without items: %v", err)
	}
	if container.Visit.ItemCount != 0 || container.Visit.TriggersBilling {
		t.Fatalf("unexpected container delivery: %+v", container.Visit)
	}
}

func TestBookedWindowIsClosedToOtherCustomers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.customer(t, "kim@example.com")
	second := f.customer(t, "lou@example.com")
	f.book(t, first, domain.VisitPickup, domain.WindowMorning, f.item(t, first, 12, 12, 12, 10, domain.ItemAtHome))

	_, err := f.svc.Create(ctx, second, transport.CreateVisitRequest{
		Type: "pickup", ItemIDs: []string{f.item(t, second, 12, 12, 12, 10, domain.ItemAtHome)}, Date: visitDate, Window: "morning",
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDoubleBookingIsFlagged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.customer(t, "max@example.com")
	date, _ := time.Parse(transport.DateLayout, visitDate)
	// A visit that slipped in without the availability check.
	if _, err := f.visits.Create(ctx, &domain.Visit{
		CustomerID: "recElsewhere", Type: domain.VisitPickup, Date: date, Window: domain.WindowAfternoon,
		Status: domain.VisitScheduled, Address: "2 Side St",
	}); err != nil {
		t.Fatalf("seed visit: %v", err)
	}

	f.svc.availability = openAvailability{f.svc.availability}
	f.book(t, owner, domain.VisitPickup, domain.WindowAfternoon, f.item(t, owner, 12, 12, 12, 10, domain.ItemAtHome))

	if got := f.bus.count(events.DoubleBookingDetected{}.EventName()); got != 1 {
		t.Fatalf("DoubleBookingDetected published %d times, want 1", got)
	}
	urgent, _ := f.tasks.Query(ctx, records.Eq(schema.FieldPriority, domain.PriorityUrgent))
	if len(urgent) != 1 {
		t.Fatalf("expected one urgent reschedule task, got %d", len(urgent))
	}
}

// openAvailability simulates a lost race: the pre-write check passes.
type openAvailability struct {
	Availability
}

func (openAvailability) EnsureOpen(context.Context, time.Time, domain.TimeWindow) error {
	return nil
}

func TestListOrdersByDateAndWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.customer(t, "ned@example.com")
	f.book(t, owner, domain.VisitPickup, domain.WindowAfternoon, f.item(t, owner, 12, 12, 12, 10, domain.ItemAtHome))
	f.book(t, owner, domain.VisitPickup, domain.WindowMorning, f.item(t, owner, 12, 12, 12, 10, domain.ItemAtHome))

	list, err := f.svc.List(ctx, owner, transport.ListVisitsRequest{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list.Total != 2 || list.Items[0].Window != domain.WindowMorning {
		t.Fatalf("unexpected order: %+v", list.Items)
	}

	other := f.customer(t, "oz@example.com")
	list, _ = f.svc.List(ctx, other, transport.ListVisitsRequest{})
	if list.Total != 0 {
		t.Fatalf("customers must only see their own visits, got %d", list.Total)
	}
	list, _ = f.svc.List(ctx, staff, transport.ListVisitsRequest{Date: visitDate})
	if list.Total != 2 {
		t.Fatalf("staff date filter returned %d", list.Total)
	}
}
