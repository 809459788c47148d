package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storeroom_backend/internal/billing"
	"storeroom_backend/internal/customers/transport"
	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/events"
	"storeroom_backend/internal/records"
	"storeroom_backend/internal/schema"
	"storeroom_backend/platform/apperr"
	"storeroom_backend/platform/recordstore/memstore"
)

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

type fakeBilling struct {
	cancelled []bool
	intent    *billing.PaymentIntent
	err       error
}

func (f *fakeBilling) CancelSubscription(_ context.Context, _ *domain.Customer, immediate bool) error {
	f.cancelled = append(f.cancelled, immediate)
	return f.err
}

func (f *fakeBilling) SetupFeeIntent(_ context.Context, c *domain.Customer, coupon string) (*billing.PaymentIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.intent != nil {
		return f.intent, nil
	}
	return &billing.PaymentIntent{ID: "pi_1", ClientSecret: "secret", AmountCents: c.SetupFeeCents, FinalAmountCents: c.SetupFeeCents, Coupon: coupon}, nil
}

type fixture struct {
	svc       *Service
	customers *records.Repository[domain.Customer]
	items     *records.Repository[domain.Item]
	billing   *fakeBilling
	bus       *recordingBus
}

func newFixture() fixture {
	store := memstore.New()
	f := fixture{
		customers: records.New(store, schema.Customers, "customer", nil),
		items:     records.New(store, schema.Items, "item", nil),
		billing:   &fakeBilling{},
		bus:       &recordingBus{},
	}
	f.svc = New(f.customers, f.items, f.billing, f.bus, 9900, nil)
	return f
}

func TestSignupNormalizesAndDefaults(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Signup(context.Background(), transport.SignupRequest{
		Email:   "  Ann@Example.COM ",
		Name:    "<b>Ann</b>   Lee",
		Phone:   "(650) 253-0000",
		Address: "1 Main St",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if !res.Created {
		t.Fatal("expected a new customer")
	}
	c := res.Customer
	if c.Email != "ann@example.com" || c.Name != "Ann Lee" || c.Phone != "+16502530000" {
		t.Fatalf("unexpected normalization: %+v", c)
	}
	if c.Plan != domain.PlanStarter || c.SetupFeeCents != 9900 || c.SubscriptionStatus != domain.SubscriptionNone {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.Limits.VolumeCapCubicFeet != 50 {
		t.Fatalf("expected starter limits, got %+v", c.Limits)
	}
	if len(f.bus.events) != 1 {
		t.Fatalf("expected one event, got %d", len(f.bus.events))
	}
}

func TestSignupReplayKeepsBillingState(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	first, err := f.svc.Signup(ctx, transport.SignupRequest{Email: "o'brien@x.com", Name: "Pat", Address: "1 Main St"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	stored, _ := f.customers.Find(ctx, first.Customer.ID)
	stored.SubscriptionID = "sub_1"
	stored.SubscriptionStatus = domain.SubscriptionActive
	if _, err := f.customers.Update(ctx, stored.ID, stored, schema.FieldSubscriptionID, schema.FieldSubscriptionStatus); err != nil {
		t.Fatalf("Update: %v", err)
	}

	again, err := f.svc.Signup(ctx, transport.SignupRequest{Email: "O'Brien@x.com", Name: "Pat O'Brien", Address: "2 Side St", Plan: "family"})
	if err != nil {
		t.Fatalf("Signup replay: %v", err)
	}
	if again.Created || again.Customer.ID != first.Customer.ID {
		t.Fatalf("expected the same record, got %+v", again)
	}
	if again.Customer.Name != "Pat O'Brien" || again.Customer.Address != "2 Side St" {
		t.Fatalf("profile not refreshed: %+v", again.Customer)
	}
	if !again.Customer.BillingActive || again.Customer.Plan != domain.PlanStarter {
		t.Fatalf("replay must not touch billing or plan: %+v", again.Customer)
	}
}

func TestSignupRejectsBadPhone(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Signup(context.Background(), transport.SignupRequest{Email: "a@x.com", Name: "A", Phone: "12", Address: "x"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateProfilePlanRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	created, err := f.customers.Create(ctx, &domain.Customer{Email: "a@x.com", Name: "A", Plan: domain.PlanFamily, UsedCubicFeet: 80})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	starter := "starter"
	_, err = f.svc.UpdateProfile(ctx, created.ID, transport.UpdateProfileRequest{Plan: &starter})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for plan below usage, got %v", err)
	}

	medium := "medium"
	res, err := f.svc.UpdateProfile(ctx, created.ID, transport.UpdateProfileRequest{Plan: &medium})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if res.Plan != domain.PlanMedium || res.Limits.VolumeCapCubicFeet != 100 {
		t.Fatalf("unexpected plan: %+v", res)
	}

	created.SubscriptionID = "sub_1"
	if _, err := f.customers.Update(ctx, created.ID, created, schema.FieldSubscriptionID); err != nil {
		t.Fatalf("Update: %v", err)
	}
	family := "family"
	_, err = f.svc.UpdateProfile(ctx, created.ID, transport.UpdateProfileRequest{Plan: &family})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict once billing started, got %v", err)
	}
}

func TestSetupFeeWaiveAndIntent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	created, _ := f.customers.Create(ctx, &domain.Customer{Email: "a@x.com", Name: "A", Plan: domain.PlanStarter, SetupFeeCents: 9900})

	intent, err := f.svc.SetupFeeIntent(ctx, created.ID, transport.PaymentIntentRequest{Coupon: " WELCOME "})
	if err != nil {
		t.Fatalf("SetupFeeIntent: %v", err)
	}
	if intent.Coupon != "WELCOME" || intent.FinalAmountCents != 9900 {
		t.Fatalf("unexpected intent: %+v", intent)
	}

	waived, err := f.svc.WaiveSetupFee(ctx, created.ID, transport.WaiveSetupFeeRequest{Reason: "referral"})
	if err != nil {
		t.Fatalf("WaiveSetupFee: %v", err)
	}
	if !waived.SetupFeePaid || waived.SetupFeeCents != 0 || waived.SetupFeeWaiverReason != "referral" {
		t.Fatalf("unexpected waiver: %+v", waived)
	}

	if _, err := f.svc.SetupFeeIntent(ctx, created.ID, transport.PaymentIntentRequest{}); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict after waiver, got %v", err)
	}
}

func TestFullyDiscountedSetupFeeIsSettled(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.billing.intent = &billing.PaymentIntent{ID: "pi_free", AmountCents: 9900, FinalAmountCents: 0, Coupon: "FREE"}
	created, _ := f.customers.Create(ctx, &domain.Customer{Email: "a@x.com", Name: "A", Plan: domain.PlanStarter, SetupFeeCents: 9900})

	if _, err := f.svc.SetupFeeIntent(ctx, created.ID, transport.PaymentIntentRequest{Coupon: "FREE"}); err != nil {
		t.Fatalf("SetupFeeIntent: %v", err)
	}
	stored, _ := f.customers.Find(ctx, created.ID)
	if !stored.SetupFeePaid {
		t.Fatal("expected fee settled")
	}
}

func TestCancelSubscriptionKeepsID(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	created, _ := f.customers.Create(ctx, &domain.Customer{
		Email: "a@x.com", Name: "A", Plan: domain.PlanStarter,
		SubscriptionID: "sub_1", SubscriptionStatus: domain.SubscriptionActive,
	})

	res, err := f.svc.CancelSubscription(ctx, created.ID, transport.CancelSubscriptionRequest{Immediate: true})
	if err != nil {
		t.Fatalf("CancelSubscription: %v", err)
	}
	if res.SubscriptionStatus != domain.SubscriptionCancelled || !res.BillingActive {
		t.Fatalf("unexpected state: %+v", res)
	}
	if len(f.billing.cancelled) != 1 || !f.billing.cancelled[0] {
		t.Fatalf("expected one immediate cancel, got %v", f.billing.cancelled)
	}

	if _, err := f.svc.CancelSubscription(ctx, created.ID, transport.CancelSubscriptionRequest{}); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on second cancel, got %v", err)
	}
}

func TestCancelSubscriptionBillingFailureLeavesStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.billing.err = apperr.Billing("payment processor failed", errors.New("boom"))
	created, _ := f.customers.Create(ctx, &domain.Customer{
		Email: "a@x.com", Name: "A", Plan: domain.PlanStarter,
		SubscriptionID: "sub_1", SubscriptionStatus: domain.SubscriptionActive,
	})

	if _, err := f.svc.CancelSubscription(ctx, created.ID, transport.CancelSubscriptionRequest{}); !apperr.Is(err, apperr.KindBilling) {
		t.Fatalf("expected billing error, got %v", err)
	}
	stored, _ := f.customers.Find(ctx, created.ID)
	if stored.SubscriptionStatus != domain.SubscriptionActive {
		t.Fatalf("status changed on failure: %s", stored.SubscriptionStatus)
	}
}

func TestRecomputeUsageSkipsItemsAtHome(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	created, _ := f.customers.Create(ctx, &domain.Customer{Email: "a@x.com", Name: "A", Plan: domain.PlanStarter, UsedCubicFeet: 99})

	for _, item := range []domain.Item{
		{CustomerID: created.ID, Name: "box", LengthIn: 12, WidthIn: 12, HeightIn: 12, EstimatedValueCents: 1000, Status: domain.ItemInStorage},
		{CustomerID: created.ID, Name: "lamp", LengthIn: 24, WidthIn: 12, HeightIn: 12, EstimatedValueCents: 500, Status: domain.ItemInTransit},
		{CustomerID: created.ID, Name: "rug", LengthIn: 24, WidthIn: 24, HeightIn: 24, EstimatedValueCents: 7000, Status: domain.ItemAtHome},
		{CustomerID: "someone-else", Name: "other", LengthIn: 12, WidthIn: 12, HeightIn: 12, Status: domain.ItemInStorage},
	} {
		item := item
		if _, err := f.items.Create(ctx, &item); err != nil {
			t.Fatalf("Create item: %v", err)
		}
	}

	if err := f.svc.RecomputeUsage(ctx, created.ID); err != nil {
		t.Fatalf("RecomputeUsage: %v", err)
	}
	stored, _ := f.customers.Find(ctx, created.ID)
	if stored.UsedCubicFeet != 3 || stored.UsedInsuredCents != 1500 || stored.ActiveItemCount != 2 {
		t.Fatalf("unexpected usage: %.2f cu ft, %d cents, %d items", stored.UsedCubicFeet, stored.UsedInsuredCents, stored.ActiveItemCount)
	}
}
