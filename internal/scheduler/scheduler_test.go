package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/events"

	"github.com/hibiken/asynq"
)

func TestOpsTaskPayloadRoundTrip(t *testing.T) {
	due := time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC)
	task, err := NewOpsTaskTask(domain.OperationalTask{
		CustomerID: "recC1",
		VisitID:    "recV1",
		Priority:   domain.PriorityUrgent,
		Action:     "Retry billing activation",
		DueDate:    due,
	})
	if err != nil {
		t.Fatalf("NewOpsTaskTask: %v", err)
	}
	if task.Type() != TaskRecordOpsTask {
		t.Fatalf("type = %s", task.Type())
	}

	got, err := ParseOpsTaskPayload(task)
	if err != nil {
		t.Fatalf("ParseOpsTaskPayload: %v", err)
	}
	if got.CustomerID != "recC1" || got.Priority != domain.PriorityUrgent || !got.DueDate.Equal(due) {
		t.Fatalf("unexpected task %+v", got)
	}
}

func TestReminderTime(t *testing.T) {
	date := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	got := ReminderTime(date, 11)
	want := time.Date(2025, 6, 3, 11, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("ReminderTime = %v, want %v", got, want)
	}
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("rediss://:secret@cache.internal:6380/2", true)
	if err != nil {
		t.Fatalf("redisClientOpt: %v", err)
	}
	if opt.Addr != "cache.internal:6380" || opt.Password != "secret" || opt.DB != 2 {
		t.Fatalf("unexpected opt %+v", opt)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatal("expected insecure TLS config")
	}
}

type fakeSaver struct {
	saved []domain.OperationalTask
	err   error
}

func (f *fakeSaver) Save(_ context.Context, task domain.OperationalTask) (*domain.OperationalTask, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.saved = append(f.saved, task)
	return &task, nil
}

type fakeVisits struct {
	visit    domain.Visit
	customer domain.Customer
}

func (f fakeVisits) FindVisit(context.Context, string) (*domain.Visit, error) {
	v := f.visit
	return &v, nil
}

func (f fakeVisits) FindCustomer(context.Context, string) (*domain.Customer, error) {
	c := f.customer
	return &c, nil
}

type recordingBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func TestHandleOpsTask(t *testing.T) {
	saver := &fakeSaver{}
	w := newWorker(saver, fakeVisits{}, nil, nil)

	task, _ := NewOpsTaskTask(domain.OperationalTask{Action: "Call customer", Priority: domain.PriorityHigh})
	if err := w.handleOpsTask(context.Background(), task); err != nil {
		t.Fatalf("handleOpsTask: %v", err)
	}
	if len(saver.saved) != 1 || saver.saved[0].Action != "Call customer" {
		t.Fatalf("saved = %+v", saver.saved)
	}

	empty, _ := NewOpsTaskTask(domain.OperationalTask{})
	if err := w.handleOpsTask(context.Background(), empty); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestHandleVisitReminderSkipsNonScheduled(t *testing.T) {
	bus := &recordingBus{}
	visits := fakeVisits{
		visit:    domain.Visit{ID: "recV1", CustomerID: "recC1", Status: domain.VisitCancelled},
		customer: domain.Customer{ID: "recC1", Email: "a@b.com"},
	}
	w := newWorker(&fakeSaver{}, visits, bus, nil)
	task, _ := NewVisitReminderTask(VisitReminderPayload{VisitID: "recV1", CustomerID: "recC1"})

	if err := w.handleVisitReminder(context.Background(), task); err != nil {
		t.Fatalf("handleVisitReminder: %v", err)
	}
	if len(bus.published) != 0 {
		t.Fatalf("cancelled visit produced %d events", len(bus.published))
	}

	visits.visit.Status = domain.VisitScheduled
	w = newWorker(&fakeSaver{}, visits, bus, nil)
	if err := w.handleVisitReminder(context.Background(), task); err != nil {
		t.Fatalf("handleVisitReminder: %v", err)
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected one reminder event, got %d", len(bus.published))
	}
	if e, ok := bus.published[0].(events.VisitReminderDue); !ok || e.CustomerEmail != "a@b.com" {
		t.Fatalf("unexpected event %#v", bus.published[0])
	}
}
