package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/records"
	"storeroom_backend/internal/schema"
	"storeroom_backend/platform/recordstore"
	"storeroom_backend/platform/recordstore/memstore"
)

func newRepo() (*memstore.Store, *records.Repository[domain.OperationalTask]) {
	store := memstore.New()
	return store, records.New(store, schema.Tasks, "task", nil)
}

func TestDirectRecordFillsDefaults(t *testing.T) {
	_, repo := newRepo()
	d := NewDirect(repo, nil)
	now := time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	d.Record(context.Background(), domain.OperationalTask{CustomerID: "recC1", Action: "  Call about access code "})

	list, err := repo.Query(context.Background(), records.All())
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 task, got %d", len(list))
	}
	got := list[0]
	if got.Action != "Call about access code" || got.Priority != domain.PriorityNormal || got.Status != domain.TaskPending {
		t.Fatalf("unexpected task %+v", got)
	}
	if got.DueDate.Format("2006-01-02") != "2025-06-07" {
		t.Fatalf("due = %v", got.DueDate)
	}
}

func TestDirectRecordSwallowsStoreFailure(t *testing.T) {
	store, repo := newRepo()
	store.FailNext("create", recordstore.ErrUnavailable)
	d := NewDirect(repo, nil)

	// Must not panic or surface anything.
	d.Record(context.Background(), domain.OperationalTask{Action: "x"})

	if store.Calls("create") != 1 {
		t.Fatalf("create calls = %d", store.Calls("create"))
	}
}

type failingQueue struct{ calls int }

func (q *failingQueue) EnqueueOpsTask(context.Context, domain.OperationalTask) error {
	q.calls++
	return errors.New("redis down")
}

type captureRecorder struct{ got []domain.OperationalTask }

func (c *captureRecorder) Record(_ context.Context, task domain.OperationalTask) {
	c.got = append(c.got, task)
}

func TestQueuedFallsBackToDirect(t *testing.T) {
	queue := &failingQueue{}
	fallback := &captureRecorder{}
	q := NewQueued(queue, fallback, nil)

	q.Record(context.Background(), domain.OperationalTask{Action: "Manual reschedule", Priority: domain.PriorityUrgent})

	if queue.calls != 1 || len(fallback.got) != 1 {
		t.Fatalf("queue calls = %d, fallback = %d", queue.calls, len(fallback.got))
	}
}

func TestServiceListAndMarkDone(t *testing.T) {
	_, repo := newRepo()
	d := NewDirect(repo, nil)
	ctx := context.Background()
	d.Record(ctx, domain.OperationalTask{Action: "low", Priority: domain.PriorityLow})
	d.Record(ctx, domain.OperationalTask{Action: "urgent", Priority: domain.PriorityUrgent})
	d.Record(ctx, domain.OperationalTask{Action: "normal"})

	svc := NewService(repo)
	list, err := svc.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(list) != 3 || list[0].Action != "urgent" || list[2].Action != "low" {
		t.Fatalf("unexpected order %+v", list)
	}

	done, err := svc.MarkDone(ctx, list[0].ID)
	if err != nil {
		t.Fatalf("MarkDone: %v", err)
	}
	if done.Status != domain.TaskDone {
		t.Fatalf("status = %s", done.Status)
	}
	list, _ = svc.ListPending(ctx)
	if len(list) != 2 {
		t.Fatalf("pending after done = %d", len(list))
	}
}
