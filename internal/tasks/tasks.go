// Package tasks records follow-up work for staff. Recording is best effort:
// a failure is logged and never reaches the operation that asked for it.
package tasks

import (
	"context"
	"slices"
	"strings"
	"time"

	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/records"
	"storeroom_backend/internal/schema"
	"storeroom_backend/platform/logger"
)

// Recorder records an operational task. Callers never see a failure.
type Recorder interface {
	Record(ctx context.Context, task domain.OperationalTask)
}

// Store is the persistence the task queue needs.
type Store interface {
	Create(ctx context.Context, t *domain.OperationalTask) (*domain.OperationalTask, error)
	Find(ctx context.Context, id string) (*domain.OperationalTask, error)
	Query(ctx context.Context, cond records.Cond) ([]domain.OperationalTask, error)
	Update(ctx context.Context, id string, t *domain.OperationalTask, fields ...string) (*domain.OperationalTask, error)
}

// Direct writes tasks straight to the record store.
type Direct struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

// NewDirect creates a recorder over store.
func NewDirect(store Store, log *logger.Logger) *Direct {
	return &Direct{store: store, log: log, now: time.Now}
}

// Record stores task, filling defaults. Errors are logged and dropped.
func (d *Direct) Record(ctx context.Context, task domain.OperationalTask) {
	if _, err := d.Save(ctx, task); err != nil && d.log != nil {
		d.log.WithContext(ctx).Warn("failed to record ops task",
			"action", task.Action,
			"customer_id", task.CustomerID,
			"visit_id", task.VisitID,
			"error", err)
	}
}

// Save stores task and returns the error. The scheduler worker uses it so
// asynq can retry.
func (d *Direct) Save(ctx context.Context, task domain.OperationalTask) (*domain.OperationalTask, error) {
	task = normalize(task, d.now())
	return d.store.Create(ctx, &task)
}

func normalize(task domain.OperationalTask, now time.Time) domain.OperationalTask {
	task.ID = ""
	task.Action = strings.TrimSpace(task.Action)
	if task.Priority == "" {
		task.Priority = domain.PriorityNormal
	}
	if task.Status == "" {
		task.Status = domain.TaskPending
	}
	if task.DueDate.IsZero() {
		task.DueDate = DueFor(task.Priority, now)
	}
	return task
}

// DueFor returns the default due date for a priority.
func DueFor(p domain.TaskPriority, now time.Time) time.Time {
	switch p {
	case domain.PriorityUrgent:
		return now
	case domain.PriorityHigh:
		return now.AddDate(0, 0, 1)
	case domain.PriorityLow:
		return now.AddDate(0, 0, 7)
	default:
		return now.AddDate(0, 0, 3)
	}
}

// Enqueuer hands a task to the background queue.
type Enqueuer interface {
	EnqueueOpsTask(ctx context.Context, task domain.OperationalTask) error
}

// Queued records through the background queue, falling back to a direct
// write when enqueueing fails.
type Queued struct {
	queue    Enqueuer
	fallback Recorder
	log      *logger.Logger
}

// NewQueued creates a queue-backed recorder.
func NewQueued(queue Enqueuer, fallback Recorder, log *logger.Logger) *Queued {
	return &Queued{queue: queue, fallback: fallback, log: log}
}

// Record enqueues task or writes it directly.
func (q *Queued) Record(ctx context.Context, task domain.OperationalTask) {
	err := q.queue.EnqueueOpsTask(ctx, task)
	if err == nil {
		return
	}
	if q.log != nil {
		q.log.WithContext(ctx).Warn("ops task enqueue failed, writing directly", "action", task.Action, "error", err)
	}
	q.fallback.Record(ctx, task)
}

// Service serves the staff task list.
type Service struct {
	store Store
}

// NewService creates the staff task service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListPending returns open tasks, most urgent first.
func (s *Service) ListPending(ctx context.Context) ([]domain.OperationalTask, error) {
	list, err := s.store.Query(ctx, records.Eq(schema.FieldStatus, domain.TaskPending))
	if err != nil {
		return nil, err
	}
	SortByUrgency(list)
	return list, nil
}

// MarkDone closes a task. Closing a closed task is a no-op.
func (s *Service) MarkDone(ctx context.Context, id string) (*domain.OperationalTask, error) {
	task, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Status == domain.TaskDone {
		return task, nil
	}
	task.Status = domain.TaskDone
	return s.store.Update(ctx, id, task, schema.FieldStatus)
}

var rank = map[domain.TaskPriority]int{
	domain.PriorityUrgent: 0,
	domain.PriorityHigh:   1,
	domain.PriorityNormal: 2,
	domain.PriorityLow:    3,
}

// SortByUrgency orders tasks by priority, then due date.
func SortByUrgency(list []domain.OperationalTask) {
	slices.SortStableFunc(list, func(a, b domain.OperationalTask) int {
		if d := rank[a.Priority] - rank[b.Priority]; d != 0 {
			return d
		}
		return a.DueDate.Compare(b.DueDate)
	})
}
