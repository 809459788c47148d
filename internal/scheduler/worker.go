package scheduler

import (
	"context"
	"fmt"

	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/events"
	"storeroom_backend/platform/config"
	"storeroom_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// TaskSaver persists ops tasks taken off the queue.
type TaskSaver interface {
	Save(ctx context.Context, task domain.OperationalTask) (*domain.OperationalTask, error)
}

// VisitLoader reads the visit and customer a reminder is about.
type VisitLoader interface {
	FindVisit(ctx context.Context, id string) (*domain.Visit, error)
	FindCustomer(ctx context.Context, id string) (*domain.Customer, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	tasks  TaskSaver
	visits VisitLoader
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, tasks TaskSaver, visits VisitLoader, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(tasks, visits, bus, log)
	w.server = server
	return w, nil
}

func newWorker(tasks TaskSaver, visits VisitLoader, bus events.Bus, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:    mux,
		tasks:  tasks,
		visits: visits,
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskRecordOpsTask, w.handleOpsTask)
	mux.HandleFunc(TaskVisitReminder, w.handleVisitReminder)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleOpsTask(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseOpsTaskPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.Action == "" {
		return fmt.Errorf("%w: ops task without action", asynq.SkipRetry)
	}

	_, err = w.tasks.Save(ctx, payload)
	return err
}

func (w *Worker) handleVisitReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseVisitReminderPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	visit, err := w.visits.FindVisit(ctx, payload.VisitID)
	if err != nil {
		return err
	}
	// Cancelled or already running visits need no reminder.
	if visit.Status != domain.VisitScheduled {
		return nil
	}

	customer, err := w.visits.FindCustomer(ctx, visit.CustomerID)
	if err != nil {
		return err
	}

	if w.bus == nil {
		return nil
	}

	w.bus.Publish(ctx, events.VisitReminderDue{
		BaseEvent:     events.NewBaseEvent(),
		VisitID:       visit.ID,
		CustomerID:    customer.ID,
		CustomerEmail: customer.Email,
		CustomerName:  customer.Name,
		Type:          visit.Type,
		Date:          visit.Date,
		Window:        visit.Window,
		Address:       visit.Address,
	})

	return nil
}
