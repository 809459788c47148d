package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"storeroom_backend/internal/email"
	"storeroom_backend/internal/events"
	"storeroom_backend/internal/notification"
	"storeroom_backend/internal/records"
	"storeroom_backend/internal/scheduler"
	"storeroom_backend/internal/tasks"
	"storeroom_backend/internal/visits"
	"storeroom_backend/platform/config"
	"storeroom_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tables, err := records.Open(cfg, log)
	if err != nil {
		log.Error("failed to open record store", "error", err)
		panic("failed to open record store: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)

	// Reminder emails and ops alerts are sent from the worker process.
	notification.New(email.NewSender(cfg), cfg, log).RegisterHandlers(eventBus)

	worker, err := scheduler.NewWorker(
		cfg,
		tasks.NewDirect(tables.Tasks, log),
		visits.ReminderLoader{Visits: tables.Visits, Customers: tables.Customers},
		eventBus,
		log,
	)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("scheduler stopped")
}
