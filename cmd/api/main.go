package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"storeroom_backend/internal/adapters/storage"
	"storeroom_backend/internal/availability"
	"storeroom_backend/internal/billing"
	"storeroom_backend/internal/customers"
	customersvc "storeroom_backend/internal/customers/service"
	"storeroom_backend/internal/email"
	"storeroom_backend/internal/estimation"
	"storeroom_backend/internal/events"
	apphttp "storeroom_backend/internal/http"
	"storeroom_backend/internal/http/router"
	"storeroom_backend/internal/items"
	itemsvc "storeroom_backend/internal/items/service"
	"storeroom_backend/internal/notification"
	"storeroom_backend/internal/records"
	"storeroom_backend/internal/scheduler"
	sharedvalidator "storeroom_backend/internal/shared/validator"
	"storeroom_backend/internal/tasks"
	"storeroom_backend/internal/visits"
	visitsvc "storeroom_backend/internal/visits/service"
	"storeroom_backend/platform/config"
	"storeroom_backend/platform/idempotency"
	"storeroom_backend/platform/logger"
	"storeroom_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.GetHTTPAddr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	tables, err := records.Open(cfg, log)
	if err != nil {
		log.Error("failed to open record store", "error", err)
		panic("failed to open record store: " + err.Error())
	}
	log.Info("record store ready", "driver", cfg.GetRecordStoreDriver())

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	val := validator.New()
	if err := sharedvalidator.Register(val); err != nil {
		panic("failed to register validation tags: " + err.Error())
	}

	pricing, err := loadPricing(cfg)
	if err != nil {
		log.Error("failed to load pricing", "error", err, "file", cfg.GetPricingFile())
		panic("failed to load pricing: " + err.Error())
	}

	files := initFileHost(ctx, cfg, log)
	gateway := billing.NewGateway(initProcessor(cfg, log), log)

	var (
		recorder    tasks.Recorder = tasks.NewDirect(tables.Tasks, log)
		reminders   scheduler.ReminderScheduler
		idempotent  gin.HandlerFunc
		healthCheck apphttp.HealthChecker
	)
	if cfg.GetRedisURL() != "" {
		queue, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize scheduler client", "error", err)
		} else {
			defer func() { _ = queue.Close() }()
			reminders = queue
			recorder = tasks.NewQueued(queue, recorder, log)
		}

		redisClient, err := idempotency.NewRedisClient(cfg.GetRedisURL())
		if err != nil {
			log.Error("failed to initialize idempotency store", "error", err)
		} else {
			defer func() { _ = redisClient.Close() }()
			idempotent = idempotency.Middleware(idempotency.NewRedisStore(redisClient), cfg.GetIdempotencyTTL(), log)
			healthCheck = redisHealth{client: redisClient}
		}
	} else {
		log.Warn("REDIS_URL not configured; reminders, queued ops tasks and idempotency keys disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notification.New(email.NewSender(cfg), cfg, log).RegisterHandlers(eventBus)

	customersService := customersvc.New(tables.Customers, tables.Items, gateway, eventBus, cfg.GetDefaultSetupFeeCents(), log)
	itemsService := itemsvc.New(tables.Items, customersService, files, recorder, cfg.GetMinIOMaxFileSize(), log)
	availabilityService := availability.NewService(tables.Visits)
	visitsService := visitsvc.New(visitsvc.Deps{
		Visits:       tables.Visits,
		Customers:    tables.Customers,
		Items:        tables.Items,
		Availability: availabilityService,
		Billing:      gateway,
		Usage:        customersService,
		Tasks:        recorder,
		Reminders:    reminders,
		EventBus:     eventBus,
		Pricing:      pricing,
		Log:          log,
	})

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:      cfg,
		Logger:      log,
		Health:      healthCheck,
		EventBus:    eventBus,
		Idempotency: idempotent,
		Modules: []apphttp.Module{
			customers.NewModule(customersService, val),
			items.NewModule(itemsService, val, cfg.GetMinIOMaxFileSize()),
			visits.NewModule(visitsService, availabilityService, val),
			tasks.NewModule(tasks.NewService(tables.Tasks)),
		},
	}

	srv := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.GetHTTPAddr())
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

type redisHealth struct {
	client *redis.Client
}

func (h redisHealth) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}

func loadPricing(cfg config.EstimationConfig) (estimation.Pricing, error) {
	if cfg.GetPricingFile() == "" {
		return estimation.DefaultPricing(), nil
	}
	return estimation.LoadPricing(cfg.GetPricingFile())
}

func initProcessor(cfg *config.Config, log *logger.Logger) billing.Processor {
	if !cfg.IsBillingEnabled() {
		log.Warn("BILLING_API_KEY not configured; billing calls will fail and raise ops alerts")
		return billing.Disabled{}
	}
	return billing.NewClient(cfg, log)
}

// initFileHost prefers MinIO. Without it photos are kept in memory, which
// only suits local development.
func initFileHost(ctx context.Context, cfg *config.Config, log *logger.Logger) storage.FileHost {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; item photos are kept in memory")
		return storage.NewMemoryHost(cfg.GetAppBaseURL() + "/files")
	}

	host, err := storage.NewMinIOHost(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	if err := withRetry(ctx, log, "ensure item photo bucket", 5, 2*time.Second, func() error {
		return host.EnsureBucketExists(ctx)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketItemPhotos())
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "bucket", cfg.GetMinioBucketItemPhotos())
	return host
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
