package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"storeroom_backend/internal/events"
	"storeroom_backend/platform/config"
	"storeroom_backend/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP and JWT settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is pinged by /api/health. Nil means always healthy.
	Health HealthChecker
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Idempotency guards booking writes. Nil disables it.
	Idempotency gin.HandlerFunc
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
