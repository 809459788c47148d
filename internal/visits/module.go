// Package visits provides the visits bounded context module: booking,
// quoting, availability and the visit lifecycle.
package visits

import (
	"storeroom_backend/internal/availability"
	apphttp "storeroom_backend/internal/http"
	"storeroom_backend/internal/visits/handler"
	"storeroom_backend/internal/visits/service"
	"storeroom_backend/platform/validator"
)

// Module is the visits bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the visits module.
func NewModule(svc *service.Service, avail *availability.Service, val *validator.Validator) *Module {
	return &Module{
		handler: handler.New(svc, avail, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "visits"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts visit routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/availability", m.handler.GetAvailability)
	ctx.V1.GET("/availability/suggestions", m.handler.Suggestions)

	ctx.Protected.POST("/quotes", m.handler.Quote)

	visits := ctx.Protected.Group("/visits")
	visits.GET("", m.handler.List)
	visits.POST("", ctx.WithIdempotency(m.handler.Create)...)
	visits.GET("/:id", m.handler.Get)
	visits.PATCH("/:id/status", ctx.WithIdempotency(m.handler.Transition)...)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
