// Package customers provides the customers bounded context module.
package customers

import (
	"storeroom_backend/internal/customers/handler"
	"storeroom_backend/internal/customers/service"
	apphttp "storeroom_backend/internal/http"
	"storeroom_backend/platform/validator"
)

// Module is the customers bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the customers module.
func NewModule(svc *service.Service, val *validator.Validator) *Module {
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "customers"
}

// Service returns the service layer for usage recomputation by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts customer routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	if ctx.PublicRateLimiter != nil {
		ctx.V1.POST("/customers", ctx.PublicRateLimiter.RateLimit(), m.handler.Signup)
	} else {
		ctx.V1.POST("/customers", m.handler.Signup)
	}

	me := ctx.Protected.Group("/customers/me")
	me.GET("", m.handler.GetMe)
	me.PATCH("", m.handler.UpdateMe)
	me.POST("/setup-fee/payment-intent", m.handler.CreateSetupFeeIntent)
	me.POST("/subscription/cancel", m.handler.CancelSubscription)
	me.POST("/usage/recompute", m.handler.RecomputeUsage)

	staff := ctx.Staff.Group("/customers")
	staff.GET("/:id", m.handler.GetByID)
	staff.POST("/:id/setup-fee/waive", m.handler.WaiveSetupFee)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
