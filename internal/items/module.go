// Package items provides the items bounded context module.
package items

import (
	"storeroom_backend/internal/items/handler"
	"storeroom_backend/internal/items/service"
	apphttp "storeroom_backend/internal/http"
	"storeroom_backend/platform/validator"
)

// Module is the items bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the items module.
func NewModule(svc *service.Service, val *validator.Validator, maxPhotoSize int64) *Module {
	return &Module{
		handler: handler.New(svc, val, maxPhotoSize),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "items"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts item routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	items := ctx.Protected.Group("/items")
	items.GET("", m.handler.List)
	items.POST("", m.handler.Create)
	items.GET("/:id", m.handler.Get)
	items.PATCH("/:id", m.handler.Update)
	items.DELETE("/:id", m.handler.Delete)
	items.POST("/:id/photos", m.handler.UploadPhotos)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
