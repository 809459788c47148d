package tasks

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storeroom_backend/internal/domain"
	apphttp "storeroom_backend/internal/http"
	"storeroom_backend/platform/httpkit"
)

// ListResponse is the staff backlog.
type ListResponse struct {
	Items []domain.OperationalTask `json:"items"`
	Total int                      `json:"total"`
}

// Module exposes the ops task backlog to staff.
type Module struct {
	service *Service
}

// NewModule creates the ops tasks module.
func NewModule(svc *Service) *Module {
	return &Module{service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tasks"
}

// RegisterRoutes mounts the staff task routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	tasks := ctx.Staff.Group("/tasks")
	tasks.GET("", m.list)
	tasks.POST("/:id/done", m.markDone)
}

// GET /api/v1/ops/tasks
func (m *Module) list(c *gin.Context) {
	list, err := m.service.ListPending(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	if list == nil {
		list = []domain.OperationalTask{}
	}
	httpkit.OK(c, ListResponse{Items: list, Total: len(list)})
}

// POST /api/v1/ops/tasks/:id/done
func (m *Module) markDone(c *gin.Context) {
	task, err := m.service.MarkDone(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusOK, task)
}

var _ apphttp.Module = (*Module)(nil)
