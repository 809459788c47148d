package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"storeroom_backend/internal/availability"
	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/visits/service"
	"storeroom_backend/internal/visits/transport"
	"storeroom_backend/platform/httpkit"
	"storeroom_backend/platform/validator"
)

// Handler handles HTTP requests for visits, quotes and availability.
type Handler struct {
	svc          *service.Service
	availability *availability.Service
	val          *validator.Validator
}

const (
	msgInvalidRequest = "invalid request"
	msgInvalidDate    = "date must match YYYY-MM-DD"
)

// New creates a new visits handler.
func New(svc *service.Service, avail *availability.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, availability: avail, val: val}
}

// Quote prices a draft visit.
// POST /api/v1/quotes
func (h *Handler) Quote(c *gin.Context) {
	var req transport.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); httpkit.HandleError(c, err) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Quote(c.Request.Context(), actorOf(identity), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create books a visit.
// POST /api/v1/visits
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); httpkit.HandleError(c, err) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), actorOf(identity), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// List returns visits.
// GET /api/v1/visits
func (h *Handler) List(c *gin.Context) {
	var req transport.ListVisitsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); httpkit.HandleError(c, err) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.List(c.Request.Context(), actorOf(identity), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get returns one visit.
// GET /api/v1/visits/:id
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), actorOf(identity), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Transition moves a visit through its lifecycle.
// PATCH /api/v1/visits/:id/status
func (h *Handler) Transition(c *gin.Context) {
	var req transport.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); httpkit.HandleError(c, err) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Transition(c.Request.Context(), actorOf(identity), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetAvailability returns every window for a date.
// GET /api/v1/availability?date=YYYY-MM-DD
func (h *Handler) GetAvailability(c *gin.Context) {
	date, err := time.Parse(transport.DateLayout, c.Query("date"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidDate, nil)
		return
	}

	day, err := h.availability.GetDay(c.Request.Context(), date)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, day)
}

// Suggestions returns upcoming business days.
// GET /api/v1/availability/suggestions?count=N
func (h *Handler) Suggestions(c *gin.Context) {
	count := 0
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 60 {
			httpkit.Error(c, http.StatusBadRequest, "count must be between 1 and 60", nil)
			return
		}
		count = n
	}
	httpkit.OK(c, gin.H{"dates": h.availability.Suggestions(count)})
}

func actorOf(identity httpkit.Identity) domain.Actor {
	return domain.Actor{ID: identity.UserID(), Staff: identity.IsStaff()}
}
