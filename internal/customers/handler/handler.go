package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storeroom_backend/internal/customers/service"
	"storeroom_backend/internal/customers/transport"
	"storeroom_backend/platform/httpkit"
	"storeroom_backend/platform/validator"
)

// Handler handles HTTP requests for customers.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const msgInvalidRequest = "invalid request"

// New creates a new customers handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Signup creates or refreshes a customer by email.
// POST /api/v1/customers
func (h *Handler) Signup(c *gin.Context) {
	var req transport.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); httpkit.HandleError(c, err) {
		return
	}

	result, err := h.svc.Signup(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	httpkit.JSON(c, status, result)
}

// GetMe returns the caller's customer record.
// GET /api/v1/customers/me
func (h *Handler) GetMe(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateMe patches the caller's profile.
// PATCH /api/v1/customers/me
func (h *Handler) UpdateMe(c *gin.Context) {
	var req transport.UpdateProfileRequest
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

	result, err := h.svc.UpdateProfile(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateSetupFeeIntent prepares the setup fee payment, optionally with a coupon.
// POST /api/v1/customers/me/setup-fee/payment-intent
func (h *Handler) CreateSetupFeeIntent(c *gin.Context) {
	var req transport.PaymentIntentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
	}
	if err := h.val.Struct(req); httpkit.HandleError(c, err) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.SetupFeeIntent(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// CancelSubscription stops the caller's recurring billing.
// POST /api/v1/customers/me/subscription/cancel
func (h *Handler) CancelSubscription(c *gin.Context) {
	var req transport.CancelSubscriptionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.CancelSubscription(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RecomputeUsage re-derives the caller's usage counters from their items.
// POST /api/v1/customers/me/usage/recompute
func (h *Handler) RecomputeUsage(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Usage(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByID returns any customer for staff.
// GET /api/v1/ops/customers/:id
func (h *Handler) GetByID(c *gin.Context) {
	result, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// WaiveSetupFee settles a customer's setup fee without payment.
// POST /api/v1/ops/customers/:id/setup-fee/waive
func (h *Handler) WaiveSetupFee(c *gin.Context) {
	var req transport.WaiveSetupFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); httpkit.HandleError(c, err) {
		return
	}

	result, err := h.svc.WaiveSetupFee(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
