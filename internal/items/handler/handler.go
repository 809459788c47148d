package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"storeroom_backend/internal/adapters/storage"
	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/items/service"
	"storeroom_backend/internal/items/transport"
	"storeroom_backend/platform/httpkit"
	"storeroom_backend/platform/validator"
)

// Handler handles HTTP requests for items.
type Handler struct {
	svc          *service.Service
	val          *validator.Validator
	maxPhotoSize int64
}

const (
	msgInvalidRequest = "invalid request"
	msgInvalidForm    = "expected multipart form with files"
	photoFormField    = "files"
	maxPhotosPerCall  = 10
)

// New creates a new items handler.
func New(svc *service.Service, val *validator.Validator, maxPhotoSize int64) *Handler {
	if maxPhotoSize <= 0 {
		maxPhotoSize = storage.DefaultMaxFileSize
	}
	return &Handler{svc: svc, val: val, maxPhotoSize: maxPhotoSize}
}

// List returns the caller's items.
// GET /api/v1/items
func (h *Handler) List(c *gin.Context) {
	var req transport.ListItemsRequest
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

// Get returns one item.
// GET /api/v1/items/:id
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

// Create adds an item.
// POST /api/v1/items
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateItemRequest
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

// Update patches an item.
// PATCH /api/v1/items/:id
func (h *Handler) Update(c *gin.Context) {
	var req transport.UpdateItemRequest
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

	result, err := h.svc.Update(c.Request.Context(), actorOf(identity), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes an item.
// DELETE /api/v1/items/:id
func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actorOf(identity), c.Param("id")); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadPhotos attaches photos to an item. Responds 207 when only some
// files were stored.
// POST /api/v1/items/:id/photos
func (h *Handler) UploadPhotos(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidForm, nil)
		return
	}
	headers := form.File[photoFormField]
	if len(headers) > maxPhotosPerCall {
		httpkit.Error(c, http.StatusBadRequest, "too many files", gin.H{"max": maxPhotosPerCall})
		return
	}

	uploads := make([]transport.PhotoUpload, 0, len(headers))
	for _, fh := range headers {
		data, err := h.readFile(fh)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "could not read "+fh.Filename, nil)
			return
		}
		uploads = append(uploads, transport.PhotoUpload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	result, err := h.svc.UploadPhotos(c.Request.Context(), actorOf(identity), c.Param("id"), uploads)
	if httpkit.HandleError(c, err) {
		return
	}
	status := http.StatusOK
	if result.Partial() {
		status = http.StatusMultiStatus
	}
	httpkit.JSON(c, status, result)
}

// readFile reads at most one byte past the limit so oversize files are
// rejected by validation rather than truncated.
func (h *Handler) readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, h.maxPhotoSize+1))
}

func actorOf(identity httpkit.Identity) domain.Actor {
	return domain.Actor{ID: identity.UserID(), Staff: identity.IsStaff()}
}
