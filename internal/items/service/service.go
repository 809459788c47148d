// Package service implements the customer's item inventory.
package service

import (
	"context"
	"errors"
	"fmt"

	"storeroom_backend/internal/adapters/storage"
	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/items/transport"
	"storeroom_backend/internal/records"
	"storeroom_backend/internal/schema"
	"storeroom_backend/internal/tasks"
	"storeroom_backend/platform/apperr"
	"storeroom_backend/platform/logger"
	"storeroom_backend/platform/sanitize"
)

const photoFolder = "items"

// ItemStore is the item repository.
type ItemStore interface {
	Find(ctx context.Context, id string) (*domain.Item, error)
	Query(ctx context.Context, cond records.Cond) ([]domain.Item, error)
	Create(ctx context.Context, item *domain.Item) (*domain.Item, error)
	Update(ctx context.Context, id string, item *domain.Item, fields ...string) (*domain.Item, error)
	Delete(ctx context.Context, id string) error
}

// UsageRecomputer refreshes a customer's usage counters.
type UsageRecomputer interface {
	RecomputeUsage(ctx context.Context, customerID string) error
}

// Service provides business logic for items.
type Service struct {
	items        ItemStore
	usage        UsageRecomputer
	files        storage.FileHost
	ops          tasks.Recorder
	maxPhotoSize int64
	log          *logger.Logger
}

// New creates a new items service.
func New(items ItemStore, usage UsageRecomputer, files storage.FileHost, ops tasks.Recorder, maxPhotoSize int64, log *logger.Logger) *Service {
	return &Service{items: items, usage: usage, files: files, ops: ops, maxPhotoSize: maxPhotoSize, log: log}
}

// List returns the actor's items, optionally filtered by status. Staff may
// list another customer's items.
func (s *Service) List(ctx context.Context, actor domain.Actor, req transport.ListItemsRequest) (transport.ItemListResponse, error) {
	owner := actor.ID
	if actor.Staff && req.CustomerID != "" {
		owner = req.CustomerID
	}
	cond := records.Eq(schema.FieldCustomerID, owner)
	if req.Status != "" {
		cond = records.And(cond, records.Eq(schema.FieldStatus, domain.ItemStatus(req.Status)))
	}
	list, err := s.items.Query(ctx, cond)
	if err != nil {
		return transport.ItemListResponse{}, err
	}

	resp := transport.ItemListResponse{Items: make([]transport.ItemResponse, 0, len(list)), Total: len(list)}
	for i := range list {
		resp.Items = append(resp.Items, toResponse(&list[i]))
		resp.TotalCubicFeet += list[i].CubicFeet
	}
	return resp, nil
}

// Get returns one item the actor may see.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id string) (transport.ItemResponse, error) {
	item, err := s.load(ctx, actor, id)
	if err != nil {
		return transport.ItemResponse{}, err
	}
	return toResponse(item), nil
}

// Create adds an item at the customer's home. Staff may create items for
// any customer.
func (s *Service) Create(ctx context.Context, actor domain.Actor, req transport.CreateItemRequest) (transport.ItemResponse, error) {
	owner := actor.ID
	if actor.Staff && req.CustomerID != "" {
		owner = req.CustomerID
	}

	item := &domain.Item{
		CustomerID:          owner,
		Name:                sanitize.Line(req.Name),
		LengthIn:            orMinimum(req.LengthIn),
		WidthIn:             orMinimum(req.WidthIn),
		HeightIn:            orMinimum(req.HeightIn),
		WeightLbs:           req.WeightLbs,
		EstimatedValueCents: req.EstimatedValueCents,
		Category:            sanitize.Line(req.Category),
		ContainerType:       sanitize.Line(req.ContainerType),
		Status:              domain.ItemAtHome,
	}
	item.Recompute()

	created, err := s.items.Create(ctx, item)
	if err != nil {
		return transport.ItemResponse{}, err
	}

	// Packing supplies are staged per item, so every new item is a task.
	s.ops.Record(ctx, domain.OperationalTask{
		CustomerID: created.CustomerID,
		Priority:   domain.PriorityNormal,
		Action:     fmt.Sprintf("Prepare packing for %s (%.1f cu ft)", created.Name, created.CubicFeet),
	})
	return toResponse(created), nil
}

// Update patches an item. Changing any dimension re-derives its volume.
// Only staff may move an item between statuses.
func (s *Service) Update(ctx context.Context, actor domain.Actor, id string, req transport.UpdateItemRequest) (transport.ItemResponse, error) {
	item, err := s.load(ctx, actor, id)
	if err != nil {
		return transport.ItemResponse{}, err
	}

	var fields []string
	if req.Name != nil {
		item.Name = sanitize.Line(*req.Name)
		fields = append(fields, schema.FieldName)
	}
	dims := []struct {
		value *float64
		dst   *float64
		field string
	}{
		{req.LengthIn, &item.LengthIn, schema.FieldLength},
		{req.WidthIn, &item.WidthIn, schema.FieldWidth},
		{req.HeightIn, &item.HeightIn, schema.FieldHeight},
	}
	resized := false
	for _, d := range dims {
		if d.value != nil {
			*d.dst = orMinimum(*d.value)
			fields = append(fields, d.field)
			resized = true
		}
	}
	if resized {
		item.Recompute()
		fields = append(fields, schema.FieldCubicFeet)
	}
	if req.WeightLbs != nil {
		item.WeightLbs = *req.WeightLbs
		fields = append(fields, schema.FieldWeight)
	}
	if req.EstimatedValueCents != nil {
		item.EstimatedValueCents = *req.EstimatedValueCents
		fields = append(fields, schema.FieldEstimatedValue)
	}
	if req.Category != nil {
		item.Category = sanitize.Line(*req.Category)
		fields = append(fields, schema.FieldCategory)
	}
	if req.ContainerType != nil {
		item.ContainerType = sanitize.Line(*req.ContainerType)
		fields = append(fields, schema.FieldContainerType)
	}
	statusChanged := false
	if req.Status != nil && domain.ItemStatus(*req.Status) != item.Status {
		if !actor.Staff {
			return transport.ItemResponse{}, apperr.Forbidden("only staff can change item status")
		}
		item.Status = domain.ItemStatus(*req.Status)
		fields = append(fields, schema.FieldStatus)
		statusChanged = true
	}

	if len(fields) == 0 {
		return toResponse(item), nil
	}
	updated, err := s.items.Update(ctx, id, item, fields...)
	if err != nil {
		return transport.ItemResponse{}, err
	}
	if resized || statusChanged || req.EstimatedValueCents != nil {
		s.recomputeUsage(ctx, updated.CustomerID)
	}
	return toResponse(updated), nil
}

// Delete removes an item and its photos. Items in storage must be delivered
// home first.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	item, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if !item.Deletable() {
		return apperr.Validation("item is in storage; schedule a delivery before deleting it")
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}

	for _, url := range item.PhotoURLs {
		key, ok := s.files.KeyFromURL(url)
		if !ok {
			continue
		}
		if err := s.files.Delete(ctx, key); err != nil && s.log != nil {
			s.log.WithContext(ctx).Warn("failed to delete item photo", "item_id", id, "key", key, "error", err)
		}
	}
	s.recomputeUsage(ctx, item.CustomerID)
	return nil
}

// UploadPhotos stores each file and appends the successful URLs to the item.
// Files are independent: some may fail while others are kept. When none
// succeed the call fails with per-file details.
func (s *Service) UploadPhotos(ctx context.Context, actor domain.Actor, id string, uploads []transport.PhotoUpload) (transport.PhotoUploadResponse, error) {
	if len(uploads) == 0 {
		return transport.PhotoUploadResponse{}, apperr.InvalidFields("no files", []apperr.FieldError{{Field: "files", Message: "is required"}})
	}
	item, err := s.load(ctx, actor, id)
	if err != nil {
		return transport.PhotoUploadResponse{}, err
	}

	resp := transport.PhotoUploadResponse{Uploaded: []string{}, Failed: []transport.PhotoFailure{}}
	for _, upload := range uploads {
		url, err := s.storePhoto(ctx, item.ID, upload)
		if err != nil {
			resp.Failed = append(resp.Failed, transport.PhotoFailure{FileName: upload.FileName, Error: err.Error()})
			continue
		}
		resp.Uploaded = append(resp.Uploaded, url)
	}

	if len(resp.Uploaded) == 0 {
		fields := make([]apperr.FieldError, 0, len(resp.Failed))
		for _, f := range resp.Failed {
			fields = append(fields, apperr.FieldError{Field: f.FileName, Message: f.Error})
		}
		return transport.PhotoUploadResponse{}, apperr.InvalidFields("no photos could be stored", fields)
	}

	item.PhotoURLs = append(item.PhotoURLs, resp.Uploaded...)
	updated, err := s.items.Update(ctx, id, item, schema.FieldPhotoURLs)
	if err != nil {
		return transport.PhotoUploadResponse{}, err
	}
	resp.Item = toResponse(updated)
	return resp, nil
}

func (s *Service) storePhoto(ctx context.Context, itemID string, upload transport.PhotoUpload) (string, error) {
	if err := storage.ValidatePhoto(upload.ContentType, int64(len(upload.Data)), s.maxPhotoSize); err != nil {
		return "", err
	}
	key := storage.ObjectKey(photoFolder+"/"+itemID, upload.FileName)
	url, err := s.files.Store(ctx, key, upload.ContentType, upload.Data)
	if err != nil {
		if s.log != nil {
			s.log.WithContext(ctx).Error("photo upload failed", "item_id", itemID, "key", key, "error", err)
		}
		return "", errors.New("file hosting unavailable")
	}
	return url, nil
}

func (s *Service) load(ctx context.Context, actor domain.Actor, id string) (*domain.Item, error) {
	item, err := s.items.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(item.CustomerID) {
		return nil, apperr.NotFound("item not found")
	}
	return item, nil
}

// recomputeUsage is best effort; the item write already succeeded.
func (s *Service) recomputeUsage(ctx context.Context, customerID string) {
	if s.usage == nil {
		return
	}
	if err := s.usage.RecomputeUsage(ctx, customerID); err != nil && s.log != nil {
		s.log.WithContext(ctx).Warn("usage recompute failed", "customer_id", customerID, "error", err)
	}
}

func orMinimum(inches float64) float64 {
	if inches <= 0 {
		return domain.MinimumBoxInches
	}
	return inches
}

func toResponse(i *domain.Item) transport.ItemResponse {
	photos := i.PhotoURLs
	if photos == nil {
		photos = []string{}
	}
	return transport.ItemResponse{
		ID:                  i.ID,
		CustomerID:          i.CustomerID,
		Name:                i.Name,
		LengthIn:            i.LengthIn,
		WidthIn:             i.WidthIn,
		HeightIn:            i.HeightIn,
		WeightLbs:           i.WeightLbs,
		CubicFeet:           i.CubicFeet,
		EstimatedValueCents: i.EstimatedValueCents,
		Category:            i.Category,
		ContainerType:       i.ContainerType,
		Status:              i.Status,
		PhotoURLs:           photos,
		ReturnVisitID:       i.ReturnVisitID,
		CreatedAt:           i.CreatedAt,
	}
}
