// Package records is the typed repository over the external record store.
// It converts store failures into application errors at this boundary, so
// raw client errors never reach services or handlers.
package records

import (
	"context"
	"errors"
	"fmt"

	"storeroom_backend/internal/schema"
	"storeroom_backend/platform/apperr"
	"storeroom_backend/platform/logger"
	"storeroom_backend/platform/recordstore"
)

// Repository reads and writes one entity type.
type Repository[E any] struct {
	store  recordstore.Store
	schema *schema.Schema[E]
	log    *logger.Logger
	noun   string
}

// New creates a repository. noun names the entity in error messages.
func New[E any](store recordstore.Store, s *schema.Schema[E], noun string, log *logger.Logger) *Repository[E] {
	return &Repository[E]{store: store, schema: s, noun: noun, log: log}
}

// Find returns the entity with the given ID.
func (r *Repository[E]) Find(ctx context.Context, id string) (*E, error) {
	if id == "" {
		return nil, apperr.NotFound(r.noun + " not found")
	}
	rec, err := r.store.Get(ctx, r.schema.Table, id)
	if err != nil {
		return nil, r.convert(ctx, "find", id, err)
	}
	e, _, err := r.schema.FromExternal(rec)
	return e, err
}

// Query returns every entity matching cond, in store order.
func (r *Repository[E]) Query(ctx context.Context, cond Cond) ([]E, error) {
	filter, err := cond(r.schema)
	if err != nil {
		return nil, err
	}
	recs, err := r.store.List(ctx, r.schema.Table, filter)
	if err != nil {
		return nil, r.convert(ctx, "query", "", err)
	}
	out := make([]E, 0, len(recs))
	for _, rec := range recs {
		e, _, err := r.schema.FromExternal(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}

// Create validates required fields and inserts e.
func (r *Repository[E]) Create(ctx context.Context, e *E) (*E, error) {
	if missing := r.schema.ValidateRequired(e); len(missing) > 0 {
		return nil, apperr.InvalidFields(r.noun+" is missing required fields", missing)
	}
	fields, err := r.schema.ToExternal(e)
	if err != nil {
		return nil, err
	}
	rec, err := r.store.Create(ctx, r.schema.Table, fields)
	if err != nil {
		return nil, r.convert(ctx, "create", "", err)
	}
	created, _, err := r.schema.FromExternal(rec)
	return created, err
}

// Update writes the named fields of e to record id. With no names every
// field is written. A legacy-version row is rewritten in full so it never
// mixes column generations: the named fields are copied onto the stored
// row and that row is written, so values other writers stored since e was
// read are kept.
func (r *Repository[E]) Update(ctx context.Context, id string, e *E, fields ...string) (*E, error) {
	if len(fields) > 0 {
		// Reject bad masks before any I/O.
		if _, err := r.schema.ToExternal(e, fields...); err != nil {
			return nil, err
		}
		rec, err := r.store.Get(ctx, r.schema.Table, id)
		if err != nil {
			return nil, r.convert(ctx, "update", id, err)
		}
		if schema.VersionOf(rec.Fields) != schema.VersionCurrent {
			stored, _, err := r.schema.FromExternal(rec)
			if err != nil {
				return nil, err
			}
			if err := r.schema.Copy(stored, e, fields...); err != nil {
				return nil, err
			}
			e, fields = stored, nil
		}
	}

	payload, err := r.schema.ToExternal(e, fields...)
	if err != nil {
		return nil, err
	}
	rec, err := r.store.Update(ctx, r.schema.Table, id, payload)
	if err != nil {
		return nil, r.convert(ctx, "update", id, err)
	}
	updated, _, err := r.schema.FromExternal(rec)
	return updated, err
}

// Delete removes record id.
func (r *Repository[E]) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, r.schema.Table, id); err != nil {
		return r.convert(ctx, "delete", id, err)
	}
	return nil
}

// UpsertByKey finds the first record whose keyField equals e's value for it
// and overwrites the named fields with e's values, or creates e when no
// record matches. Fields left unnamed keep their stored values, so replaying
// the same payload yields one record. The boolean reports a create.
func (r *Repository[E]) UpsertByKey(ctx context.Context, keyField string, e *E, fields ...string) (*E, bool, error) {
	keyValue, ok := r.schema.Value(e, keyField)
	if !ok {
		return nil, false, apperr.Configuration(fmt.Sprintf("%s has no field %q", r.schema.Table, keyField))
	}
	existing, err := r.Query(ctx, Eq(keyField, keyValue))
	if err != nil {
		return nil, false, err
	}
	if len(existing) == 0 {
		created, err := r.Create(ctx, e)
		return created, true, err
	}
	if len(existing) > 1 && r.log != nil {
		r.log.WithContext(ctx).Warn("duplicate records for upsert key",
			"table", r.schema.Table, "field", keyField, "count", len(existing))
	}
	current := &existing[0]
	if len(fields) == 0 {
		return current, false, nil
	}
	if err := r.schema.Copy(current, e, fields...); err != nil {
		return nil, false, err
	}
	updated, err := r.Update(ctx, r.schema.ID(current), current, fields...)
	return updated, false, err
}

func (r *Repository[E]) convert(ctx context.Context, op, id string, err error) error {
	switch {
	case errors.Is(err, recordstore.ErrNotFound):
		return apperr.NotFound(r.noun + " not found")
	case errors.Is(err, recordstore.ErrRejected):
		if r.log != nil {
			r.log.WithContext(ctx).StoreError(op, r.schema.Table, id, err)
		}
		return apperr.Wrap(apperr.KindConfiguration, fmt.Sprintf("record store rejected %s %s", op, r.noun), err)
	case errors.Is(err, context.Canceled):
		return apperr.Wrap(apperr.KindBadRequest, "request cancelled", err)
	}
	if r.log != nil {
		r.log.WithContext(ctx).StoreError(op, r.schema.Table, id, err)
	}
	return apperr.StoreUnavailable("record store unavailable", err).WithOp(op + " " + r.noun)
}
