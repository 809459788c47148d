// Package recordstore talks to the external record-oriented datastore that
// holds customers, items, visits and operational tasks.
// This is part of the platform layer and contains no business logic.
package recordstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storeroom_backend/platform/recordstore/formula"
)

var (
	// ErrNotFound is returned when a record ID does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrRejected is returned when the store refuses a write, e.g. to a computed or unknown field.
	ErrRejected = errors.New("write rejected by record store")
	// ErrUnavailable is returned when the store could not be reached within the retry budget.
	ErrUnavailable = errors.New("record store unavailable")
)

// Record is a raw row: an opaque ID plus external field values.
type Record struct {
	ID          string         `json:"id"`
	CreatedTime time.Time      `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

// Store is the minimal surface the repository layer needs.
type Store interface {
	Get(ctx context.Context, table, id string) (Record, error)
	// List returns every record matching filter. A nil filter lists the table.
	List(ctx context.Context, table string, filter formula.Expr) ([]Record, error)
	Create(ctx context.Context, table string, fields map[string]any) (Record, error)
	// Update patches only the given fields.
	Update(ctx context.Context, table, id string, fields map[string]any) (Record, error)
	Delete(ctx context.Context, table, id string) error
}

// HTTPError is a non-2xx answer from the store API.
type HTTPError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("record store returned %d %s: %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("record store returned %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether retrying the same request may succeed.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
