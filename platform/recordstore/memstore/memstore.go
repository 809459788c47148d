// Package memstore is an in-process recordstore.Store. Values are normalised
// through JSON on write so readers see the same shapes the REST API returns.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"storeroom_backend/platform/recordstore"
	"storeroom_backend/platform/recordstore/formula"

	"github.com/google/uuid"
)

// Store keeps tables in memory, in insertion order.
type Store struct {
	mu       sync.RWMutex
	tables   map[string]*table
	computed map[string]map[string]bool
	failures map[string][]error
	calls    map[string]int
	now      func() time.Time
}

type table struct {
	order   []string
	records map[string]recordstore.Record
}

// New creates an empty store.
func New() *Store {
	return &Store{
		tables:   make(map[string]*table),
		computed: make(map[string]map[string]bool),
		failures: make(map[string][]error),
		calls:    make(map[string]int),
		now:      time.Now,
	}
}

// MarkComputed makes writes to the given fields fail with ErrRejected,
// like formula and rollup columns do.
func (s *Store) MarkComputed(tableName string, fields ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.computed[tableName] == nil {
		s.computed[tableName] = make(map[string]bool)
	}
	for _, f := range fields {
		s.computed[tableName][f] = true
	}
}

// FailNext queues err to be returned by the next call of op ("get", "list",
// "create", "update", "delete").
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], err)
}

// Calls returns how often op has been invoked.
func (s *Store) Calls(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[op]
}

// Put inserts a raw record as is, bypassing computed-field checks.
func (s *Store) Put(tableName string, rec recordstore.Record) recordstore.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = newID()
	}
	if rec.CreatedTime.IsZero() {
		rec.CreatedTime = s.now().UTC()
	}
	rec.Fields = normalize(rec.Fields)
	t := s.table(tableName)
	if _, exists := t.records[rec.ID]; !exists {
		t.order = append(t.order, rec.ID)
	}
	t.records[rec.ID] = rec
	return clone(rec)
}

func (s *Store) Get(_ context.Context, tableName, id string) (recordstore.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("get"); err != nil {
		return recordstore.Record{}, err
	}
	rec, ok := s.table(tableName).records[id]
	if !ok {
		return recordstore.Record{}, fmt.Errorf("%w: %s/%s", recordstore.ErrNotFound, tableName, id)
	}
	return clone(rec), nil
}

func (s *Store) List(_ context.Context, tableName string, filter formula.Expr) ([]recordstore.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("list"); err != nil {
		return nil, err
	}
	t := s.table(tableName)
	out := make([]recordstore.Record, 0, len(t.order))
	for _, id := range t.order {
		rec := t.records[id]
		if filter == nil || filter.Match(rec.Fields) {
			out = append(out, clone(rec))
		}
	}
	return out, nil
}

func (s *Store) Create(_ context.Context, tableName string, fields map[string]any) (recordstore.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("create"); err != nil {
		return recordstore.Record{}, err
	}
	if err := s.checkComputed(tableName, fields); err != nil {
		return recordstore.Record{}, err
	}
	rec := recordstore.Record{
		ID:          newID(),
		CreatedTime: s.now().UTC(),
		Fields:      dropNulls(normalize(fields)),
	}
	t := s.table(tableName)
	t.order = append(t.order, rec.ID)
	t.records[rec.ID] = rec
	return clone(rec), nil
}

func (s *Store) Update(_ context.Context, tableName, id string, fields map[string]any) (recordstore.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("update"); err != nil {
		return recordstore.Record{}, err
	}
	if err := s.checkComputed(tableName, fields); err != nil {
		return recordstore.Record{}, err
	}
	t := s.table(tableName)
	rec, ok := t.records[id]
	if !ok {
		return recordstore.Record{}, fmt.Errorf("%w: %s/%s", recordstore.ErrNotFound, tableName, id)
	}
	merged := make(map[string]any, len(rec.Fields)+len(fields))
	for k, v := range rec.Fields {
		merged[k] = v
	}
	for k, v := range normalize(fields) {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	rec.Fields = merged
	t.records[id] = rec
	return clone(rec), nil
}

func (s *Store) Delete(_ context.Context, tableName, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("delete"); err != nil {
		return err
	}
	t := s.table(tableName)
	if _, ok := t.records[id]; !ok {
		return fmt.Errorf("%w: %s/%s", recordstore.ErrNotFound, tableName, id)
	}
	delete(t.records, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) enter(op string) error {
	s.calls[op]++
	if queued := s.failures[op]; len(queued) > 0 {
		s.failures[op] = queued[1:]
		return queued[0]
	}
	return nil
}

func (s *Store) checkComputed(tableName string, fields map[string]any) error {
	for key := range fields {
		if s.computed[tableName][key] {
			return fmt.Errorf("%w: field %q is computed", recordstore.ErrRejected, key)
		}
	}
	return nil
}

func (s *Store) table(name string) *table {
	t, ok := s.tables[name]
	if !ok {
		t = &table{records: make(map[string]recordstore.Record)}
		s.tables[name] = t
	}
	return t
}

func newID() string {
	return "rec" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:14])
}

// normalize round-trips through JSON so numbers become float64 and slices []any.
func normalize(fields map[string]any) map[string]any {
	if fields == nil {
		return map[string]any{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		panic(fmt.Sprintf("memstore: unencodable fields: %v", err))
	}
	out := make(map[string]any, len(fields))
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("memstore: %v", err))
	}
	return out
}

func dropNulls(fields map[string]any) map[string]any {
	for k, v := range fields {
		if v == nil {
			delete(fields, k)
		}
	}
	return fields
}

func clone(rec recordstore.Record) recordstore.Record {
	rec.Fields = normalize(rec.Fields)
	return rec
}

var _ recordstore.Store = (*Store)(nil)
