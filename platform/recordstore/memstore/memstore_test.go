package memstore

import (
	"context"
	"errors"
	"testing"

	"storeroom_backend/platform/recordstore"
	"storeroom_backend/platform/recordstore/formula"
)

func TestCreateNormalisesAndFilters(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, err := s.Create(ctx, "Items", map[string]any{"Name": "Lamp", "Weight": 4, "Customer": []string{"recA"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := a.Fields["Weight"].(float64); !ok {
		t.Fatalf("numbers should come back as float64, got %T", a.Fields["Weight"])
	}
	_, _ = s.Create(ctx, "Items", map[string]any{"Name": "Desk", "Customer": []string{"recB"}})

	got, err := s.List(ctx, "Items", formula.Contains("Customer", "recA"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("unexpected filter result %+v", got)
	}
}

func TestUpdatePatchesAndClearsNulls(t *testing.T) {
	ctx := context.Background()
	s := New()
	rec, _ := s.Create(ctx, "Items", map[string]any{"Name": "Lamp", "Category": "lighting"})

	updated, err := s.Update(ctx, "Items", rec.ID, map[string]any{"Category": nil, "Weight": 2.5})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Fields["Name"] != "Lamp" || updated.Fields["Weight"] != 2.5 {
		t.Fatalf("patch lost fields: %+v", updated.Fields)
	}
	if _, ok := updated.Fields["Category"]; ok {
		t.Fatal("null should clear the field")
	}
}

func TestComputedFieldsAndInjectedFailures(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.MarkComputed("Items", "Cubic Feet")

	if _, err := s.Create(ctx, "Items", map[string]any{"Cubic Feet": 3}); !errors.Is(err, recordstore.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}

	s.FailNext("get", recordstore.ErrUnavailable)
	if _, err := s.Get(ctx, "Items", "recNOPE"); !errors.Is(err, recordstore.ErrUnavailable) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if _, err := s.Get(ctx, "Items", "recNOPE"); !errors.Is(err, recordstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if s.Calls("get") != 2 {
		t.Fatalf("Calls(get) = %d", s.Calls("get"))
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	ctx := context.Background()
	s := New()
	rec, _ := s.Create(ctx, "Items", map[string]any{"Name": "Lamp"})
	if err := s.Delete(ctx, "Items", rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "Items", rec.ID); !errors.Is(err, recordstore.ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}
