package validator

import (
	"testing"

	"storeroom_backend/platform/apperr"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Plan  string `json:"plan" validate:"required,plantier"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	v := New()
	if err := v.RegisterValidation("plantier", OneOf("starter", "medium", "family")); err != nil {
		t.Fatalf("register: %v", err)
	}

	err := v.Struct(sample{Email: "nope", Plan: "gold"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields, _ := err.(*apperr.Error).Details.([]apperr.FieldError)
	if len(fields) != 2 {
		t.Fatalf("expected 2 field errors, got %+v", fields)
	}
	if fields[0].Field != "email" || fields[1].Field != "plan" {
		t.Fatalf("unexpected field names: %+v", fields)
	}

	if err := v.Struct(sample{Email: "a@b.co", Plan: "family"}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}
