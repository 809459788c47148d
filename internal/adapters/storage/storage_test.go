package storage

import (
	"context"
	"strings"
	"testing"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("items/recI1", "My Sofa.JPG")
	if !strings.HasPrefix(key, "items/recI1/my-sofa_") || !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("unexpected key %q", key)
	}
	if ObjectKey("x", "a.png") == ObjectKey("x", "a.png") {
		t.Fatal("keys must be unique")
	}
}

func TestValidatePhoto(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		size        int64
		wantErr     bool
	}{
		{"jpeg", "image/jpeg", 1024, false},
		{"with params", "image/png; charset=binary", 1024, false},
		{"pdf", "application/pdf", 1024, true},
		{"empty", "image/png", 0, true},
		{"too big", "image/png", DefaultMaxFileSize + 1, true},
	}
	for _, tc := range cases {
		err := ValidatePhoto(tc.contentType, tc.size, 0)
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestMemoryHostRoundTrip(t *testing.T) {
	h := NewMemoryHost("http://files.local/")
	url, err := h.Store(context.Background(), "items/a.png", "image/png", []byte("x"))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	key, ok := h.KeyFromURL(url)
	if !ok || key != "items/a.png" || !h.Has(key) {
		t.Fatalf("url %q -> key %q (%v)", url, key, ok)
	}
	if err := h.Delete(context.Background(), key); err != nil || h.Has(key) {
		t.Fatalf("Delete: %v", err)
	}
}
