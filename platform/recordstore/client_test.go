package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"storeroom_backend/platform/recordstore/formula"
)

type testStoreConfig struct {
	url string
}

func (c testStoreConfig) GetRecordStoreDriver() string         { return "airtable" }
func (c testStoreConfig) GetRecordStoreURL() string            { return c.url }
func (c testStoreConfig) GetRecordStoreAPIKey() string         { return "key123" }
func (c testStoreConfig) GetRecordStoreBaseID() string         { return "appBASE" }
func (c testStoreConfig) GetRecordStoreTimeout() time.Duration { return time.Second }
func (c testStoreConfig) GetRecordStoreMaxRetries() int        { return 2 }
func (c testStoreConfig) GetRecordStoreRateLimit() float64     { return 1000 }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(testStoreConfig{url: srv.URL}, nil)
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestClientRetriesTransientFailures(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key123" {
			t.Errorf("authorization header = %q", got)
		}
		_ = json.NewEncoder(w).Encode(Record{ID: "rec1", Fields: map[string]any{"Email": "a@b.co"}})
	})

	rec, err := c.Get(context.Background(), "Customers", "rec1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.ID != "rec1" || rec.Fields["Email"] != "a@b.co" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestClientGivesUpAfterRetryBudget(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Get(context.Background(), "Customers", "rec1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 1 call plus 2 retries, got %d", calls)
	}
}

func TestClientDoesNotRetryCreateAfterServerError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Create(context.Background(), "Movements", map[string]any{"Type": "pickup"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("create must not be repeated after a 5xx, got %d calls", calls)
	}
}

func TestClientRetriesRateLimitedCreate(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(Record{ID: "recNew", Fields: map[string]any{"Type": "pickup"}})
	})

	rec, err := c.Create(context.Background(), "Movements", map[string]any{"Type": "pickup"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID != "recNew" || calls != 2 {
		t.Fatalf("rec = %+v after %d calls", rec, calls)
	}
}

func TestSafeToRetry(t *testing.T) {
	tests := []struct {
		name   string
		method string
		err    error
		want   bool
	}{
		{"read after 5xx", http.MethodGet, &HTTPError{StatusCode: 503}, true},
		{"patch after 5xx", http.MethodPatch, &HTTPError{StatusCode: 500}, true},
		{"create after 429", http.MethodPost, &HTTPError{StatusCode: 429}, true},
		{"create after 5xx", http.MethodPost, &HTTPError{StatusCode: 503}, false},
		{"create refused at dial", http.MethodPost, &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"create lost mid-read", http.MethodPost, &net.OpError{Op: "read", Err: errors.New("reset")}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := safeToRetry(tc.method, tc.err); got != tc.want {
				t.Fatalf("safeToRetry = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClientMapsPermanentErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"NOT_FOUND"}`))
		default:
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":{"type":"INVALID_VALUE_FOR_COLUMN","message":"Field \"Cubic Feet\" cannot accept a value because the field is computed"}}`))
		}
	})

	if _, err := c.Get(context.Background(), "Items", "recX"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err := c.Update(context.Background(), "Items", "recX", map[string]any{"Cubic Feet": 1})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.Type != "INVALID_VALUE_FOR_COLUMN" {
		t.Fatalf("expected typed HTTP error, got %v", err)
	}
}

func TestClientListFollowsOffsetAndSendsFormula(t *testing.T) {
	filter := formula.Eq("Email", "o'brien@x.com")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filterByFormula"); got != filter.String() {
			t.Errorf("filterByFormula = %q", got)
		}
		if r.URL.Path != "/v0/appBASE/Customers" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("offset") == "" {
			_ = json.NewEncoder(w).Encode(listResponse{Records: []Record{{ID: "rec1"}}, Offset: "page2"})
			return
		}
		_ = json.NewEncoder(w).Encode(listResponse{Records: []Record{{ID: "rec2"}}})
	})

	recs, err := c.List(context.Background(), "Customers", filter)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "rec1" || recs[1].ID != "rec2" {
		t.Fatalf("unexpected records %+v", recs)
	}
}

func TestBackoffIsBounded(t *testing.T) {
	p := RetryPolicy{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second, Multiplier: 2}
	if got := p.Backoff(0); got != 100*time.Millisecond {
		t.Fatalf("Backoff(0) = %v", got)
	}
	if got := p.Backoff(10); got != time.Second {
		t.Fatalf("Backoff(10) = %v", got)
	}
}
