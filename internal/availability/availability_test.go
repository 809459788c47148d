package availability

import (
	"context"
	"testing"
	"time"

	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/records"
	"storeroom_backend/internal/schema"
	"storeroom_backend/platform/apperr"
	"storeroom_backend/platform/recordstore/memstore"
)

var (
	wednesday = time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	saturday  = time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)
)

func TestForDateWeekdayAndWeekend(t *testing.T) {
	if got := len(ForDate(wednesday, nil)); got != 3 {
		t.Fatalf("weekday windows = %d, want 3", got)
	}
	windows := ForDate(saturday, nil)
	if len(windows) != 4 || windows[3].ID != domain.WindowWeekend || !windows[3].Premium {
		t.Fatalf("weekend windows = %+v", windows)
	}
}

func TestForDateFullyBookedStillListsWindows(t *testing.T) {
	var booked []domain.Visit
	for _, w := range []domain.TimeWindow{domain.WindowMorning, domain.WindowMidday, domain.WindowAfternoon} {
		booked = append(booked, domain.Visit{Date: wednesday, Window: w, Status: domain.VisitScheduled})
	}
	windows := ForDate(wednesday, booked)
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	for _, w := range windows {
		if w.Available {
			t.Errorf("window %s should be unavailable", w.ID)
		}
	}
}

func TestForDateIgnoresCancelledAndOtherDays(t *testing.T) {
	booked := []domain.Visit{
		{Date: wednesday, Window: domain.WindowMorning, Status: domain.VisitCancelled},
		{Date: wednesday.AddDate(0, 0, 1), Window: domain.WindowMidday, Status: domain.VisitScheduled},
		{Date: wednesday, Window: domain.WindowAfternoon, Status: domain.VisitInProgress},
	}
	want := map[domain.TimeWindow]bool{
		domain.WindowMorning:   true,
		domain.WindowMidday:    true,
		domain.WindowAfternoon: false,
	}
	first := ForDate(wednesday, booked)
	for _, w := range first {
		if w.Available != want[w.ID] {
			t.Errorf("%s available = %v, want %v", w.ID, w.Available, want[w.ID])
		}
	}
	second := ForDate(wednesday, booked)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("non-deterministic result at %d", i)
		}
	}
}

func TestValidWindow(t *testing.T) {
	if ValidWindow(wednesday, domain.WindowWeekend) {
		t.Fatal("weekend window offered on a weekday")
	}
	if !ValidWindow(saturday, domain.WindowWeekend) || !ValidWindow(saturday, domain.WindowMorning) {
		t.Fatal("saturday windows missing")
	}
}

func TestSuggestSkipsWeekends(t *testing.T) {
	friday := time.Date(2025, 6, 6, 15, 0, 0, 0, time.UTC)
	got := Suggest(friday, 0)
	if len(got) != DefaultSuggestionCount {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Date != "2025-06-09" || !got[0].Recommended {
		t.Fatalf("first suggestion = %+v, want recommended Monday", got[0])
	}
	for i, s := range got {
		if i > 0 && s.Recommended {
			t.Errorf("suggestion %d also recommended", i)
		}
		if s.Weekday == "Saturday" || s.Weekday == "Sunday" {
			t.Errorf("weekend suggested: %s", s.Date)
		}
	}
}

func newService(t *testing.T) (*Service, *records.Repository[domain.Visit]) {
	t.Helper()
	repo := records.New(memstore.New(), schema.Visits, "visit", nil)
	return NewService(repo), repo
}

func seedVisit(t *testing.T, repo *records.Repository[domain.Visit], customerID string, window domain.TimeWindow) *domain.Visit {
	t.Helper()
	v, err := repo.Create(context.Background(), &domain.Visit{
		CustomerID: customerID,
		Type:       domain.VisitPickup,
		Date:       wednesday,
		Window:     window,
		Status:     domain.VisitScheduled,
		Address:    "1 Main St",
	})
	if err != nil {
		t.Fatalf("seed visit: %v", err)
	}
	return v
}

func TestEnsureOpenConflictsAcrossCustomers(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	seedVisit(t, repo, "recCustomerA", domain.WindowMorning)

	err := svc.EnsureOpen(ctx, wednesday, domain.WindowMorning)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := svc.EnsureOpen(ctx, wednesday, domain.WindowMidday); err != nil {
		t.Fatalf("midday should be open: %v", err)
	}
	if err := svc.EnsureOpen(ctx, wednesday, domain.WindowWeekend); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for weekday weekend window, got %v", err)
	}
}

func TestGetDayAndDoubleBooking(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	a := seedVisit(t, repo, "recCustomerA", domain.WindowMidday)
	b := seedVisit(t, repo, "recCustomerB", domain.WindowMidday)

	day, err := svc.GetDay(ctx, wednesday)
	if err != nil {
		t.Fatalf("GetDay: %v", err)
	}
	if day.FullyBooked || len(day.Windows) != 3 || day.Windows[1].Available {
		t.Fatalf("unexpected day %+v", day)
	}

	ids, err := svc.DetectDoubleBooking(ctx, wednesday, domain.WindowMidday)
	if err != nil {
		t.Fatalf("DetectDoubleBooking: %v", err)
	}
	if len(ids) != 2 || ids[0] != a.ID || ids[1] != b.ID {
		t.Fatalf("ids = %v", ids)
	}
}

func TestLabelAndStartHour(t *testing.T) {
	cases := []struct {
		window domain.TimeWindow
		label  string
		start  int
	}{
		{domain.WindowMorning, "Morning (8-11)", 8},
		{domain.WindowAfternoon, "Afternoon (2-5)", 14},
		{domain.WindowWeekend, "Weekend Premium (9-12)", 9},
		{"evening", "evening", 0},
	}
	for _, tc := range cases {
		if got := Label(tc.window); got != tc.label {
			t.Errorf("Label(%s) = %q, want %q", tc.window, got, tc.label)
		}
		if got := StartHour(tc.window); got != tc.start {
			t.Errorf("StartHour(%s) = %d, want %d", tc.window, got, tc.start)
		}
	}
}
