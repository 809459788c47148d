// Package availability computes bookable visit windows. One crew serves one
// window, so any non-cancelled visit occupies its (date, window) pair for
// every customer.
package availability

import (
	"time"

	"storeroom_backend/internal/domain"
)

// DefaultSuggestionCount is how many dates Suggest returns when asked for none.
const DefaultSuggestionCount = 10

// Window is a bookable slot on a specific date.
type Window struct {
	ID        domain.TimeWindow `json:"id"`
	Label     string            `json:"label"`
	StartHour int               `json:"startHour"`
	EndHour   int               `json:"endHour"`
	Premium   bool              `json:"premium"`
	Available bool              `json:"available"`
}

// Suggestion is a candidate booking date.
type Suggestion struct {
	Date        string `json:"date"`
	Weekday     string `json:"weekday"`
	Recommended bool   `json:"recommended"`
}

var baseWindows = []Window{
	{ID: domain.WindowMorning, Label: "Morning (8-11)", StartHour: 8, EndHour: 11},
	{ID: domain.WindowMidday, Label: "Midday (11-2)", StartHour: 11, EndHour: 14},
	{ID: domain.WindowAfternoon, Label: "Afternoon (2-5)", StartHour: 14, EndHour: 17},
}

var weekendWindow = Window{ID: domain.WindowWeekend, Label: "Weekend Premium (9-12)", StartHour: 9, EndHour: 12, Premium: true}

// WindowsFor returns the window set offered on date, all marked available.
func WindowsFor(date time.Time) []Window {
	out := make([]Window, 0, len(baseWindows)+1)
	for _, w := range baseWindows {
		w.Available = true
		out = append(out, w)
	}
	if domain.IsWeekend(date) {
		w := weekendWindow
		w.Available = true
		out = append(out, w)
	}
	return out
}

// Label returns the customer-facing name of a window.
func Label(window domain.TimeWindow) string {
	if w, ok := lookup(window); ok {
		return w.Label
	}
	return string(window)
}

// StartHour returns the hour a window opens, or 0 for an unknown window.
func StartHour(window domain.TimeWindow) int {
	w, _ := lookup(window)
	return w.StartHour
}

func lookup(window domain.TimeWindow) (Window, bool) {
	if window == weekendWindow.ID {
		return weekendWindow, true
	}
	for _, w := range baseWindows {
		if w.ID == window {
			return w, true
		}
	}
	return Window{}, false
}

// ValidWindow reports whether window may be booked on date.
func ValidWindow(date time.Time, window domain.TimeWindow) bool {
	for _, w := range WindowsFor(date) {
		if w.ID == window {
			return true
		}
	}
	return false
}

// ForDate marks each of date's windows unavailable when a non-cancelled
// visit on that date already holds it. The full set is always returned.
func ForDate(date time.Time, booked []domain.Visit) []Window {
	taken := make(map[domain.TimeWindow]bool, len(booked))
	day := date.Format(dateLayout)
	for _, v := range booked {
		if v.Status == domain.VisitCancelled || v.Date.Format(dateLayout) != day {
			continue
		}
		taken[v.Window] = true
	}

	windows := WindowsFor(date)
	for i := range windows {
		windows[i].Available = !taken[windows[i].ID]
	}
	return windows
}

// Suggest walks forward from the day after now, skipping weekends, and
// returns count business days. The first is recommended.
func Suggest(now time.Time, count int) []Suggestion {
	if count <= 0 {
		count = DefaultSuggestionCount
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	out := make([]Suggestion, 0, count)
	for len(out) < count {
		day = day.AddDate(0, 0, 1)
		if domain.IsWeekend(day) {
			continue
		}
		out = append(out, Suggestion{
			Date:        day.Format(dateLayout),
			Weekday:     day.Weekday().String(),
			Recommended: len(out) == 0,
		})
	}
	return out
}

const dateLayout = "2006-01-02"
