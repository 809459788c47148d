package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/email"
	"storeroom_backend/internal/events"
	"storeroom_backend/platform/logger"
)

type testNotificationConfig struct {
	opsEmail string
}

func (testNotificationConfig) GetAppBaseURL() string      { return "https://app.example.com/" }
func (c testNotificationConfig) GetOpsAlertEmail() string { return c.opsEmail }

type testSender struct {
	scheduled []email.VisitDetails
	reminders int
	alerts    []string
	err       error
}

func (s *testSender) SendVisitScheduledEmail(_ context.Context, _ string, v email.VisitDetails) error {
	s.scheduled = append(s.scheduled, v)
	return s.err
}

func (s *testSender) SendVisitReminderEmail(context.Context, string, email.VisitDetails) error {
	s.reminders++
	return s.err
}

func (s *testSender) SendOpsAlertEmail(_ context.Context, to, subject, _ string) error {
	s.alerts = append(s.alerts, to+"|"+subject)
	return s.err
}

func TestVisitScheduledSendsEmail(t *testing.T) {
	sender := &testSender{}
	m := New(sender, testNotificationConfig{}, logger.New("development"))

	err := m.Handle(context.Background(), events.VisitScheduled{
		BaseEvent:     events.NewBaseEvent(),
		VisitID:       "recV1",
		CustomerEmail: "ada@example.com",
		CustomerName:  "Ada",
		Type:          domain.VisitPickup,
		Date:          time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
		Window:        domain.WindowMorning,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(sender.scheduled) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.scheduled))
	}
	got := sender.scheduled[0]
	if got.Window != "Morning (8-11)" || got.ManageURL != "https://app.example.com/visits/recV1" || got.Date != "Wednesday, June 4" {
		t.Fatalf("unexpected details %+v", got)
	}
}

func TestVisitScheduledWithoutEmailIsSkipped(t *testing.T) {
	sender := &testSender{}
	m := New(sender, testNotificationConfig{}, logger.New("development"))
	if err := m.Handle(context.Background(), events.VisitScheduled{VisitID: "recV1"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(sender.scheduled) != 0 {
		t.Fatal("email sent without recipient")
	}
}

func TestBillingFailureAlertsOps(t *testing.T) {
	sender := &testSender{}
	m := New(sender, testNotificationConfig{opsEmail: "ops@example.com"}, logger.New("development"))

	err := m.Handle(context.Background(), events.BillingActivationFailed{CustomerID: "recC1", VisitID: "recV1", Reason: "card declined"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(sender.alerts) != 1 || sender.alerts[0] != "ops@example.com|Billing activation failed" {
		t.Fatalf("alerts = %v", sender.alerts)
	}
}

func TestSenderErrorIsReturned(t *testing.T) {
	sender := &testSender{err: errors.New("smtp down")}
	m := New(sender, testNotificationConfig{opsEmail: "ops@example.com"}, logger.New("development"))
	err := m.Handle(context.Background(), events.DoubleBookingDetected{VisitIDs: []string{"a", "b"}, Window: domain.WindowMidday})
	if err == nil {
		t.Fatal("expected error")
	}
}
