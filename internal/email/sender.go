package email

import (
	"context"
)

// VisitDetails is what customer-facing visit emails show.
type VisitDetails struct {
	CustomerName string
	VisitType    string
	Date         string
	Window       string
	Address      string
	ItemCount    int
	PriceCents   int64
	ManageURL    string
}

type Sender interface {
	SendVisitScheduledEmail(ctx context.Context, toEmail string, visit VisitDetails) error
	SendVisitReminderEmail(ctx context.Context, toEmail string, visit VisitDetails) error
	SendOpsAlertEmail(ctx context.Context, toEmail, subject, message string) error
}

type NoopSender struct{}

func (NoopSender) SendVisitScheduledEmail(ctx context.Context, toEmail string, visit VisitDetails) error {
	return nil
}

func (NoopSender) SendVisitReminderEmail(ctx context.Context, toEmail string, visit VisitDetails) error {
	return nil
}

func (NoopSender) SendOpsAlertEmail(ctx context.Context, toEmail, subject, message string) error {
	return nil
}
