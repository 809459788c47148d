package email

import (
	"context"
	"fmt"
	"net"
	"time"

	"storeroom_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSender returns an SMTP sender, or a NoopSender when email is disabled.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() || cfg.GetSMTPHost() == "" {
		return NoopSender{}
	}
	return NewSMTPSender(cfg.GetSMTPHost(), cfg.GetSMTPPort(), cfg.GetSMTPUsername(), cfg.GetSMTPPassword(), cfg.GetEmailFromAddress(), cfg.GetEmailFromName())
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendVisitScheduledEmail(ctx context.Context, toEmail string, visit VisitDetails) error {
	content, err := renderEmailTemplate("visit_scheduled.html", newVisitEmailData("Your visit is booked", visit))
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectVisitScheduledFmt, visit.VisitType, visit.Date), content)
}

func (s *SMTPSender) SendVisitReminderEmail(ctx context.Context, toEmail string, visit VisitDetails) error {
	content, err := renderEmailTemplate("visit_reminder.html", newVisitEmailData("See you tomorrow", visit))
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectVisitReminderFmt, visit.VisitType), content)
}

func (s *SMTPSender) SendOpsAlertEmail(ctx context.Context, toEmail, subject, message string) error {
	content, err := renderEmailTemplate("ops_alert.html", opsAlertEmailData{
		baseEmailData: baseEmailData{Title: subject, Heading: subject},
		Message:       message,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectOpsAlertFmt, subject), content)
}
