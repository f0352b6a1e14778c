// Package mail delivers the weekly digest and invitation messages over SMTP.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/example/band-rehearsal/internal/application"
)

// Config carries the SMTP endpoint and message addressing.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// AppURL is the public base URL linked from the messages.
	AppURL string
}

// SMTPMailer sends application email through one SMTP account. It implements
// application.DigestMailer and application.InvitationMailer.
type SMTPMailer struct {
	cfg    Config
	logger *slog.Logger
}

// NewSMTPMailer constructs a mailer for the given SMTP configuration.
func NewSMTPMailer(cfg Config, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// SendDigest renders the five week report and delivers it to the recipients.
func (m *SMTPMailer) SendDigest(ctx context.Context, recipients []string, entries []application.DigestEntry) error {
	if m == nil {
		return fmt.Errorf("mailer is nil")
	}
	if len(recipients) == 0 {
		return nil
	}

	body, err := renderDigest(m.cfg.AppURL, entries)
	if err != nil {
		return err
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("mail: from address: %w", err)
	}
	if err := msg.To(recipients...); err != nil {
		return fmt.Errorf("mail: recipients: %w", err)
	}
	msg.Subject(digestSubject)
	msg.SetBodyString(gomail.TypeTextHTML, body)

	if err := m.send(ctx, msg); err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "digest email sent", "recipients", len(recipients))
	return nil
}

// SendInvitation delivers the registration link for an invitation token.
func (m *SMTPMailer) SendInvitation(ctx context.Context, email, token string) error {
	if m == nil {
		return fmt.Errorf("mailer is nil")
	}

	html, text, err := renderInvitation(m.cfg.AppURL, token)
	if err != nil {
		return err
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("mail: from address: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("mail: recipient: %w", err)
	}
	msg.Subject(invitationSubject)
	msg.SetBodyString(gomail.TypeTextPlain, text)
	msg.AddAlternativeString(gomail.TypeTextHTML, html)

	if err := m.send(ctx, msg); err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "invitation email sent", "email", email)
	return nil
}

func (m *SMTPMailer) send(ctx context.Context, msg *gomail.Msg) error {
	client, err := gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Username),
		gomail.WithPassword(m.cfg.Password),
		gomail.WithTLSPortPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("mail: client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}
