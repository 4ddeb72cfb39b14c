// Package mail delivers transactional email (verification and password reset links).
package mail

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"socialhub/internal/middleware"
	"socialhub/internal/observability"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const deliveryTimeout = 30 * time.Second

// Message is a single outbound email.
type Message struct {
	Kind    string // metric label, e.g. "verification"
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender hands a message to a transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig configures SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers mail over SMTP with gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender returns an SMTPSender for cfg.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send dials the SMTP server and sends msg. gomail has no context support,
// so cancellation stops the wait, not the underlying dial.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else {
		m.SetBody("text/html", msg.HTML)
	}

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", msg.To, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogSender writes messages to the log instead of sending them. It is used
// when no SMTP host is configured.
type LogSender struct{}

// Send logs msg at info level.
func (LogSender) Send(ctx context.Context, msg Message) error {
	middleware.LoggerFromContext(ctx).Info("mail not sent, no SMTP transport configured",
		zap.String("kind", msg.Kind),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)
	return nil
}

// Dispatcher sends messages in the background. Delivery failures are logged
// and counted; they never reach the caller.
type Dispatcher struct {
	sender Sender
	wg     sync.WaitGroup
}

// NewDispatcher returns a Dispatcher delivering through sender.
func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// Dispatch queues msg for delivery and returns immediately.
func (d *Dispatcher) Dispatch(msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()

		if err := d.sender.Send(ctx, msg); err != nil {
			observability.MailDeliveries.WithLabelValues(msg.Kind, "failed").Inc()
			middleware.Logger.Error("mail delivery failed",
				zap.String("kind", msg.Kind),
				zap.String("to", msg.To),
				zap.Error(err),
			)
			return
		}
		observability.MailDeliveries.WithLabelValues(msg.Kind, "sent").Inc()
	}()
}

// Wait blocks until every dispatched message has been attempted.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// VerificationMessage builds the account verification email.
func VerificationMessage(to, link string) Message {
	return Message{
		Kind:    "verification",
		To:      to,
		Subject: "Verify your account.",
		HTML:    fmt.Sprintf(`To verify, click <a href="%s">here</a>`, html.EscapeString(link)),
		Text:    "To verify your account, open " + link,
	}
}

// PasswordResetMessage builds the password reset email.
func PasswordResetMessage(to, link string, ttl time.Duration) Message {
	return Message{
		Kind:    "password_reset",
		To:      to,
		Subject: "Reset your password.",
		HTML: fmt.Sprintf(`To reset your password, click <a href="%s">here</a>. The link expires in %d minutes.`,
			html.EscapeString(link), int(ttl.Minutes())),
		Text: fmt.Sprintf("To reset your password, open %s (expires in %d minutes)", link, int(ttl.Minutes())),
	}
}
