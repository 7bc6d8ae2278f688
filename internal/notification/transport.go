package notification

import (
	"context"
	"errors"
	"net"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/hirelane/job-board/internal/config"
)

// Transport delivers a rendered email.
type Transport interface {
	Send(ctx context.Context, email Email) error
}

// SMTPTransport sends through an SMTP relay.
type SMTPTransport struct {
	cfg config.NotificationConfig
}

// NewSMTPTransport builds a transport for the configured relay.
func NewSMTPTransport(cfg config.NotificationConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

// Send dials the relay and delivers one message.
func (t *SMTPTransport) Send(ctx context.Context, email Email) error {
	msg := mail.NewMsg()
	if err := msg.From(email.From); err != nil {
		return Permanent(err)
	}
	if err := msg.To(email.To); err != nil {
		return Permanent(err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.Body)

	opts := []mail.Option{
		mail.WithPort(t.cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if t.cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.cfg.SMTPUsername),
			mail.WithPassword(t.cfg.SMTPPassword),
		)
	}
	client, err := mail.NewClient(t.cfg.SMTPHost, opts...)
	if err != nil {
		return Permanent(err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// LogTransport writes emails to the log instead of sending them. It stands
// in when no SMTP relay is configured.
type LogTransport struct {
	logger *zap.Logger
}

// NewLogTransport builds a logging transport.
func NewLogTransport(logger *zap.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

// Send logs the email.
func (t *LogTransport) Send(_ context.Context, email Email) error {
	t.logger.Info("email not sent: smtp disabled",
		zap.String("from", email.From),
		zap.String("to", email.To),
		zap.String("subject", email.Subject))
	return nil
}

type classifiedError struct {
	err       error
	transient bool
}

func (e *classifiedError) Error() string { return e.err.Error() }
func (e *classifiedError) Unwrap() error { return e.err }

// Transient marks err as worth one retry.
func Transient(err error) error {
	return &classifiedError{err: err, transient: true}
}

// Permanent marks err as not retryable.
func Permanent(err error) error {
	return &classifiedError{err: err}
}

// IsTransient reports whether a delivery failure may succeed on retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.transient
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var smtpTemp interface{ IsTemp() bool }
	if errors.As(err, &smtpTemp) {
		return smtpTemp.IsTemp()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) {
		return temporary.Temporary()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
