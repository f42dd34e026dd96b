package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/erp-ticket-service/internal/config"
)

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	from   string
	dialer *gomail.Dialer
}

// NewSMTPSender builds a sender from mail configuration.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	username := cfg.Username
	if username == "" {
		username = cfg.FromAddress
	}
	return &SMTPSender{
		from:   cfg.FromAddress,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, username, cfg.Password),
	}
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	if msg.CC != "" {
		m.SetHeader("Cc", msg.CC)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.PlainBody)
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogSender only logs messages. It stands in when SMTP is not configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("email notification (smtp disabled)",
		zap.String("to", msg.To),
		zap.String("cc", msg.CC),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// NewSender picks SMTP delivery when configured and the log sender otherwise.
func NewSender(cfg config.MailConfig, logger *zap.Logger) Sender {
	if cfg.Enabled() {
		return NewSMTPSender(cfg)
	}
	logger.Warn("mail credentials not configured; notifications will only be logged")
	return NewLogSender(logger)
}
