package mail

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/edvana/school-platform-auth/internal/core/port"
	"github.com/edvana/school-platform-auth/internal/infra/config"
	"github.com/edvana/school-platform-auth/internal/infra/logger"
)

// SMTPNotifier delivers notifications over SMTP. Delivery failures are
// returned to the caller, which treats them as best-effort.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

// NewSMTPNotifier constructs an SMTP-backed notifier from configuration.
func NewSMTPNotifier(cfg config.SMTPSettings, log *zap.Logger) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp: host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("smtp: from address is required")
	}

	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		log:    log,
	}, nil
}

// Send delivers a single message. The context is honored only up-front; the
// SMTP dial itself uses the dialer's own timeouts.
func (n *SMTPNotifier) Send(ctx context.Context, msg port.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return errors.New("smtp: recipient is required")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	n.log.Debug("notification delivered",
		zap.String("to", logger.MaskEmail(msg.To)),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// LoggingNotifier logs notifications instead of delivering them. Used in
// development and in environments without an SMTP relay.
type LoggingNotifier struct {
	log *zap.Logger
}

// NewLoggingNotifier constructs a notifier that only logs.
func NewLoggingNotifier(log *zap.Logger) *LoggingNotifier {
	return &LoggingNotifier{log: log}
}

// Send logs the notification and reports success.
func (n *LoggingNotifier) Send(_ context.Context, msg port.Notification) error {
	n.log.Info("notification (not delivered, logging notifier active)",
		zap.String("to", logger.MaskEmail(msg.To)),
		zap.String("subject", msg.Subject),
	)
	return nil
}
