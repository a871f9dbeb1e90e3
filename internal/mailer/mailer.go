// Package mailer renders and delivers transactional email.
package mailer

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
)

// ErrNoRecipients is returned when a message has no destination address.
var ErrNoRecipients = errors.New("mailer: no recipients specified")

// Message is a rendered HTML email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns an SMTP sender, or a log-only sender when no SMTP host
// is configured.
func NewSender(cfg config.MailConfig, logger *zap.Logger) Sender {
	if !cfg.Enabled() {
		return NewLogSender(logger)
	}
	return NewSMTPSender(cfg)
}

// LogSender records messages instead of delivering them.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender builds a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the envelope.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	s.logger.Info("mail delivery disabled, message dropped",
		zap.String("to", strings.Join(msg.To, ",")),
		zap.String("subject", msg.Subject))
	return nil
}
