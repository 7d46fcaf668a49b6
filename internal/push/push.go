// Package push abstracts the mobile push and email channels used by the
// notification dispatcher.
package push

import (
	"context"

	"go.uber.org/zap"
)

// Message is one push payload addressed to a set of device tokens.
type Message struct {
	Tokens          []string
	Title           string
	Body            string
	ClickActionLink string
}

// Sender delivers push messages. Implementations wrap FCM in production.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer sends transactional email (OTP codes, account notices).
type Mailer interface {
	SendMail(ctx context.Context, to, subject, body string) error
}

// LogSender logs pushes instead of delivering them. Used when no FCM
// credentials are configured.
type LogSender struct {
	Logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{Logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.Logger.Info("push dispatched",
		zap.Int("devices", len(msg.Tokens)),
		zap.String("title", msg.Title))
	return nil
}

// LogMailer logs mail instead of sending it.
type LogMailer struct {
	Logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{Logger: logger}
}

func (m *LogMailer) SendMail(ctx context.Context, to, subject, body string) error {
	m.Logger.Info("mail dispatched",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}
