// Package mail delivers notification emails.
//
// The API process normally uses QueueMailer, which only appends the rendered
// email to a Redis stream; the worker process drains the stream and hands
// each email to SESMailer exactly once.
package mail

import (
	"context"

	"go.uber.org/zap"
)

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string

	// Tag names the notification type that produced the email, for logs.
	Tag string
}

// Mailer sends one email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes emails to the log instead of sending them. Used in
// development when no SES region is configured.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log.With(zap.String("component", "mail"))}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.log.Info("email not sent, log mailer in use",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("tag", msg.Tag),
		zap.Int("html_bytes", len(msg.HTML)))
	return nil
}
