// Package notify delivers patient-facing messages for the scheduling
// workflows. Delivery is fire-and-forget from the caller's point of view: a
// failed send is logged and never fails the enclosing operation.
package notify

import (
	"context"
	"log"

	"mindmirror-server/internal/config"
)

// Notifier sends a message to a single recipient address.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogNotifier writes notifications to the process log. It is the fallback
// when no mailer transport is configured.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, to, subject, body string) error {
	log.Printf("notify %s: %s: %s", to, subject, body)
	return nil
}

// FromConfig picks the notifier implied by the mailer configuration.
func FromConfig(cfg config.MailerConfig) Notifier {
	if cfg.Transport == "" {
		return LogNotifier{}
	}
	return NewMailerNotifier(cfg)
}
