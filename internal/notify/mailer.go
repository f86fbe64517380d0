package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mindmirror-server/internal/config"
)

// MailerNotifier posts messages to an HTTP mail relay.
type MailerNotifier struct {
	transportURL string
	token        string
	from         string
	httpClient   *http.Client
}

// NewMailerNotifier creates a notifier that delivers through the relay named
// by cfg.Transport.
func NewMailerNotifier(cfg config.MailerConfig) *MailerNotifier {
	return &MailerNotifier{
		transportURL: cfg.Transport,
		token:        cfg.Token,
		from:         cfg.DefaultFrom,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type mailMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Send delivers one message. Non-2xx relay responses are returned as errors
// with the relay's body included for the log.
func (m *MailerNotifier) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(mailMessage{
		From:    m.from,
		To:      to,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.transportURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.token != "" {
		req.Header.Set("Authorization", "Bearer "+m.token)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mailer relay error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return nil
}
