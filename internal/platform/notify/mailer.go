// Package notify delivers account mails through an HTTP mail relay.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// Message is the JSON document posted to the relay.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer renders account mails and hands them to a Sender.
type Mailer struct {
	sender   Sender
	resetURL string
}

// NewMailer creates a Mailer. resetURL is the front-end page receiving the reset token.
func NewMailer(sender Sender, resetURL string) *Mailer {
	return &Mailer{sender: sender, resetURL: resetURL}
}

// SendPasswordReset sends the password reset link.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, name, token string) error {
	return m.sender.Send(ctx, Message{
		To:      to,
		Subject: "Reset your password",
		Body: fmt.Sprintf("Hello %s,\n\nUse the link below to reset your password. It expires in one hour.\n\n%s\n",
			name, withToken(m.resetURL, token)),
	})
}

// SendEmailVerification sends the email verification token.
func (m *Mailer) SendEmailVerification(ctx context.Context, to, name, token string) error {
	return m.sender.Send(ctx, Message{
		To:      to,
		Subject: "Verify your email address",
		Body:    fmt.Sprintf("Hello %s,\n\nYour verification token is:\n\n%s\n", name, token),
	})
}

func withToken(base, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// WebhookSender posts messages as JSON to a relay endpoint.
type WebhookSender struct {
	client   *http.Client
	endpoint string
}

// NewWebhookSender creates a WebhookSender using client for delivery.
func NewWebhookSender(client *http.Client, endpoint string) *WebhookSender {
	return &WebhookSender{client: client, endpoint: endpoint}
}

// Send posts msg as JSON to the webhook.
func (s *WebhookSender) Send(ctx context.Context, msg Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal mail: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail relay returned status %d", resp.StatusCode)
	}
	return nil
}

// LogSender writes mails to the log instead of delivering them.
type LogSender struct{}

// Send writes msg to the log.
func (LogSender) Send(ctx context.Context, msg Message) error {
	slog.InfoContext(ctx, "mail not sent, no relay configured", "to", msg.To, "subject", msg.Subject)
	return nil
}
