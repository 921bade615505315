package di

import (
	"log/slog"

	"insurance_backend/internal/platform/config"
	infrahttp "insurance_backend/internal/platform/http"
	"insurance_backend/internal/platform/notify"
)

// NewMailer creates the account mailer. Without MAIL_WEBHOOK_URL mails are only logged.
func NewMailer(cfg config.MailSettings) *notify.Mailer {
	if cfg.WebhookURL == "" {
		slog.Info("mail relay not configured, mails will be logged")
		return notify.NewMailer(notify.LogSender{}, cfg.PasswordResetURL)
	}
	client := infrahttp.NewHTTPClient(cfg.Timeout)
	return notify.NewMailer(notify.NewWebhookSender(client, cfg.WebhookURL), cfg.PasswordResetURL)
}
