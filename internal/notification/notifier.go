package notification

import (
	"NetSentry/internal/config"
	"NetSentry/internal/dispatch"
	"NetSentry/internal/model"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// EmailNotifier implements the Notifier interface for sending emails.
type EmailNotifier struct {
	cfg  config.SMTPConfig
	auth smtp.Auth
}

// NewEmailNotifier creates a new EmailNotifier.
func NewEmailNotifier(cfg config.SMTPConfig) model.Notifier {
	// PlainAuth will not send credentials until the server identifies itself as a trusted one.
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	return &EmailNotifier{cfg: cfg, auth: auth}
}

// Send sends an email to the configured recipients.
func (n *EmailNotifier) Send(subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	recipients := strings.Split(n.cfg.To, ",")

	// Construct the email message.
	msg := []byte("To: " + n.cfg.To + "\r\n" +
		"From: " + n.cfg.From + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body)

	// Send the email.
	err := smtp.SendMail(addr, n.auth, n.cfg.From, recipients, msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// AlertMailer adapts a Notifier into an alert subscriber, emailing one
// message per dispatched alert.
type AlertMailer struct {
	notifier model.Notifier
}

// NewAlertMailer creates a subscriber that forwards alerts to the notifier.
func NewAlertMailer(notifier model.Notifier) *AlertMailer {
	return &AlertMailer{notifier: notifier}
}

// HandleAlert emails the alert. A send failure is logged and swallowed;
// notification is best-effort.
func (m *AlertMailer) HandleAlert(alert *model.Alert) {
	subject := fmt.Sprintf("NetSentry Alert: %s from %s", alert.Kind, alert.SrcIP)
	if err := m.notifier.Send(subject, dispatch.FormatLine(alert)); err != nil {
		log.Printf("ERROR: Failed to send alert notification: %v", err)
	}
}
