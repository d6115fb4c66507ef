package model

// Notifier sends an out-of-band message about an alert, e.g. over SMTP.
// Implementations are best-effort; a failed Send is reported to the
// caller and goes no further.
type Notifier interface {
	Send(subject, body string) error
}
