package dispatch

import (
	"bytes"
	"fmt"
	"net/smtp"
	"time"

	"github.com/emersion/go-message/mail"
)

// NotifyConfig configures the end-of-run summary email report sends when
// WithNotifyEmail is set. Message construction uses
// github.com/emersion/go-message/mail; delivery uses the stdlib net/smtp
// (see DESIGN.md for why no third-party SMTP client is used).
type NotifyConfig struct {
	// SMTPAddr is "host:port" of the relay to dial.
	SMTPAddr string
	// Auth is optional; nil sends unauthenticated (e.g. a local relay).
	Auth smtp.Auth
	From string
	To   []string
	// Subject defaults to "dispatch run complete".
	Subject string
}

func sendNotification(cfg NotifyConfig, body string) error {
	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Address: cfg.From}})

	to := make([]*mail.Address, 0, len(cfg.To))
	for _, addr := range cfg.To {
		to = append(to, &mail.Address{Address: addr})
	}
	h.SetAddressList("To", to)

	subject := cfg.Subject
	if subject == "" {
		subject = "dispatch run complete"
	}
	h.SetSubject(subject)

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return fmt.Errorf("dispatch: building notification email: %w", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		_ = w.Close()
		return fmt.Errorf("dispatch: writing notification body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("dispatch: closing notification writer: %w", err)
	}

	if err := smtp.SendMail(cfg.SMTPAddr, cfg.Auth, cfg.From, cfg.To, buf.Bytes()); err != nil {
		return fmt.Errorf("dispatch: sending notification email: %w", err)
	}
	return nil
}
