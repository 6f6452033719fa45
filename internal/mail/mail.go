// Package mail delivers outbound notification email. Delivery is
// fire-and-forget from the caller's perspective; failures are the
// transport's concern and surface only in logs.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"go-writer-app/internal/config"
)

// Message is a single outbound notice with plain and HTML bodies.
type Message struct {
	Subject    string
	Sender     string
	Recipients []string
	Body       string
	HTML       string
}

// Sender delivers messages.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender delivers messages through a configured SMTP relay.
type SMTPSender struct {
	cfg config.MailConfig
}

// NewSMTPSender creates an SMTPSender.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers one message as multipart/alternative.
func (s *SMTPSender) Send(msg Message) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	sender := msg.Sender
	if sender == "" {
		sender = s.cfg.Sender
	}

	const boundary = "=_writer_notice_boundary"
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", sender)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	if err := smtp.SendMail(addr, auth, sender, msg.Recipients, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
