package mail

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/podium-events/podium/internal/config"
)

// Sender delivers a single rendered mail.
type Sender interface {
	Send(from string, to []string, subject, body string) error
}

// SMTPSender delivers mail through a relay configured via SMTP_* variables.
type SMTPSender struct {
	addr string
	auth smtp.Auth
}

func NewSMTPSender(conf *config.Config) *SMTPSender {
	var auth smtp.Auth
	if conf.SMTP_USERNAME != "" {
		auth = smtp.PlainAuth("", conf.SMTP_USERNAME, conf.SMTP_PASSWORD, conf.SMTP_HOST)
	}
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", conf.SMTP_HOST, conf.SMTP_PORT),
		auth: auth,
	}
}

func (s *SMTPSender) Send(from string, to []string, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(s.addr, s.auth, from, to, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// LogSender writes mail to the log instead of delivering it, for development
// setups without an SMTP relay.
type LogSender struct{}

func (LogSender) Send(from string, to []string, subject, body string) error {
	slog.Info("Mail delivery (log only)",
		slog.String("from", from),
		slog.Any("to", to),
		slog.String("subject", subject),
		slog.Int("body_bytes", len(body)),
	)
	return nil
}
