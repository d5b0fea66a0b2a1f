// Package mailer is the outbound email transport used by the reminder sweep.
package mailer

import (
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(to, subject, text string) error
	Enabled() bool
}

// SMTPMailer sends over plain SMTP, configured from the environment. An
// unconfigured host leaves it disabled, which keeps the reminder scheduler
// from starting at all.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewFromEnv() *SMTPMailer {
	port := 587

	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if parsed, err := strconv.Atoi(portStr); err == nil {
			port = parsed
		}
	}

	from := os.Getenv("SMTP_FROM")

	if from == "" {
		from = os.Getenv("SMTP_USERNAME")
	}

	return &SMTPMailer{
		host:     os.Getenv("SMTP_HOST"),
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     from,
	}
}

func (m *SMTPMailer) Enabled() bool {
	return m.host != "" && m.from != ""
}

func (m *SMTPMailer) Send(to, subject, text string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)

	return dialer.DialAndSend(msg)
}
