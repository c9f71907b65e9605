package mailer

import (
	"context"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host   string
	Port   int
	User   string
	Pass   string
	Sender string
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Port <= 0 {
		cfg.Port = 465
	}

	return &SMTPMailer{cfg: cfg}
}

// Send dials per message; gomail keeps no connection state between sends.
// The context deadline is honored by the protected wrapper, not here, since
// gomail's dialer has no context support.

func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.cfg.Sender)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Pass)

	return d.DialAndSend(gm)
}
