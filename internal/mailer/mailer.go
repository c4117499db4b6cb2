package mailer

import (
	"fmt"

	mail "gopkg.in/mail.v2"

	"github.com/Alturino/storefront/internal/config"
)

const FromName = "Storefront"

type Mailer struct {
	dialer *mail.Dialer
	from   string
}

func New(cfg config.Mail) *Mailer {
	return &Mailer{
		dialer: mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *Mailer) Send(subject, body, recipient string) error {
	msg := mail.NewMessage()
	msg.SetAddressHeader("From", m.from, FromName)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed sending mail to=%s with error=%w", recipient, err)
	}
	return nil
}
