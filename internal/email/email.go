package email

import (
	"context"
	"fmt"

	"github.com/avemarin/clinicbook/config"
	"github.com/go-gomail/gomail"
)

type Sender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSender(cfg config.MailConfig) *Sender {
	return &Sender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send delivers one plain-text email. The SMTP dial and send are blocking, so
// the call is bounded by the context deadline: a stuck delivery fails the
// message instead of stalling the worker.
func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send email to %s: %w", to, ctx.Err())
	}
}
