package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hrportal/onboarding-api/config"
	"hrportal/onboarding-api/internal/auth"

	"gopkg.in/gomail.v2"
)

// Sender delivers a notification through one channel
type Sender interface {
	Send(ctx context.Context, n auth.Notification) error
}

// Mailer sends codes over SMTP
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	now    func() time.Time
}

func NewMailer(c config.MailConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(c.Host, c.Port, c.Username, c.Password),
		from:   c.From,
		now:    time.Now,
	}
}

func (m *Mailer) message(n auth.Notification) (*gomail.Message, error) {
	if n.To == m.from {
		return nil, errors.New("invalid email address")
	}

	msg, err := Render(n, m.now())
	if err != nil {
		return nil, err
	}

	g := gomail.NewMessage()
	g.SetHeader("From", m.from)
	g.SetHeader("To", n.To)
	g.SetHeader("Subject", msg.Subject)
	g.SetBody("text/plain", msg.Text)
	g.AddAlternative("text/html", msg.HTML)

	return g, nil
}

func (m *Mailer) Send(ctx context.Context, n auth.Notification) error {
	g, err := m.message(n)
	if err != nil {
		return err
	}

	// gomail has no context support, give up early at least
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := m.dialer.DialAndSend(g); err != nil {
		return fmt.Errorf("failed to send mail, %w", err)
	}

	return nil
}
