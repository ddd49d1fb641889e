package service

import (
	"context"
	"fmt"

	"hrportal/onboarding-api/config"
	"hrportal/onboarding-api/internal/auth"
	"hrportal/onboarding-api/pkg/validators"
)

// Dispatcher routes a notification to the sender of its channel
type Dispatcher struct {
	Email Sender
	Phone Sender
}

// NewDispatcher picks SMTP and the SMS gateway when they are configured and
// falls back to LogSender otherwise
func NewDispatcher(c *config.Config) *Dispatcher {
	d := &Dispatcher{
		Email: LogSender{},
		Phone: LogSender{},
	}

	if c.Mail.Host != "" {
		d.Email = NewMailer(c.Mail)
	}

	if c.SMS.URL != "" {
		d.Phone = NewSMSGateway(c.SMS)
	}

	return d
}

func (d *Dispatcher) Notify(ctx context.Context, n auth.Notification) error {
	switch n.Channel {
	case validators.ChannelEmail:
		return d.Email.Send(ctx, n)
	case validators.ChannelPhone:
		return d.Phone.Send(ctx, n)
	}

	return fmt.Errorf("unknown channel %q", n.Channel)
}
