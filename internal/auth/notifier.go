package auth

import (
	"context"
	"time"

	"hrportal/onboarding-api/pkg/validators"
)

type Purpose string

const (
	PurposeVerify Purpose = "verify"
	PurposeReset  Purpose = "reset"
)

// Notification is a code on its way to a user through exactly one channel
type Notification struct {
	Channel   validators.Channel `json:"channel"`
	To        string             `json:"to"`
	Name      string             `json:"name"`
	Code      string             `json:"code"`
	Purpose   Purpose            `json:"purpose"`
	ExpiresAt time.Time          `json:"expiresAt"`
}

// Notifier delivers notifications. It is called after the code was committed
// and never inside a transaction.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }
