package service

import (
	"context"

	"hrportal/onboarding-api/internal/auth"

	"go.uber.org/zap"
)

// LogSender writes notifications to the log instead of delivering them. It is
// used for channels that have no transport configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, n auth.Notification) error {
	zap.L().Warn("No transport configured, logging code instead of sending it",
		zap.String("channel", string(n.Channel)),
		zap.String("to", n.To),
		zap.String("purpose", string(n.Purpose)),
		zap.String("code", n.Code),
		zap.Time("expires_at", n.ExpiresAt),
	)

	return nil
}
