package service

import (
	"context"
	"fmt"
	"time"

	"hrportal/onboarding-api/internal/codes"
	"hrportal/onboarding-api/internal/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CleanupCodes deletes every expired verification code once
func CleanupCodes(ctx context.Context, s repository.Store, cs *codes.Store) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	n, err := cs.Purge(ctx, s)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired codes, %w", err)
	}

	return n, nil
}

// CodeCleanup periodically removes expired verification codes. Expired codes
// are never consumed, so this is the only thing that deletes them. Stop the
// returned scheduler on shutdown.
func CodeCleanup(schedule string, s repository.Store, cs *codes.Store) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		n, err := CleanupCodes(context.Background(), s, cs)
		if err != nil {
			zap.L().Error("Code cleanup failed", zap.Error(err))
			return
		}

		if n > 0 {
			zap.L().Debug("Cleaned up expired codes", zap.Int64("deleted", n))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q, %w", schedule, err)
	}

	zap.L().Debug("Code cleanup attached", zap.String("schedule", schedule))

	c.Start()

	return c, nil
}
