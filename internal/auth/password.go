package auth

import (
	"context"
	"errors"
	"fmt"

	"hrportal/onboarding-api/internal/repository"
	"hrportal/onboarding-api/pkg/validators"

	"go.uber.org/zap"
)

// ChangePassword replaces the password of a logged in user. Sessions survive
// unless RevokeOnPasswordChange is set.
func (m *Manager) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := m.store.Users().FindByID(ctx, userID)
	if err != nil {
		return userErr(err)
	}

	if current == next {
		return ErrSamePassword
	}

	if !m.hasher.Compare(current, u.PasswordHash) {
		return ErrInvalidCredential
	}

	if err := validators.PasswordValidator(next); err != nil {
		return weakPassword(err)
	}

	hash, err := m.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	if err := m.store.Users().Update(ctx, u.ID, m.passwordFields(hash)); err != nil {
		return userErr(err)
	}

	zap.L().Info("Password changed", zap.String("user_id", u.ID))

	return nil
}

// ForgotPassword sends a reset code through the channel of the identifier
func (m *Manager) ForgotPassword(ctx context.Context, identifier string) error {
	u, id, err := m.findByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}

	return m.issueCode(ctx, u, id.Channel, PurposeReset)
}

// ResetPassword consumes a code and sets the password of its owner
func (m *Manager) ResetPassword(ctx context.Context, code, password string) error {
	if err := validators.PasswordValidator(password); err != nil {
		return weakPassword(err)
	}

	hash, err := m.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	var userID string

	err = m.store.Transaction(ctx, func(tx repository.Store) error {
		c, err := m.codes.Consume(ctx, tx, code)
		if err != nil {
			return err
		}

		userID = c.UserID

		if err := tx.Users().Update(ctx, c.UserID, m.passwordFields(hash)); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidCode
			}

			return err
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCode) || errors.Is(err, ErrCodeExpired) {
			return err
		}

		return fmt.Errorf("failed to reset password, %w", err)
	}

	zap.L().Info("Password reset", zap.String("user_id", userID))

	return nil
}

// RequestVerification sends a fresh verification code to an account that
// is not verified yet
func (m *Manager) RequestVerification(ctx context.Context, identifier string) error {
	u, id, err := m.findByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}

	if u.Verified {
		return ErrAlreadyVerified
	}

	return m.issueCode(ctx, u, id.Channel, PurposeVerify)
}

func (m *Manager) passwordFields(hash string) map[string]any {
	fields := map[string]any{"password_hash": hash}
	if m.opts.RevokeOnPasswordChange {
		fields["refresh_digest"] = nil
	}

	return fields
}
