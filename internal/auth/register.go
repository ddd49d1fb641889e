package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hrportal/onboarding-api/internal/model"
	"hrportal/onboarding-api/internal/repository"
	"hrportal/onboarding-api/pkg/util"
	"hrportal/onboarding-api/pkg/validators"

	"go.uber.org/zap"
)

type RegisterInput struct {
	Email     string
	Phone     string
	Password  string
	FirstName string
	LastName  string
	// Channel the verification code is sent through, email when empty
	Channel validators.Channel
}

// Register creates a candidate account and sends it a verification code.
// When only the delivery fails the account exists and the returned error
// matches ErrDispatchFailed alongside a non-nil view.
func (m *Manager) Register(ctx context.Context, in RegisterInput) (*model.UserView, error) {
	email, err := m.opts.PhoneRule.ParseEmail(in.Email)
	if err != nil {
		return nil, ErrInvalidIdentifier
	}

	phone, err := m.opts.PhoneRule.ParsePhone(in.Phone)
	if err != nil {
		return nil, ErrInvalidIdentifier
	}

	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return nil, fmt.Errorf("%w, first and last name are required", ErrInvalidInput)
	}

	channel := in.Channel
	if channel == "" {
		channel = validators.ChannelEmail
	}

	if channel != validators.ChannelEmail && channel != validators.ChannelPhone {
		return nil, fmt.Errorf("%w, unknown channel %q", ErrInvalidInput, channel)
	}

	if err := validators.PasswordValidator(in.Password); err != nil {
		return nil, weakPassword(err)
	}

	hash, err := m.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	userID, err := util.NewUserID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID, %w", err)
	}

	u := &model.User{
		ID:           userID,
		Email:        email.Value,
		PhoneNumber:  phone.Value,
		PasswordHash: hash,
		FirstName:    first,
		LastName:     last,
		Role:         model.RoleCandidate,
		Active:       m.opts.ActiveOnRegister,
	}

	var code *model.VerificationCode

	// A concurrent registration with the same email or phone makes Create
	// fail with ErrConflict, the retry then reports ErrAlreadyExists
	err = repository.WithRetry(ctx, m.store, txAttempts, func(tx repository.Store) error {
		exists, err := tx.Users().ExistsByEmailOrPhone(ctx, u.Email, u.PhoneNumber)
		if err != nil {
			return err
		}

		if exists {
			return ErrAlreadyExists
		}

		if err := tx.Users().Create(ctx, u); err != nil {
			return err
		}

		code, err = m.codes.Issue(ctx, tx, u.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, ErrAlreadyExists
		}

		return nil, fmt.Errorf("failed to register user, %w", err)
	}

	zap.L().Info("User registered", zap.String("user_id", u.ID), zap.String("channel", string(channel)))

	v := u.View()
	if err := m.dispatch(ctx, u, channel, PurposeVerify, code); err != nil {
		return &v, err
	}

	return &v, nil
}
