// Package seed bootstraps data the service needs before anyone can log in
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hrportal/onboarding-api/config"
	"hrportal/onboarding-api/internal/model"
	"hrportal/onboarding-api/internal/repository"
	"hrportal/onboarding-api/pkg/util"
	"hrportal/onboarding-api/pkg/validators"

	"go.uber.org/zap"
)

var ErrAdminConfig = errors.New("invalid admin configuration")

type Hasher interface {
	Hash(s string) (string, error)
}

// Admin creates the bootstrap administrator described by c unless a user
// with its email or phone already exists. It reports whether a user was
// created. Running it again is a no-op.
func Admin(ctx context.Context, s repository.Store, h Hasher, rule validators.PhoneRule, c config.AdminConfig) (bool, error) {
	email, err := rule.ParseEmail(c.Email)
	if err != nil {
		return false, fmt.Errorf("%w, admin.email, %v", ErrAdminConfig, err)
	}

	phone, err := rule.ParsePhone(c.Phone)
	if err != nil {
		return false, fmt.Errorf("%w, admin.phone, %v", ErrAdminConfig, err)
	}

	if err := validators.PasswordValidator(c.Password); err != nil {
		return false, fmt.Errorf("%w, admin.password, %v", ErrAdminConfig, err)
	}

	hash, err := h.Hash(c.Password)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password, %w", err)
	}

	id, err := util.NewUserID()
	if err != nil {
		return false, fmt.Errorf("failed to generate admin ID, %w", err)
	}

	first := strings.TrimSpace(c.FirstName)
	if first == "" {
		first = "Admin"
	}

	var created bool

	err = repository.WithRetry(ctx, s, 3, func(tx repository.Store) error {
		created = false

		exists, err := tx.Users().ExistsByEmailOrPhone(ctx, email.Value, phone.Value)
		if err != nil {
			return err
		}

		if exists {
			return nil
		}

		err = tx.Users().Create(ctx, &model.User{
			ID:           id,
			Email:        email.Value,
			PhoneNumber:  phone.Value,
			PasswordHash: hash,
			FirstName:    first,
			LastName:     strings.TrimSpace(c.LastName),
			Role:         model.RoleAdmin,
			Verified:     true,
			Active:       true,
		})
		if err != nil {
			return err
		}

		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed admin, %w", err)
	}

	if created {
		zap.L().Info("Admin account created", zap.String("user_id", id), zap.String("email", email.Value))
	} else {
		zap.L().Debug("Admin account already exists", zap.String("email", email.Value))
	}

	return created, nil
}
