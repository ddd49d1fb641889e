package auth

import (
	"context"
	"errors"
	"fmt"

	"hrportal/onboarding-api/internal/model"
	"hrportal/onboarding-api/internal/repository"
	"hrportal/onboarding-api/pkg/security"

	"go.uber.org/zap"
)

// Surface is a login entry point. Each one only lets some roles through.
type Surface string

const (
	SurfaceCandidate Surface = "candidate"
	SurfaceAdmin     Surface = "admin"
)

func (s Surface) allows(r model.Role) bool {
	switch s {
	case SurfaceCandidate:
		return r == model.RoleCandidate
	case SurfaceAdmin:
		return r.Valid() && r != model.RoleCandidate
	}

	return false
}

// Verify consumes the code of an unverified account, marks it verified and
// logs it in, all in one transaction.
func (m *Manager) Verify(ctx context.Context, code string) (*Session, error) {
	var s *Session

	err := m.store.Transaction(ctx, func(tx repository.Store) error {
		c, err := m.codes.Consume(ctx, tx, code)
		if err != nil {
			return err
		}

		u, err := tx.Users().FindByIDForUpdate(ctx, c.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidCode
			}

			return err
		}

		// Codes of verified accounts are reset codes. The rollback leaves the
		// code usable by ResetPassword.
		if u.Verified {
			return ErrAlreadyVerified
		}

		extra := map[string]any{"verified": true}
		if !m.opts.ActiveOnRegister {
			extra["active"] = true
		}

		s, err = m.startSession(ctx, tx, u, extra)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCode), errors.Is(err, ErrCodeExpired), errors.Is(err, ErrAlreadyVerified):
			return nil, err
		}

		return nil, fmt.Errorf("failed to verify user, %w", err)
	}

	zap.L().Info("User verified", zap.String("user_id", s.User.ID))

	return s, nil
}

func (m *Manager) LoginCandidate(ctx context.Context, identifier, password string) (*Session, error) {
	return m.Login(ctx, SurfaceCandidate, identifier, password)
}

func (m *Manager) LoginAdmin(ctx context.Context, identifier, password string) (*Session, error) {
	return m.Login(ctx, SurfaceAdmin, identifier, password)
}

// Login checks, in order, the credentials, the role against the surface, the
// verified flag and the active flag. An unknown identifier and a wrong
// password fail the same way.
func (m *Manager) Login(ctx context.Context, surface Surface, identifier, password string) (*Session, error) {
	id, err := m.parseIdentifier(identifier)
	if err != nil {
		return nil, ErrInvalidIdentifier
	}

	u, err := m.store.Users().FindByIdentifier(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, userErr(err)
		}

		m.hasher.Compare(password, m.dummyDigest)
		return nil, ErrInvalidCredential
	}

	if !m.hasher.Compare(password, u.PasswordHash) {
		return nil, ErrInvalidCredential
	}

	if err := checkLogin(surface, u); err != nil {
		return nil, err
	}

	var s *Session

	err = m.store.Transaction(ctx, func(tx repository.Store) error {
		// Re-read under lock, the account may have changed since the lookup
		locked, err := tx.Users().FindByIDForUpdate(ctx, u.ID)
		if err != nil {
			return err
		}

		if err := checkLogin(surface, locked); err != nil {
			return err
		}

		s, err = m.startSession(ctx, tx, locked, nil)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrInvalidCredential
		case errors.Is(err, ErrForbidden), errors.Is(err, ErrUnverified), errors.Is(err, ErrDormant):
			return nil, err
		}

		return nil, fmt.Errorf("failed to log in, %w", err)
	}

	zap.L().Debug("User logged in", zap.String("user_id", u.ID), zap.String("surface", string(surface)))

	return s, nil
}

func checkLogin(surface Surface, u *model.User) error {
	switch {
	case !surface.allows(u.Role):
		return ErrForbidden
	case !u.Verified:
		return ErrUnverified
	case !u.Active:
		return ErrDormant
	}

	return nil
}

// Refresh exchanges a live refresh token for a new access token. With
// rotation on, the refresh token is replaced as well and the presented one
// stops working.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := m.tokens.Verify(refreshToken, security.RefreshToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	u, err := m.store.Users().FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}

		return nil, userErr(err)
	}

	if u.RefreshDigest == nil || !m.hasher.Compare(refreshToken, *u.RefreshDigest) {
		return nil, ErrUnauthorized
	}

	if !u.Verified || !u.Active {
		return nil, ErrUnauthorized
	}

	access, err := m.tokens.IssueAccess(u.ID, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token, %w", err)
	}

	if !m.opts.RotateRefresh {
		return &Session{AccessToken: access, User: u.View()}, nil
	}

	refresh, err := m.tokens.IssueRefresh(u.ID, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token, %w", err)
	}

	digest, err := m.hasher.Hash(refresh)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token, %w", err)
	}

	// Two refreshes racing with the same token: only one swap matches
	if err := m.store.Users().SwapRefreshDigest(ctx, u.ID, *u.RefreshDigest, &digest); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}

		return nil, fmt.Errorf("failed to rotate refresh token, %w", err)
	}

	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         u.View(),
	}, nil
}

// Logout clears the refresh digest, every refresh token issued so far stops
// working
func (m *Manager) Logout(ctx context.Context, userID string) error {
	err := m.store.Users().Update(ctx, userID, map[string]any{"refresh_digest": nil})
	if err != nil {
		return userErr(err)
	}

	zap.L().Debug("User logged out", zap.String("user_id", userID))

	return nil
}
