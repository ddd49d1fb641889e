// Package auth orchestrates registration, verification, login, sessions and
// password management of onboarding users. Every state change of a user runs
// in one transaction, codes are delivered only after that transaction
// committed.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hrportal/onboarding-api/internal/codes"
	"hrportal/onboarding-api/internal/model"
	"hrportal/onboarding-api/internal/repository"
	"hrportal/onboarding-api/pkg/security"
	"hrportal/onboarding-api/pkg/validators"

	"go.uber.org/zap"
)

// Attempts of a transaction that lost a race on a unique index
const txAttempts = 3

type Hasher interface {
	Hash(s string) (string, error)
	Compare(s, digest string) bool
}

type Tokens interface {
	IssueAccess(userID, role string) (string, error)
	IssueRefresh(userID, role string) (string, error)
	Verify(token string, kind security.TokenKind) (*security.Claims, error)
}

type Options struct {
	// Accounts start inactive when false and verification activates them
	ActiveOnRegister bool
	// RotateRefresh replaces the refresh token on every refresh. When false
	// a refresh only hands out a new access token.
	RotateRefresh bool
	// RevokeOnPasswordChange logs the user out everywhere when the password
	// is changed or reset
	RevokeOnPasswordChange bool
	PhoneRule              validators.PhoneRule
}

type Manager struct {
	store    repository.Store
	codes    *codes.Store
	hasher   Hasher
	tokens   Tokens
	notifier Notifier
	opts     Options
	now      func() time.Time

	// Compared against when the identifier is unknown so that a missing
	// account takes as long as a wrong password
	dummyDigest string
}

func NewManager(store repository.Store, cs *codes.Store, hasher Hasher, tokens Tokens, notifier Notifier, opts Options) (*Manager, error) {
	if opts.PhoneRule.Prefix == "" {
		opts.PhoneRule = validators.DefaultPhoneRule
	}

	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy digest, %w", err)
	}

	return &Manager{
		store:       store,
		codes:       cs,
		hasher:      hasher,
		tokens:      tokens,
		notifier:    notifier,
		opts:        opts,
		now:         time.Now,
		dummyDigest: dummy,
	}, nil
}

func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Session is what a successful login hands back
type Session struct {
	AccessToken string `json:"accessToken"`
	// RefreshToken is empty when a refresh did not rotate it
	RefreshToken string         `json:"refreshToken,omitempty"`
	User         model.UserView `json:"user"`
}

// Me returns the sanitized view of a user
func (m *Manager) Me(ctx context.Context, userID string) (*model.UserView, error) {
	u, err := m.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, userErr(err)
	}

	v := u.View()
	return &v, nil
}

// issueCode replaces the user's code in its own transaction and then sends it.
// A delivery failure leaves the new code in place.
func (m *Manager) issueCode(ctx context.Context, u *model.User, channel validators.Channel, purpose Purpose) error {
	var code *model.VerificationCode

	err := repository.WithRetry(ctx, m.store, txAttempts, func(tx repository.Store) error {
		var err error
		code, err = m.codes.Issue(ctx, tx, u.ID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to issue code, %w", err)
	}

	return m.dispatch(ctx, u, channel, purpose, code)
}

func (m *Manager) dispatch(ctx context.Context, u *model.User, channel validators.Channel, purpose Purpose, code *model.VerificationCode) error {
	to := u.Email
	if channel == validators.ChannelPhone {
		to = u.PhoneNumber
	}

	err := m.notifier.Notify(ctx, Notification{
		Channel:   channel,
		To:        to,
		Name:      u.FirstName,
		Code:      code.Code,
		Purpose:   purpose,
		ExpiresAt: code.ExpiresAt,
	})
	if err != nil {
		zap.L().Error("Failed to dispatch code",
			zap.Error(err),
			zap.String("user_id", u.ID),
			zap.String("channel", string(channel)),
			zap.String("purpose", string(purpose)),
		)

		return fmt.Errorf("%w, %v", ErrDispatchFailed, err)
	}

	return nil
}

// startSession issues a token pair for u and stores the refresh digest along
// with extra fields. It must run inside tx, it also updates u in place.
func (m *Manager) startSession(ctx context.Context, tx repository.Store, u *model.User, extra map[string]any) (*Session, error) {
	access, err := m.tokens.IssueAccess(u.ID, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token, %w", err)
	}

	refresh, err := m.tokens.IssueRefresh(u.ID, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token, %w", err)
	}

	digest, err := m.hasher.Hash(refresh)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token, %w", err)
	}

	now := m.now()

	fields := map[string]any{
		"refresh_digest": digest,
		"last_login":     now,
	}
	for k, v := range extra {
		fields[k] = v
	}

	if err := tx.Users().Update(ctx, u.ID, fields); err != nil {
		return nil, fmt.Errorf("failed to store session, %w", err)
	}

	u.RefreshDigest = &digest
	u.LastLogin = &now
	if v, ok := extra["verified"].(bool); ok {
		u.Verified = v
	}
	if v, ok := extra["active"].(bool); ok {
		u.Active = v
	}

	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         u.View(),
	}, nil
}

func (m *Manager) parseIdentifier(s string) (validators.Identifier, error) {
	return m.opts.PhoneRule.ParseIdentifier(s)
}

func (m *Manager) findByIdentifier(ctx context.Context, identifier string) (*model.User, validators.Identifier, error) {
	id, err := m.parseIdentifier(identifier)
	if err != nil {
		return nil, id, ErrInvalidIdentifier
	}

	u, err := m.store.Users().FindByIdentifier(ctx, id)
	if err != nil {
		return nil, id, userErr(err)
	}

	return u, id, nil
}

func userErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}

	return fmt.Errorf("failed to load user, %w", err)
}

func weakPassword(err error) error {
	return fmt.Errorf("%w, %v", ErrWeakPassword, err)
}
