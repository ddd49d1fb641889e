// Package codes keeps the single outstanding verification code of every user.
// The same code proves control of an identifier both when a new account is
// verified and when a forgotten password is reset.
package codes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hrportal/onboarding-api/internal/model"
	"hrportal/onboarding-api/internal/repository"
)

var (
	ErrInvalidCode = errors.New("invalid verification code")
	ErrCodeExpired = errors.New("verification code expired")
)

type Generator interface {
	Generate() (string, error)
}

type Store struct {
	gen Generator
	ttl time.Duration
	now func() time.Time
}

func New(gen Generator, ttl time.Duration) *Store {
	return &Store{
		gen: gen,
		ttl: ttl,
		now: time.Now,
	}
}

func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) TTL() time.Duration { return s.ttl }

// Issue replaces whatever code the user had with a fresh one. It must run
// inside tx: the user row is locked first so concurrent issuers for the same
// user serialize, and the unique index on user_id turns any race that slips
// through into repository.ErrConflict, which repository.WithRetry resolves.
func (s *Store) Issue(ctx context.Context, tx repository.Store, userID string) (*model.VerificationCode, error) {
	if _, err := tx.Users().FindByIDForUpdate(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to lock user, %w", err)
	}

	if _, err := tx.Codes().DeleteByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to delete previous code, %w", err)
	}

	value, err := s.gen.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code, %w", err)
	}

	c := &model.VerificationCode{
		Code:      value,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
	}

	if err := tx.Codes().Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to store code, %w", err)
	}

	return c, nil
}

// Consume deletes the code and returns it, so the caller knows which user it
// belonged to. Expired codes are left in place and removed by Purge.
func (s *Store) Consume(ctx context.Context, tx repository.Store, code string) (*model.VerificationCode, error) {
	code = Normalize(code)
	if code == "" {
		return nil, ErrInvalidCode
	}

	c, err := tx.Codes().FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCode
		}

		return nil, fmt.Errorf("failed to look up code, %w", err)
	}

	if !c.Valid(s.now()) {
		return nil, ErrCodeExpired
	}

	if err := tx.Codes().Delete(ctx, c.ID); err != nil {
		// Someone else consumed it first
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCode
		}

		return nil, fmt.Errorf("failed to delete code, %w", err)
	}

	return c, nil
}

// Purge removes every code that expired before now
func (s *Store) Purge(ctx context.Context, store repository.Store) (int64, error) {
	return store.Codes().DeleteExpired(ctx, s.now())
}

// Normalize makes codes typed by hand comparable to the stored ones
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
