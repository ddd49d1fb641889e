package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"hrportal/onboarding-api/db"
	"hrportal/onboarding-api/internal/model"
	"hrportal/onboarding-api/internal/repository"
	"hrportal/onboarding-api/pkg/validators"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func newStore(t *testing.T) *repository.GormStore {
	t.Helper()

	conn, err := db.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"))
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return repository.NewGormStore(conn)
}

func newUser(id, email, phone string) *model.User {
	return &model.User{
		ID:           id,
		Email:        email,
		PhoneNumber:  phone,
		PasswordHash: "hash",
		Role:         model.RoleCandidate,
	}
}

func TestUsersCreateAndFind(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, newUser("u1", "a@example.com", "+250788000001")))

	u, err := s.Users().FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
	assert.False(t, u.Verified)
	assert.False(t, u.Active)
	assert.Nil(t, u.RefreshDigest)

	u, err = s.Users().FindByIdentifier(ctx, validators.Identifier{Channel: validators.ChannelPhone, Value: "+250788000001"})
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	u, err = s.Users().FindByIdentifier(ctx, validators.Identifier{Channel: validators.ChannelEmail, Value: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = s.Users().FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUsersUniqueIdentifiers(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, newUser("u1", "a@example.com", "+250788000001")))

	err := s.Users().Create(ctx, newUser("u2", "a@example.com", "+250788000002"))
	assert.ErrorIs(t, err, repository.ErrConflict)

	err = s.Users().Create(ctx, newUser("u3", "b@example.com", "+250788000001"))
	assert.ErrorIs(t, err, repository.ErrConflict)

	exists, err := s.Users().ExistsByEmailOrPhone(ctx, "other@example.com", "+250788000001")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.Users().ExistsByEmailOrPhone(ctx, "other@example.com", "+250788000009")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUsersSoftDeleteFreesIdentifiers(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, newUser("u1", "a@example.com", "+250788000001")))
	require.NoError(t, s.Users().Delete(ctx, "u1"))

	_, err := s.Users().FindByID(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.Users().Create(ctx, newUser("u2", "a@example.com", "+250788000001")))

	assert.ErrorIs(t, s.Users().Delete(ctx, "u1"), repository.ErrNotFound)
}

func TestUsersSwapRefreshDigest(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, newUser("u1", "a@example.com", "+250788000001")))

	first := "digest-1"
	require.NoError(t, s.Users().Update(ctx, "u1", map[string]any{"refresh_digest": first}))

	next := "digest-2"
	require.NoError(t, s.Users().SwapRefreshDigest(ctx, "u1", first, &next))

	// The old digest no longer matches
	assert.ErrorIs(t, s.Users().SwapRefreshDigest(ctx, "u1", first, nil), repository.ErrNotFound)

	require.NoError(t, s.Users().SwapRefreshDigest(ctx, "u1", next, nil))

	u, err := s.Users().FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, u.RefreshDigest)
}

func TestUsersUpdateMissing(t *testing.T) {
	s := newStore(t)

	err := s.Users().Update(context.Background(), "missing", map[string]any{"verified": true})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCodesOnePerUser(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, newUser("u1", "a@example.com", "+250788000001")))

	exp := time.Now().Add(time.Hour)
	require.NoError(t, s.Codes().Create(ctx, &model.VerificationCode{Code: "AAAA2222", UserID: "u1", ExpiresAt: exp}))

	err := s.Codes().Create(ctx, &model.VerificationCode{Code: "BBBB3333", UserID: "u1", ExpiresAt: exp})
	assert.ErrorIs(t, err, repository.ErrConflict)

	n, err := s.Codes().DeleteByUser(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, s.Codes().Create(ctx, &model.VerificationCode{Code: "BBBB3333", UserID: "u1", ExpiresAt: exp}))

	c, err := s.Codes().FindByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "BBBB3333", c.Code)

	c, err = s.Codes().FindByCode(ctx, "BBBB3333")
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)

	_, err = s.Codes().FindByCode(ctx, "AAAA2222")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCodesDeleteOnce(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, newUser("u1", "a@example.com", "+250788000001")))

	c := &model.VerificationCode{Code: "AAAA2222", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.Codes().Create(ctx, c))

	require.NoError(t, s.Codes().Delete(ctx, c.ID))
	assert.ErrorIs(t, s.Codes().Delete(ctx, c.ID), repository.ErrNotFound)
}

func TestCodesDeleteExpired(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Users().Create(ctx, newUser("u1", "a@example.com", "+250788000001")))
	require.NoError(t, s.Users().Create(ctx, newUser("u2", "b@example.com", "+250788000002")))

	require.NoError(t, s.Codes().Create(ctx, &model.VerificationCode{Code: "OLD22222", UserID: "u1", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, s.Codes().Create(ctx, &model.VerificationCode{Code: "NEW22222", UserID: "u2", ExpiresAt: now.Add(time.Hour)}))

	n, err := s.Codes().DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.Codes().FindByCode(ctx, "OLD22222")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = s.Codes().FindByCode(ctx, "NEW22222")
	assert.NoError(t, err)
}

func TestTransactionRollsBack(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, newUser("u1", "a@example.com", "+250788000001")); err != nil {
			return err
		}

		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Users().FindByID(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWithRetryRetriesConflicts(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	attempts := 0
	err := repository.WithRetry(ctx, s, 3, func(tx repository.Store) error {
		attempts++
		if attempts < 3 {
			return repository.ErrConflict
		}

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	attempts = 0
	err = repository.WithRetry(ctx, s, 2, func(tx repository.Store) error {
		attempts++
		return repository.ErrConflict
	})
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Equal(t, 2, attempts)
}
