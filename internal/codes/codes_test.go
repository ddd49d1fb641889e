package codes_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hrportal/onboarding-api/db"
	"hrportal/onboarding-api/internal/codes"
	"hrportal/onboarding-api/internal/model"
	"hrportal/onboarding-api/internal/repository"
	"hrportal/onboarding-api/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func setup(t *testing.T) (*repository.GormStore, *codes.Store, *clock) {
	t.Helper()

	conn, err := db.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"))
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	s := repository.NewGormStore(conn)
	require.NoError(t, s.Users().Create(context.Background(), &model.User{
		ID:           "u1",
		Email:        "a@example.com",
		PhoneNumber:  "+250788000001",
		PasswordHash: "hash",
		Role:         model.RoleCandidate,
	}))

	gen, err := security.NewCodeGenerator(8)
	require.NoError(t, err)

	clk := &clock{t: time.Now()}
	return s, codes.New(gen, time.Hour).WithClock(clk.Now), clk
}

func issue(t *testing.T, s repository.Store, cs *codes.Store, userID string) *model.VerificationCode {
	t.Helper()

	var c *model.VerificationCode
	err := repository.WithRetry(context.Background(), s, 3, func(tx repository.Store) error {
		var err error
		c, err = cs.Issue(context.Background(), tx, userID)
		return err
	})
	require.NoError(t, err)

	return c
}

func consume(s repository.Store, cs *codes.Store, code string) (*model.VerificationCode, error) {
	var c *model.VerificationCode
	err := s.Transaction(context.Background(), func(tx repository.Store) error {
		var err error
		c, err = cs.Consume(context.Background(), tx, code)
		return err
	})

	return c, err
}

func TestIssueReplacesPreviousCode(t *testing.T) {
	s, cs, clk := setup(t)

	first := issue(t, s, cs, "u1")
	assert.Len(t, first.Code, 8)
	assert.WithinDuration(t, clk.t.Add(time.Hour), first.ExpiresAt, time.Second)

	second := issue(t, s, cs, "u1")
	assert.NotEqual(t, first.Code, second.Code)

	stored, err := s.Codes().FindByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, second.Code, stored.Code)

	_, err = consume(s, cs, first.Code)
	assert.ErrorIs(t, err, codes.ErrInvalidCode)
}

func TestIssueUnknownUser(t *testing.T) {
	s, cs, _ := setup(t)

	err := s.Transaction(context.Background(), func(tx repository.Store) error {
		_, err := cs.Issue(context.Background(), tx, "missing")
		return err
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConsumeOnce(t *testing.T) {
	s, cs, _ := setup(t)

	c := issue(t, s, cs, "u1")

	got, err := consume(s, cs, c.Code)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	_, err = consume(s, cs, c.Code)
	assert.ErrorIs(t, err, codes.ErrInvalidCode)

	_, err = s.Codes().FindByUser(context.Background(), "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConsumeNormalizesInput(t *testing.T) {
	s, cs, _ := setup(t)

	c := issue(t, s, cs, "u1")

	got, err := consume(s, cs, "  "+strings.ToLower(c.Code)+" ")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
}

func TestConsumeExpiredLeavesCode(t *testing.T) {
	s, cs, clk := setup(t)

	c := issue(t, s, cs, "u1")

	// Valid strictly before the expiry only
	clk.t = c.ExpiresAt
	_, err := consume(s, cs, c.Code)
	assert.ErrorIs(t, err, codes.ErrCodeExpired)

	_, err = s.Codes().FindByCode(context.Background(), c.Code)
	assert.NoError(t, err)

	n, err := cs.Purge(context.Background(), s)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = consume(s, cs, c.Code)
	assert.ErrorIs(t, err, codes.ErrInvalidCode)
}

func TestConsumeUnknownAndEmpty(t *testing.T) {
	s, cs, _ := setup(t)

	_, err := consume(s, cs, "ZZZZZZZZ")
	assert.ErrorIs(t, err, codes.ErrInvalidCode)

	_, err = consume(s, cs, "   ")
	assert.ErrorIs(t, err, codes.ErrInvalidCode)
}
