package auth_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"hrportal/onboarding-api/db"
	"hrportal/onboarding-api/internal/auth"
	"hrportal/onboarding-api/internal/codes"
	"hrportal/onboarding-api/internal/model"
	"hrportal/onboarding-api/internal/repository"
	"hrportal/onboarding-api/pkg/security"
	"hrportal/onboarding-api/pkg/validators"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testEmail    = "jane@example.com"
	testPhone    = "+250788123456"
	testPassword = "Secret123"
)

type outbox struct {
	mu   sync.Mutex
	sent []auth.Notification
	fail error
}

func (o *outbox) Notify(_ context.Context, n auth.Notification) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fail != nil {
		return o.fail
	}

	o.sent = append(o.sent, n)
	return nil
}

func (o *outbox) last(t *testing.T) auth.Notification {
	t.Helper()

	o.mu.Lock()
	defer o.mu.Unlock()

	require.NotEmpty(t, o.sent, "nothing was sent")
	return o.sent[len(o.sent)-1]
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type env struct {
	conn   *gorm.DB
	store  *repository.GormStore
	mgr    *auth.Manager
	out    *outbox
	clk    *clock
	hasher *security.ArgonHash
}

func fastArgon() *security.ArgonHash {
	return &security.ArgonHash{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func newEnv(t *testing.T, opts auth.Options) *env {
	t.Helper()

	conn, err := db.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"))
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	clk := &clock{t: time.Now()}

	gen, err := security.NewCodeGenerator(8)
	require.NoError(t, err)

	tokens, err := security.NewTokenIssuer("onboarding-test",
		security.TokenConfig{Secret: "access-secret", TTL: 15 * time.Minute},
		security.TokenConfig{Secret: "refresh-secret", TTL: 7 * 24 * time.Hour},
	)
	require.NoError(t, err)
	tokens.WithClock(clk.Now)

	store := repository.NewGormStore(conn)
	out := &outbox{}
	hasher := fastArgon()

	mgr, err := auth.NewManager(store, codes.New(gen, 24*time.Hour).WithClock(clk.Now), hasher, tokens, out, opts)
	require.NoError(t, err)
	mgr.WithClock(clk.Now)

	return &env{
		conn:   conn,
		store:  store,
		mgr:    mgr,
		out:    out,
		clk:    clk,
		hasher: hasher,
	}
}

func defaultOptions() auth.Options {
	return auth.Options{
		ActiveOnRegister: true,
		RotateRefresh:    true,
		PhoneRule:        validators.DefaultPhoneRule,
	}
}

func registerInput() auth.RegisterInput {
	return auth.RegisterInput{
		Email:     testEmail,
		Phone:     testPhone,
		Password:  testPassword,
		FirstName: "Jane",
		LastName:  "Doe",
	}
}

func (e *env) register(t *testing.T) *model.UserView {
	t.Helper()

	v, err := e.mgr.Register(context.Background(), registerInput())
	require.NoError(t, err)

	return v
}

// registerVerified registers the default user and verifies it with the code
// that was sent
func (e *env) registerVerified(t *testing.T) *auth.Session {
	t.Helper()

	e.register(t)

	s, err := e.mgr.Verify(context.Background(), e.out.last(t).Code)
	require.NoError(t, err)

	return s
}

// createStaff inserts a verified and active user with the given role
func (e *env) createStaff(t *testing.T, id, email, phone string, role model.Role) {
	t.Helper()

	hash, err := e.hasher.Hash(testPassword)
	require.NoError(t, err)

	require.NoError(t, e.store.Users().Create(context.Background(), &model.User{
		ID:           id,
		Email:        email,
		PhoneNumber:  phone,
		PasswordHash: hash,
		FirstName:    "Staff",
		LastName:     "Member",
		Role:         role,
		Verified:     true,
		Active:       true,
	}))
}

func (e *env) user(t *testing.T, id string) *model.User {
	t.Helper()

	u, err := e.store.Users().FindByID(context.Background(), id)
	require.NoError(t, err)

	return u
}

func (e *env) codeCount(t *testing.T, userID string) int64 {
	t.Helper()

	var n int64
	require.NoError(t, e.conn.Model(&model.VerificationCode{}).Where("user_id = ?", userID).Count(&n).Error)

	return n
}

var errSMTPDown = errors.New("smtp down")
