package auth_test

import (
	"context"
	"encoding/json"
	"testing"

	"hrportal/onboarding-api/internal/auth"
	"hrportal/onboarding-api/internal/model"
	"hrportal/onboarding-api/pkg/validators"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesPendingUserWithOneCode(t *testing.T) {
	e := newEnv(t, defaultOptions())

	v := e.register(t)
	assert.Equal(t, testEmail, v.Email)
	assert.Equal(t, testPhone, v.PhoneNumber)
	assert.Equal(t, model.RoleCandidate, v.Role)
	assert.False(t, v.Verified)
	assert.True(t, v.Active)

	u := e.user(t, v.ID)
	assert.False(t, u.Verified)
	assert.NotEqual(t, testPassword, u.PasswordHash)
	assert.True(t, e.hasher.Compare(testPassword, u.PasswordHash))
	assert.Nil(t, u.RefreshDigest)
	assert.Nil(t, u.LastLogin)

	assert.EqualValues(t, 1, e.codeCount(t, v.ID))

	n := e.out.last(t)
	assert.Equal(t, validators.ChannelEmail, n.Channel)
	assert.Equal(t, testEmail, n.To)
	assert.Equal(t, "Jane", n.Name)
	assert.Equal(t, auth.PurposeVerify, n.Purpose)

	stored, err := e.store.Codes().FindByUser(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.Code, n.Code)
}

func TestRegisterThroughPhone(t *testing.T) {
	e := newEnv(t, defaultOptions())

	in := registerInput()
	in.Channel = validators.ChannelPhone
	in.Phone = "+250 788 123 456"

	v, err := e.mgr.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, testPhone, v.PhoneNumber)

	n := e.out.last(t)
	assert.Equal(t, validators.ChannelPhone, n.Channel)
	assert.Equal(t, testPhone, n.To)
}

func TestRegisterStartsInactive(t *testing.T) {
	opts := defaultOptions()
	opts.ActiveOnRegister = false
	e := newEnv(t, opts)

	v := e.register(t)
	assert.False(t, v.Active)

	s, err := e.mgr.Verify(context.Background(), e.out.last(t).Code)
	require.NoError(t, err)
	assert.True(t, s.User.Verified)
	assert.True(t, s.User.Active)
	assert.True(t, e.user(t, v.ID).Active)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	e := newEnv(t, defaultOptions())
	e.register(t)

	in := registerInput()
	in.Phone = "+250788000000"
	_, err := e.mgr.Register(context.Background(), in)
	assert.ErrorIs(t, err, auth.ErrAlreadyExists)

	in = registerInput()
	in.Email = "other@example.com"
	_, err = e.mgr.Register(context.Background(), in)
	assert.ErrorIs(t, err, auth.ErrAlreadyExists)

	// Case differences don't make a new email
	in = registerInput()
	in.Email = "JANE@example.com"
	in.Phone = "+250788000000"
	_, err = e.mgr.Register(context.Background(), in)
	assert.ErrorIs(t, err, auth.ErrAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t, defaultOptions())

	tests := []struct {
		name string
		edit func(in *auth.RegisterInput)
		want error
	}{
		{"bad email", func(in *auth.RegisterInput) { in.Email = "not-an-email" }, auth.ErrInvalidIdentifier},
		{"phone as email", func(in *auth.RegisterInput) { in.Email = testPhone }, auth.ErrInvalidIdentifier},
		{"bad phone", func(in *auth.RegisterInput) { in.Phone = "12345" }, auth.ErrInvalidIdentifier},
		{"weak password", func(in *auth.RegisterInput) { in.Password = "password" }, auth.ErrWeakPassword},
		{"no first name", func(in *auth.RegisterInput) { in.FirstName = "  " }, auth.ErrInvalidInput},
		{"unknown channel", func(in *auth.RegisterInput) { in.Channel = "pigeon" }, auth.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := registerInput()
			tt.edit(&in)

			_, err := e.mgr.Register(context.Background(), in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var n int64
	require.NoError(t, e.conn.Model(&model.User{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Empty(t, e.out.sent)
}

func TestRegisterDispatchFailureKeepsAccount(t *testing.T) {
	e := newEnv(t, defaultOptions())
	e.out.fail = errSMTPDown

	v, err := e.mgr.Register(context.Background(), registerInput())
	assert.ErrorIs(t, err, auth.ErrDispatchFailed)
	require.NotNil(t, v)

	assert.EqualValues(t, 1, e.codeCount(t, v.ID))

	// The user can ask for another code once delivery works again
	e.out.fail = nil
	require.NoError(t, e.mgr.RequestVerification(context.Background(), testEmail))
	assert.EqualValues(t, 1, e.codeCount(t, v.ID))
}

func TestUserViewHidesSecrets(t *testing.T) {
	e := newEnv(t, defaultOptions())
	s := e.registerVerified(t)

	me, err := e.mgr.Me(context.Background(), s.User.ID)
	require.NoError(t, err)

	for _, v := range []any{me, s, e.user(t, s.User.ID)} {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		assert.NotContains(t, string(b), "argon2id")
		assert.NotContains(t, string(b), "passwordHash")
		assert.NotContains(t, string(b), "refreshDigest")
	}

	_, err = e.mgr.Me(context.Background(), "missing")
	assert.ErrorIs(t, err, auth.ErrNotFound)
}
