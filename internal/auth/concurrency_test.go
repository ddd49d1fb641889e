package auth_test

import (
	"context"
	"sync"
	"testing"

	"hrportal/onboarding-api/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const racers = 10

// race runs fn racers times at once and returns the error of every call
func race(fn func() error) []error {
	errs := make([]error, racers)

	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs[i] = fn()
		}()
	}

	close(start)
	wg.Wait()

	return errs
}

func TestConcurrentRequestVerificationLeavesOneCode(t *testing.T) {
	e := newEnv(t, defaultOptions())
	v := e.register(t)

	errs := race(func() error {
		return e.mgr.RequestVerification(context.Background(), testEmail)
	})

	for _, err := range errs {
		assert.NoError(t, err)
	}

	assert.EqualValues(t, 1, e.codeCount(t, v.ID))

	e.out.mu.Lock()
	assert.Len(t, e.out.sent, racers+1)
	e.out.mu.Unlock()
}

func TestConcurrentRefreshRotatesOnce(t *testing.T) {
	e := newEnv(t, defaultOptions())
	s := e.registerVerified(t)

	var (
		mu      sync.Mutex
		winners []*auth.Session
	)

	errs := race(func() error {
		next, err := e.mgr.Refresh(context.Background(), s.RefreshToken)
		if err != nil {
			return err
		}

		mu.Lock()
		winners = append(winners, next)
		mu.Unlock()

		return nil
	})

	var failed int
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, auth.ErrUnauthorized)
			failed++
		}
	}

	require.Len(t, winners, 1)
	assert.Equal(t, racers-1, failed)

	// Only the token handed to the winner is live
	_, err := e.mgr.Refresh(context.Background(), winners[0].RefreshToken)
	assert.NoError(t, err)
}

func TestConcurrentRegisterCreatesOneUser(t *testing.T) {
	e := newEnv(t, defaultOptions())

	errs := race(func() error {
		_, err := e.mgr.Register(context.Background(), registerInput())
		return err
	})

	var created int
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}

		assert.ErrorIs(t, err, auth.ErrAlreadyExists)
	}

	assert.Equal(t, 1, created)

	var users int64
	require.NoError(t, e.conn.Table("users").Count(&users).Error)
	assert.EqualValues(t, 1, users)

	e.out.mu.Lock()
	assert.Len(t, e.out.sent, 1)
	e.out.mu.Unlock()
}
