// Package repository contains the persistence layer of users and their
// verification codes. Every repository can be bound to a transaction through
// Store.Transaction.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hrportal/onboarding-api/internal/model"
	"hrportal/onboarding-api/pkg/validators"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record does not exist or a conditional
	// write matched nothing
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a unique constraint
	ErrConflict = errors.New("record already exists")
)

type Users interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	// FindByIDForUpdate also takes a row lock where the database supports it
	FindByIDForUpdate(ctx context.Context, id string) (*model.User, error)
	FindByIdentifier(ctx context.Context, id validators.Identifier) (*model.User, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	// SwapRefreshDigest replaces the refresh digest only if it still equals old
	SwapRefreshDigest(ctx context.Context, id, old string, next *string) error
	Delete(ctx context.Context, id string) error
}

type Codes interface {
	Create(ctx context.Context, c *model.VerificationCode) error
	FindByCode(ctx context.Context, code string) (*model.VerificationCode, error)
	FindByUser(ctx context.Context, userID string) (*model.VerificationCode, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id uint) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type Store interface {
	Users() Users
	Codes() Codes
	// Transaction runs fn with a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// WithRetry runs fn in a transaction and retries the whole transaction when it
// fails with ErrConflict, which is how racing writers on a unique index are
// resolved (last writer wins).
func WithRetry(ctx context.Context, s Store, attempts int, fn func(tx Store) error) error {
	var err error
	for range max(attempts, 1) {
		err = s.Transaction(ctx, fn)
		if !errors.Is(err, ErrConflict) {
			return err
		}
	}

	return err
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() Users { return &gormUsers{db: s.db} }

func (s *GormStore) Codes() Codes { return &gormCodes{db: s.db} }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w, %v", ErrConflict, err)
	}

	return err
}
