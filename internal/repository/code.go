package repository

import (
	"context"
	"time"

	"hrportal/onboarding-api/internal/model"

	"gorm.io/gorm"
)

type gormCodes struct {
	db *gorm.DB
}

func (r *gormCodes) Create(ctx context.Context, c *model.VerificationCode) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *gormCodes) FindByCode(ctx context.Context, code string) (*model.VerificationCode, error) {
	var c model.VerificationCode

	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&c).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &c, nil
}

func (r *gormCodes) FindByUser(ctx context.Context, userID string) (*model.VerificationCode, error) {
	var c model.VerificationCode

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&c).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &c, nil
}

func (r *gormCodes) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.VerificationCode{})

	return res.RowsAffected, translate(res.Error)
}

// Delete returns ErrNotFound when the code was already removed, so two
// concurrent consumers can't both succeed
func (r *gormCodes) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.VerificationCode{})
	if res.Error != nil {
		return translate(res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *gormCodes) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", before).
		Delete(&model.VerificationCode{})

	return res.RowsAffected, translate(res.Error)
}
