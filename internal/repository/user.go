package repository

import (
	"context"

	"hrportal/onboarding-api/internal/model"
	"hrportal/onboarding-api/pkg/validators"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormUsers struct {
	db *gorm.DB
}

func (r *gormUsers) Create(ctx context.Context, u *model.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *gormUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&u).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

func (r *gormUsers) FindByIDForUpdate(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&u).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

func (r *gormUsers) FindByIdentifier(ctx context.Context, id validators.Identifier) (*model.User, error) {
	column := "email"
	if id.IsPhone() {
		column = "phone_number"
	}

	var u model.User

	err := r.db.WithContext(ctx).
		Where(column+" = ?", id.Value).
		First(&u).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

func (r *gormUsers) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ? OR phone_number = ?", email, phone).
		Count(&count).
		Error
	if err != nil {
		return false, translate(err)
	}

	return count > 0, nil
}

func (r *gormUsers) Update(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *gormUsers) SwapRefreshDigest(ctx context.Context, id, old string, next *string) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND refresh_digest = ?", id, old).
		Update("refresh_digest", next)
	if res.Error != nil {
		return translate(res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete soft deletes the user, the email and phone become free again
func (r *gormUsers) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.User{})
	if res.Error != nil {
		return translate(res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
