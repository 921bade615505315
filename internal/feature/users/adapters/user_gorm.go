// Package adapters provides the gorm repository of the users feature.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"insurance_backend/internal/feature/auth/domain/entity"
	"insurance_backend/internal/feature/users/usecase"
	"insurance_backend/internal/shared/record"
)

type userGorm struct {
	db *gorm.DB
}

var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm creates a new instance of userGorm.
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// FindByID returns ErrUserNotFound when no user matches.
func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// List returns one page of users, newest first.
func (r *userGorm) List(ctx context.Context, page record.Page) ([]entity.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.User{}).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []entity.User
	if err := q.Scopes(page.Scope).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Update saves every column of u.
func (r *userGorm) Update(ctx context.Context, u *entity.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

// SetActive updates is_active only, so a false value is written despite the column default.
func (r *userGorm) SetActive(ctx context.Context, id string, active bool) error {
	res := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}
