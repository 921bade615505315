// Package adapters provides the gorm repository of the claims feature.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"insurance_backend/internal/feature/claims/domain/entity"
	"insurance_backend/internal/feature/claims/usecase"
	"insurance_backend/internal/platform/db"
)

type claimGorm struct {
	db *gorm.DB
}

var _ usecase.ClaimRepository = (*claimGorm)(nil)

// NewClaimGorm creates a new instance of claimGorm.
func NewClaimGorm(db *gorm.DB) *claimGorm {
	return &claimGorm{db: db}
}

// Create inserts a claim. A claim number collision returns ErrDuplicateClaimNumber.
func (r *claimGorm) Create(ctx context.Context, c *entity.Claim) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return usecase.ErrDuplicateClaimNumber
		}
		return err
	}
	return nil
}

// FindByID returns ErrClaimNotFound when no claim matches.
func (r *claimGorm) FindByID(ctx context.Context, id string) (*entity.Claim, error) {
	var c entity.Claim
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrClaimNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns one page of claims, newest first.
func (r *claimGorm) List(ctx context.Context, f usecase.Filter) ([]entity.Claim, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Claim{})
	if f.ClaimantID != "" {
		q = q.Where("claimant_id = ?", f.ClaimantID)
	}
	if f.PolicyID != "" {
		q = q.Where("policy_id = ?", f.PolicyID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []entity.Claim
	if err := q.Scopes(f.Page.Scope).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpdateFrom writes every column of c, guarded by the status the caller loaded.
func (r *claimGorm) UpdateFrom(ctx context.Context, c *entity.Claim, from entity.Status) (bool, error) {
	res := r.db.WithContext(ctx).Model(c).
		Where("status = ?", from).
		Select("*").Omit("id", "created_at").
		Updates(c)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
