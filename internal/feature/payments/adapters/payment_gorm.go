// Package adapters provides the gorm repository of the payments feature.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"insurance_backend/internal/feature/payments/domain/entity"
	"insurance_backend/internal/feature/payments/usecase"
	"insurance_backend/internal/platform/db"
)

type paymentGorm struct {
	db *gorm.DB
}

var _ usecase.PaymentRepository = (*paymentGorm)(nil)

// NewPaymentGorm creates a new instance of paymentGorm.
func NewPaymentGorm(db *gorm.DB) *paymentGorm {
	return &paymentGorm{db: db}
}

// Create inserts a payment. A transaction id collision returns ErrDuplicateTransactionID.
func (r *paymentGorm) Create(ctx context.Context, p *entity.Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return usecase.ErrDuplicateTransactionID
		}
		return err
	}
	return nil
}

// FindByID returns ErrPaymentNotFound when no payment matches.
func (r *paymentGorm) FindByID(ctx context.Context, id string) (*entity.Payment, error) {
	var p entity.Payment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns one page of payments, newest first.
func (r *paymentGorm) List(ctx context.Context, f usecase.Filter) ([]entity.Payment, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Payment{})
	if f.PayerID != "" {
		q = q.Where("payer_id = ?", f.PayerID)
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
	var items []entity.Payment
	if err := q.Scopes(f.Page.Scope).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpdateFrom writes every column of p, guarded by the status the caller loaded.
func (r *paymentGorm) UpdateFrom(ctx context.Context, p *entity.Payment, from entity.Status) (bool, error) {
	res := r.db.WithContext(ctx).Model(p).
		Where("status = ?", from).
		Select("*").Omit("id", "created_at").
		Updates(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
