// Package adapters provides the gorm repository of the quotes feature.
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"insurance_backend/internal/feature/quotes/domain/entity"
	"insurance_backend/internal/feature/quotes/usecase"
	"insurance_backend/internal/platform/db"
)

type quoteGorm struct {
	db *gorm.DB
}

var _ usecase.QuoteRepository = (*quoteGorm)(nil)

// NewQuoteGorm creates a new instance of quoteGorm.
func NewQuoteGorm(db *gorm.DB) *quoteGorm {
	return &quoteGorm{db: db}
}

// Create inserts a quote. A quote number collision returns ErrDuplicateQuoteNumber.
func (r *quoteGorm) Create(ctx context.Context, q *entity.Quote) error {
	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return usecase.ErrDuplicateQuoteNumber
		}
		return err
	}
	return nil
}

// FindByID returns ErrQuoteNotFound when no quote matches.
func (r *quoteGorm) FindByID(ctx context.Context, id string) (*entity.Quote, error) {
	var q entity.Quote
	if err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrQuoteNotFound
		}
		return nil, err
	}
	return &q, nil
}

// List returns one page of quotes, newest first.
func (r *quoteGorm) List(ctx context.Context, f usecase.Filter) ([]entity.Quote, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Quote{})
	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.VehicleID != "" {
		q = q.Where("vehicle_id = ?", f.VehicleID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []entity.Quote
	if err := q.Scopes(f.Page.Scope).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// TransitionStatus is a compare-and-set on the status column.
func (r *quoteGorm) TransitionStatus(ctx context.Context, id string, from, to entity.Status) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.Quote{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ExpirePending flips pending quotes past their validity to expired and returns the count.
func (r *quoteGorm) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.Quote{}).
		Where("status = ? AND quote_expires_at < ?", entity.StatusPending, now).
		Update("status", entity.StatusExpired)
	return res.RowsAffected, res.Error
}
