// Package adapters provides the gorm repository of the policies feature.
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"insurance_backend/internal/feature/policies/domain/entity"
	"insurance_backend/internal/feature/policies/usecase"
	"insurance_backend/internal/platform/db"
)

type policyGorm struct {
	db *gorm.DB
}

var _ usecase.PolicyRepository = (*policyGorm)(nil)

// NewPolicyGorm creates a new instance of policyGorm.
func NewPolicyGorm(db *gorm.DB) *policyGorm {
	return &policyGorm{db: db}
}

// Create inserts a policy. A policy number collision returns ErrDuplicatePolicyNumber.
func (r *policyGorm) Create(ctx context.Context, p *entity.Policy) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return usecase.ErrDuplicatePolicyNumber
		}
		return err
	}
	return nil
}

// FindByID returns ErrPolicyNotFound when no policy matches.
func (r *policyGorm) FindByID(ctx context.Context, id string) (*entity.Policy, error) {
	var p entity.Policy
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrPolicyNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns one page of policies, newest first.
func (r *policyGorm) List(ctx context.Context, f usecase.Filter) ([]entity.Policy, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Policy{})
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
	var items []entity.Policy
	if err := q.Scopes(f.Page.Scope).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Modify loads the policy under a row lock, applies mutate and saves the result in one
// transaction. An error from mutate rolls back and is returned unchanged.
func (r *policyGorm) Modify(ctx context.Context, id string, mutate func(*entity.Policy) error) (*entity.Policy, error) {
	var p entity.Policy
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usecase.ErrPolicyNotFound
		}
		if err != nil {
			return err
		}
		if err := mutate(&p); err != nil {
			return err
		}
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ExistsFrom ignores cancelled policies.
func (r *policyGorm) ExistsFrom(ctx context.Context, vehicleID string, effective time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Policy{}).
		Where("vehicle_id = ? AND effective_date = ? AND status <> ?", vehicleID, effective, entity.StatusCancelled).
		Count(&n).Error
	return n > 0, err
}

// ActivateDue activates pending policies whose term has started.
func (r *policyGorm) ActivateDue(ctx context.Context, now time.Time) ([]string, error) {
	return r.transition(ctx, entity.StatusActive, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ? AND effective_date <= ? AND expiration_date >= ?", entity.StatusPending, now, now)
	})
}

// ExpireLapsed expires every non-terminal policy past its expiration date.
func (r *policyGorm) ExpireLapsed(ctx context.Context, now time.Time) ([]string, error) {
	return r.transition(ctx, entity.StatusExpired, func(q *gorm.DB) *gorm.DB {
		return q.Where("status IN ? AND expiration_date < ?", []entity.Status{entity.StatusPending, entity.StatusActive, entity.StatusSuspended}, now)
	})
}

// transition moves every row matched by scope to status and returns the affected ids.
func (r *policyGorm) transition(ctx context.Context, status entity.Status, scope func(*gorm.DB) *gorm.DB) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Policy{}).Scopes(scope).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&entity.Policy{}).Where("id IN ?", ids).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
