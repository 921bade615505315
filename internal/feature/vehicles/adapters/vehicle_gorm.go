// Package adapters provides the gorm repository of the vehicles feature.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"insurance_backend/internal/feature/vehicles/domain/entity"
	"insurance_backend/internal/feature/vehicles/usecase"
	"insurance_backend/internal/platform/db"
)

type vehicleGorm struct {
	db *gorm.DB
}

var _ usecase.VehicleRepository = (*vehicleGorm)(nil)

// NewVehicleGorm creates a new instance of vehicleGorm.
func NewVehicleGorm(db *gorm.DB) *vehicleGorm {
	return &vehicleGorm{db: db}
}

// Create inserts a vehicle. A duplicate VIN yields usecase.ErrDuplicateVIN.
func (r *vehicleGorm) Create(ctx context.Context, v *entity.Vehicle) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return usecase.ErrDuplicateVIN
		}
		return err
	}
	return nil
}

// FindByID returns ErrVehicleNotFound when no vehicle matches.
func (r *vehicleGorm) FindByID(ctx context.Context, id string) (*entity.Vehicle, error) {
	var v entity.Vehicle
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrVehicleNotFound
		}
		return nil, err
	}
	return &v, nil
}

// List returns one page of active vehicles, newest first.
func (r *vehicleGorm) List(ctx context.Context, f usecase.Filter) ([]entity.Vehicle, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Vehicle{}).Where("is_active = ?", true)
	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []entity.Vehicle
	if err := q.Scopes(f.Page.Scope).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update saves every column of v. A VIN collision returns ErrDuplicateVIN.
func (r *vehicleGorm) Update(ctx context.Context, v *entity.Vehicle) error {
	if err := r.db.WithContext(ctx).Save(v).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return usecase.ErrDuplicateVIN
		}
		return err
	}
	return nil
}

// Deactivate soft deletes a vehicle by clearing its active flag.
func (r *vehicleGorm) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&entity.Vehicle{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrVehicleNotFound
	}
	return nil
}
