package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"insurance_backend/internal/feature/vehicles/domain/entity"
	"insurance_backend/internal/shared/access"
	"insurance_backend/internal/shared/record"
	"insurance_backend/internal/shared/validation"
)

// VehicleRepository is the persistence needed by the vehicles usecase.
type VehicleRepository interface {
	Create(ctx context.Context, v *entity.Vehicle) error
	FindByID(ctx context.Context, id string) (*entity.Vehicle, error)
	List(ctx context.Context, filter Filter) ([]entity.Vehicle, int64, error)
	Update(ctx context.Context, v *entity.Vehicle) error
	Deactivate(ctx context.Context, id string) error
}

// Filter narrows List. An empty OwnerID lists every owner.
type Filter struct {
	OwnerID string
	Page    record.Page
}

// Details carries the descriptive vehicle fields shared by create and update.
// Nil pointers mean "not provided".
type Details struct {
	Make               *string
	Model              *string
	Year               *int
	Trim               *string
	BodyStyle          *string
	EngineType         *string
	Transmission       *string
	FuelType           *string
	Mileage            *int
	Color              *string
	LicensePlate       *string
	RegistrationState  *string
	PurchasePrice      *decimal.Decimal
	CurrentValue       *decimal.Decimal
	PurchaseDate       *time.Time
	Usage              *entity.Usage
	AnnualMileage      *int
	HasAntiTheftDevice *bool
	HasAirbags         *bool
	HasABS             *bool
	ParkingLocation    *entity.ParkingLocation
}

// CreateInput registers a vehicle. OwnerID is honoured for staff only.
type CreateInput struct {
	VIN     string
	OwnerID string
	Details
}

type vehiclesUsecase struct {
	repo VehicleRepository
	now  func() time.Time
}

// NewVehiclesUsecase creates a new vehiclesUsecase instance.
func NewVehiclesUsecase(repo VehicleRepository) *vehiclesUsecase {
	return &vehiclesUsecase{repo: repo, now: time.Now}
}

// Create registers a vehicle for the actor (or, for staff, for OwnerID).
func (u *vehiclesUsecase) Create(ctx context.Context, actor access.Actor, in CreateInput) (*entity.Vehicle, error) {
	vin := strings.ToUpper(strings.TrimSpace(in.VIN))
	if !validation.IsVIN(vin) {
		return nil, ErrInvalidVIN
	}

	owner := actor.UserID
	if actor.IsStaff() && in.OwnerID != "" {
		owner = in.OwnerID
	}

	v := &entity.Vehicle{
		VIN:             vin,
		OwnerID:         owner,
		Usage:           entity.UsagePersonal,
		ParkingLocation: entity.ParkingDriveway,
		AnnualMileage:   12000,
		IsActive:        true,
	}
	if err := u.apply(v, in.Details); err != nil {
		return nil, err
	}
	if !entity.ValidYear(v.Year, u.now()) {
		return nil, ErrInvalidYear
	}
	if err := u.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Get returns a vehicle visible to the actor.
func (u *vehiclesUsecase) Get(ctx context.Context, actor access.Actor, id string) (*entity.Vehicle, error) {
	v, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(v.OwnerID) {
		return nil, ErrVehicleNotFound
	}
	return v, nil
}

// List returns active vehicles. Customers only ever see their own.
func (u *vehiclesUsecase) List(ctx context.Context, actor access.Actor, filter Filter) (record.List[entity.Vehicle], error) {
	if !actor.IsStaff() {
		filter.OwnerID = actor.UserID
	}
	items, total, err := u.repo.List(ctx, filter)
	if err != nil {
		return record.List[entity.Vehicle]{}, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return record.NewList(items, total, filter.Page), nil
}

// Update applies a partial update.
func (u *vehiclesUsecase) Update(ctx context.Context, actor access.Actor, id string, d Details) (*entity.Vehicle, error) {
	v, err := u.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := u.apply(v, d); err != nil {
		return nil, err
	}
	if err := u.repo.Update(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}
	return v, nil
}

// Delete deactivates the vehicle; rows are kept for policy history.
func (u *vehiclesUsecase) Delete(ctx context.Context, actor access.Actor, id string) error {
	if _, err := u.Get(ctx, actor, id); err != nil {
		return err
	}
	return u.repo.Deactivate(ctx, id)
}

func (u *vehiclesUsecase) apply(v *entity.Vehicle, d Details) error {
	if d.Year != nil {
		if !entity.ValidYear(*d.Year, u.now()) {
			return ErrInvalidYear
		}
		v.Year = *d.Year
	}
	if d.Make != nil {
		v.Make = strings.TrimSpace(*d.Make)
	}
	if d.Model != nil {
		v.Model = strings.TrimSpace(*d.Model)
	}
	if d.Mileage != nil {
		v.Mileage = *d.Mileage
	}
	if d.AnnualMileage != nil {
		v.AnnualMileage = *d.AnnualMileage
	}
	if d.Usage != nil {
		v.Usage = *d.Usage
	}
	if d.ParkingLocation != nil {
		v.ParkingLocation = *d.ParkingLocation
	}
	if d.HasAntiTheftDevice != nil {
		v.HasAntiTheftDevice = *d.HasAntiTheftDevice
	}
	if d.HasAirbags != nil {
		v.HasAirbags = *d.HasAirbags
	}
	if d.HasABS != nil {
		v.HasABS = *d.HasABS
	}
	if d.PurchasePrice != nil {
		v.PurchasePrice = decimal.NewNullDecimal(*d.PurchasePrice)
	}
	if d.CurrentValue != nil {
		v.CurrentValue = decimal.NewNullDecimal(*d.CurrentValue)
	}
	if d.PurchaseDate != nil {
		v.PurchaseDate = d.PurchaseDate
	}
	for dst, src := range map[**string]*string{
		&v.Trim:              d.Trim,
		&v.BodyStyle:         d.BodyStyle,
		&v.EngineType:        d.EngineType,
		&v.Transmission:      d.Transmission,
		&v.FuelType:          d.FuelType,
		&v.Color:             d.Color,
		&v.LicensePlate:      d.LicensePlate,
		&v.RegistrationState: d.RegistrationState,
	} {
		if src != nil {
			s := strings.TrimSpace(*src)
			*dst = &s
		}
	}
	return nil
}
