// Package dto defines the request bodies of the vehicles endpoints.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"insurance_backend/internal/feature/vehicles/domain/entity"
	"insurance_backend/internal/feature/vehicles/usecase"
	"insurance_backend/internal/shared/record"
)

// VehicleFields are accepted by both create and update.
type VehicleFields struct {
	Trim               *string                 `json:"trim" binding:"omitempty,max=50"`
	BodyStyle          *string                 `json:"bodyStyle" binding:"omitempty,max=30"`
	EngineType         *string                 `json:"engineType" binding:"omitempty,max=30"`
	Transmission       *string                 `json:"transmission" binding:"omitempty,max=20"`
	FuelType           *string                 `json:"fuelType" binding:"omitempty,max=20"`
	Mileage            *int                    `json:"mileage" binding:"omitempty,min=0"`
	Color              *string                 `json:"color" binding:"omitempty,max=30"`
	LicensePlate       *string                 `json:"licensePlate" binding:"omitempty,max=20"`
	RegistrationState  *string                 `json:"registrationState" binding:"omitempty,len=2"`
	PurchasePrice      *decimal.Decimal        `json:"purchasePrice"`
	CurrentValue       *decimal.Decimal        `json:"currentValue"`
	PurchaseDate       *time.Time              `json:"purchaseDate"`
	Usage              *entity.Usage           `json:"usage" binding:"omitempty,oneof=personal business commercial"`
	AnnualMileage      *int                    `json:"annualMileage" binding:"omitempty,min=0"`
	HasAntiTheftDevice *bool                   `json:"hasAntiTheftDevice"`
	HasAirbags         *bool                   `json:"hasAirbags"`
	HasABS             *bool                   `json:"hasAbs"`
	ParkingLocation    *entity.ParkingLocation `json:"parkingLocation" binding:"omitempty,oneof=garage driveway street"`
}

// CreateVehicleReq is the body of POST /vehicles.
type CreateVehicleReq struct {
	VIN     string `json:"vin" binding:"required,vin"`
	Make    string `json:"make" binding:"required,max=50"`
	Model   string `json:"model" binding:"required,max=50"`
	Year    int    `json:"year" binding:"required,min=1900"`
	OwnerID string `json:"ownerId" binding:"omitempty,uuid"`
	VehicleFields
}

// UpdateVehicleReq is the body of PATCH /vehicles/:id.
type UpdateVehicleReq struct {
	Make  *string `json:"make" binding:"omitempty,min=1,max=50"`
	Model *string `json:"model" binding:"omitempty,min=1,max=50"`
	Year  *int    `json:"year" binding:"omitempty,min=1900"`
	VehicleFields
}

// ListVehiclesQuery holds the query string of GET /vehicles.
type ListVehiclesQuery struct {
	OwnerID string `form:"ownerId" binding:"omitempty,uuid"`
	record.Page
}

func (f VehicleFields) details() usecase.Details {
	return usecase.Details{
		Trim:               f.Trim,
		BodyStyle:          f.BodyStyle,
		EngineType:         f.EngineType,
		Transmission:       f.Transmission,
		FuelType:           f.FuelType,
		Mileage:            f.Mileage,
		Color:              f.Color,
		LicensePlate:       f.LicensePlate,
		RegistrationState:  f.RegistrationState,
		PurchasePrice:      f.PurchasePrice,
		CurrentValue:       f.CurrentValue,
		PurchaseDate:       f.PurchaseDate,
		Usage:              f.Usage,
		AnnualMileage:      f.AnnualMileage,
		HasAntiTheftDevice: f.HasAntiTheftDevice,
		HasAirbags:         f.HasAirbags,
		HasABS:             f.HasABS,
		ParkingLocation:    f.ParkingLocation,
	}
}

// Input converts the request into a usecase input.
func (r CreateVehicleReq) Input() usecase.CreateInput {
	d := r.details()
	d.Make, d.Model, d.Year = &r.Make, &r.Model, &r.Year
	return usecase.CreateInput{VIN: r.VIN, OwnerID: r.OwnerID, Details: d}
}

// Details converts the request into a partial update.
func (r UpdateVehicleReq) Details() usecase.Details {
	d := r.details()
	d.Make, d.Model, d.Year = r.Make, r.Model, r.Year
	return d
}
