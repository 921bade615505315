// Package entity defines the vehicle domain model.
package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"insurance_backend/internal/shared/record"
)

// Usage describes how a vehicle is driven.
type Usage string

const (
	UsagePersonal   Usage = "personal"
	UsageBusiness   Usage = "business"
	UsageCommercial Usage = "commercial"
)

// ParkingLocation is where the vehicle is kept overnight.
type ParkingLocation string

const (
	ParkingGarage   ParkingLocation = "garage"
	ParkingDriveway ParkingLocation = "driveway"
	ParkingStreet   ParkingLocation = "street"
)

// MinYear is the oldest model year accepted.
const MinYear = 1900

// Vehicle is an insured car owned by a customer.
type Vehicle struct {
	record.Base
	VIN                string              `gorm:"size:17;uniqueIndex;not null" json:"vin"`
	Make               string              `gorm:"size:50;not null" json:"make"`
	Model              string              `gorm:"size:50;not null" json:"model"`
	Year               int                 `gorm:"not null" json:"year"`
	Trim               *string             `gorm:"size:50" json:"trim,omitempty"`
	BodyStyle          *string             `gorm:"size:30" json:"bodyStyle,omitempty"`
	EngineType         *string             `gorm:"size:30" json:"engineType,omitempty"`
	Transmission       *string             `gorm:"size:20" json:"transmission,omitempty"`
	FuelType           *string             `gorm:"size:20" json:"fuelType,omitempty"`
	Mileage            int                 `gorm:"not null;default:0" json:"mileage"`
	Color              *string             `gorm:"size:30" json:"color,omitempty"`
	LicensePlate       *string             `gorm:"size:20" json:"licensePlate,omitempty"`
	RegistrationState  *string             `gorm:"size:2" json:"registrationState,omitempty"`
	PurchasePrice      decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"purchasePrice"`
	CurrentValue       decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"currentValue"`
	PurchaseDate       *time.Time          `gorm:"type:date" json:"purchaseDate,omitempty"`
	Usage              Usage               `gorm:"size:20;not null;default:personal" json:"usage"`
	AnnualMileage      int                 `gorm:"not null;default:12000" json:"annualMileage"`
	HasAntiTheftDevice bool                `gorm:"not null" json:"hasAntiTheftDevice"`
	HasAirbags         bool                `gorm:"not null" json:"hasAirbags"`
	HasABS             bool                `gorm:"not null" json:"hasAbs"`
	ParkingLocation    ParkingLocation     `gorm:"size:20;not null;default:driveway" json:"parkingLocation"`
	IsActive           bool                `gorm:"not null;default:true" json:"isActive"`
	OwnerID            string              `gorm:"type:uuid;index;not null" json:"ownerId"`
}

// Age returns the vehicle age in whole years at now, counted by model year.
func (v *Vehicle) Age(now time.Time) int {
	age := now.Year() - v.Year
	if age < 0 {
		return 0
	}
	return age
}

// ValidYear reports whether year is within [MinYear, next calendar year].
func ValidYear(year int, now time.Time) bool {
	return year >= MinYear && year <= now.Year()+1
}
