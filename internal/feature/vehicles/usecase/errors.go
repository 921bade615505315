// Package usecase implements vehicle registration and maintenance.
package usecase

import "errors"

var (
	// ErrVehicleNotFound is returned when a vehicle does not exist or is not visible to the actor.
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrDuplicateVIN is returned when another vehicle already uses the VIN.
	ErrDuplicateVIN = errors.New("vehicle with this VIN already exists")

	// ErrInvalidVIN is returned for a malformed VIN.
	ErrInvalidVIN = errors.New("VIN must be 17 characters and cannot contain I, O or Q")

	// ErrInvalidYear is returned for a model year outside the accepted range.
	ErrInvalidYear = errors.New("year must be between 1900 and next year")
)
