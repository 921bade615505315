// Package usecase implements quoting and quote acceptance.
package usecase

import "errors"

var (
	// ErrQuoteNotFound is returned when a quote does not exist or is not visible to the actor.
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrQuoteNotPending is returned when accepting or declining a quote that was already decided.
	ErrQuoteNotPending = errors.New("quote is no longer pending")

	// ErrQuoteExpired is returned when accepting a quote after its validity window.
	ErrQuoteExpired = errors.New("quote has expired")

	// ErrDuplicateQuoteNumber is returned by the repository on a quote number collision.
	ErrDuplicateQuoteNumber = errors.New("quote number already exists")

	// ErrVehicleNotFound is returned when the quoted vehicle is missing or not visible.
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrVehicleInactive is returned when quoting a deactivated vehicle.
	ErrVehicleInactive = errors.New("vehicle is not active")

	// ErrNoCoverage is returned when no valid coverage type was requested.
	ErrNoCoverage = errors.New("at least one valid coverage type is required")

	// ErrInvalidAmount is returned for a negative deductible or a non-positive coverage limit.
	ErrInvalidAmount = errors.New("deductible cannot be negative and coverage limit must be positive")

	// ErrInvalidEffectiveDate is returned for an effective date in the past.
	ErrInvalidEffectiveDate = errors.New("effective date cannot be in the past")
)
