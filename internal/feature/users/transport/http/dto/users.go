// Package dto defines the request bodies of the users endpoints.
package dto

import "time"

// UpdateProfileReq is the body of PATCH /users/me. Omitted fields are left unchanged.
type UpdateProfileReq struct {
	FirstName         *string    `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName          *string    `json:"lastName" binding:"omitempty,min=1,max=100"`
	Phone             *string    `json:"phone" binding:"omitempty,e164"`
	DateOfBirth       *time.Time `json:"dateOfBirth"`
	Address           *string    `json:"address" binding:"omitempty,max=255"`
	City              *string    `json:"city" binding:"omitempty,max=100"`
	State             *string    `json:"state" binding:"omitempty,max=50"`
	ZipCode           *string    `json:"zipCode" binding:"omitempty,max=20"`
	Country           *string    `json:"country" binding:"omitempty,max=50"`
	LicenseNumber     *string    `json:"licenseNumber" binding:"omitempty,max=20"`
	LicenseExpiryDate *time.Time `json:"licenseExpiryDate"`
}

// SetStatusReq is the body of PATCH /users/:id/status.
type SetStatusReq struct {
	IsActive *bool `json:"isActive" binding:"required"`
}
