// Package dto defines the request bodies of the policies endpoints.
package dto

import "insurance_backend/internal/shared/record"

// ListPoliciesQuery holds the query string of GET /policies.
type ListPoliciesQuery struct {
	Status    string `form:"status" binding:"omitempty,oneof=pending active suspended cancelled expired"`
	VehicleID string `form:"vehicleId" binding:"omitempty,uuid"`
	record.Page
}

// CancelPolicyReq is the body of POST /policies/:id/cancel.
type CancelPolicyReq struct {
	Reason string `json:"reason" binding:"required,max=500"`
}
