// Package usecase implements claim submission and adjudication.
package usecase

import "errors"

var (
	ErrClaimNotFound         = errors.New("claim not found")
	ErrDuplicateClaimNumber  = errors.New("claim number already exists")
	ErrPolicyNotFound        = errors.New("policy not found")
	ErrPolicyNotActive       = errors.New("policy was not active at the incident date")
	ErrIncidentInFuture      = errors.New("incident date cannot be in the future")
	ErrIncidentOutsideTerm   = errors.New("incident date is outside the policy term")
	ErrCoverageNotIncluded   = errors.New("policy does not include this coverage")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrExceedsCoverageLimit  = errors.New("approved amount exceeds the policy coverage limit")
	ErrExceedsApprovedAmount = errors.New("settled amount exceeds the approved amount")
	ErrReasonRequired        = errors.New("denial reason is required")
	ErrInvalidFraudScore     = errors.New("fraud score must be between 0 and 1")
)
