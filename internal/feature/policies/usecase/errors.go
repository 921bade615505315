// Package usecase implements policy issuance and lifecycle.
package usecase

import "errors"

var (
	// ErrPolicyNotFound is returned when a policy does not exist or is not visible to the actor.
	ErrPolicyNotFound = errors.New("policy not found")

	// ErrDuplicatePolicyNumber is returned by the repository on a policy number collision.
	ErrDuplicatePolicyNumber = errors.New("policy number already exists")

	// ErrNotCancellable is returned when cancelling a cancelled or expired policy.
	ErrNotCancellable = errors.New("policy cannot be cancelled in its current status")

	// ErrNotRenewable is returned outside the renewal window.
	ErrNotRenewable = errors.New("policy is not eligible for renewal")

	// ErrAlreadyRenewed is returned when a follow-up policy already exists.
	ErrAlreadyRenewed = errors.New("policy has already been renewed")
)
