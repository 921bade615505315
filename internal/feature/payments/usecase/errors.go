// Package usecase implements payment recording and settlement.
package usecase

import "errors"

var (
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrDuplicateTransactionID = errors.New("transaction id already exists")
	ErrPolicyNotFound         = errors.New("policy not found")
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrInvalidMethod          = errors.New("unknown payment method")
	ErrInvalidType            = errors.New("unknown payment type")
	ErrFailureReasonRequired  = errors.New("failure reason is required")
)
