// Package entity defines the payment domain model.
package entity

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"insurance_backend/internal/shared/record"
)

// Status is the processing state of a payment.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
	StatusCancelled  Status = "cancelled"
)

// Method is how the payer pays.
type Method string

const (
	MethodCreditCard   Method = "credit_card"
	MethodDebitCard    Method = "debit_card"
	MethodBankTransfer Method = "bank_transfer"
	MethodCheck        Method = "check"
)

// Valid reports whether m is a known payment method.
func (m Method) Valid() bool {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodBankTransfer, MethodCheck:
		return true
	}
	return false
}

// Type is what the payment settles.
type Type string

const (
	TypePremium    Type = "premium"
	TypeDeductible Type = "deductible"
	TypeFee        Type = "fee"
	TypeRefund     Type = "refund"
)

// Valid reports whether t is a known payment type.
func (t Type) Valid() bool {
	switch t {
	case TypePremium, TypeDeductible, TypeFee, TypeRefund:
		return true
	}
	return false
}

// MaxRetries is the number of retries scheduled after failures.
const MaxRetries = 3

// ErrInvalidStatus is returned when the payment is not in a state that allows the operation.
var ErrInvalidStatus = errors.New("operation not allowed in the current payment status")

// Payment is money moving between a payer and the insurer.
type Payment struct {
	record.Base
	TransactionID         string            `gorm:"size:50;uniqueIndex;not null" json:"transactionId"`
	Amount                decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status                Status            `gorm:"size:20;not null;default:pending;index" json:"status"`
	PaymentMethod         Method            `gorm:"size:50;not null" json:"paymentMethod"`
	PaymentProvider       *string           `gorm:"size:100" json:"paymentProvider,omitempty"`
	ProviderTransactionID *string           `gorm:"size:255" json:"providerTransactionId,omitempty"`
	DueDate               time.Time         `gorm:"type:date;not null" json:"dueDate"`
	ProcessedAt           *time.Time        `json:"processedAt,omitempty"`
	PaymentType           Type              `gorm:"size:50;not null" json:"paymentType"`
	Description           *string           `gorm:"type:text" json:"description,omitempty"`
	FailureReason         *string           `gorm:"type:text" json:"failureReason,omitempty"`
	RetryCount            int               `gorm:"not null;default:0" json:"retryCount"`
	NextRetryAt           *time.Time        `json:"nextRetryAt,omitempty"`
	Metadata              datatypes.JSONMap `json:"metadata,omitempty"`
	PayerID               string            `gorm:"type:uuid;index;not null" json:"payerId"`
	PolicyID              *string           `gorm:"type:uuid;index" json:"policyId,omitempty"`
}

// GenerateTransactionID assigns a TXN id unless one is already set.
func (p *Payment) GenerateTransactionID() {
	if p.TransactionID == "" {
		hex := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
		p.TransactionID = "TXN-" + hex[:16]
	}
}

// Process marks a pending payment, or a failed one with a retry scheduled, as in flight.
func (p *Payment) Process() error {
	switch {
	case p.Status == StatusPending:
	case p.Status == StatusFailed && p.NextRetryAt != nil:
	default:
		return ErrInvalidStatus
	}
	p.Status = StatusProcessing
	p.NextRetryAt = nil
	return nil
}

// Complete records a successful charge.
func (p *Payment) Complete(providerTransactionID *string, at time.Time) error {
	if p.Status != StatusPending && p.Status != StatusProcessing {
		return ErrInvalidStatus
	}
	p.Status = StatusCompleted
	p.ProcessedAt = &at
	p.FailureReason = nil
	p.NextRetryAt = nil
	if providerTransactionID != nil {
		p.ProviderTransactionID = providerTransactionID
	}
	return nil
}

// Fail records a failed charge and schedules the next retry with exponential backoff:
// 2^n hours after the n-th failure, for at most MaxRetries failures.
func (p *Payment) Fail(reason string, at time.Time) error {
	if p.Status != StatusPending && p.Status != StatusProcessing {
		return ErrInvalidStatus
	}
	p.Status = StatusFailed
	p.FailureReason = &reason
	p.RetryCount++
	p.NextRetryAt = nil
	if p.RetryCount <= MaxRetries {
		next := at.Add(time.Duration(math.Pow(2, float64(p.RetryCount))) * time.Hour)
		p.NextRetryAt = &next
	}
	return nil
}

// Refund reverses a completed payment.
func (p *Payment) Refund(at time.Time) error {
	if p.Status != StatusCompleted {
		return ErrInvalidStatus
	}
	p.Status = StatusRefunded
	p.ProcessedAt = &at
	return nil
}

// Cancel withdraws a payment that has not been processed yet.
func (p *Payment) Cancel() error {
	if p.Status != StatusPending {
		return ErrInvalidStatus
	}
	p.Status = StatusCancelled
	return nil
}

// AffectsBalance reports whether the payment settles policy premium.
func (p *Payment) AffectsBalance() bool {
	return p.PaymentType == TypePremium && p.PolicyID != nil && *p.PolicyID != ""
}
