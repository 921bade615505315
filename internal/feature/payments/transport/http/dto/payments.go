// Package dto defines the request bodies of the payments endpoints.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"insurance_backend/internal/feature/payments/domain/entity"
	"insurance_backend/internal/feature/payments/usecase"
	"insurance_backend/internal/shared/record"
)

// CreatePaymentReq is the body of POST /payments.
type CreatePaymentReq struct {
	PolicyID        *string          `json:"policyId" binding:"omitempty,uuid"`
	PayerID         *string          `json:"payerId" binding:"omitempty,uuid"`
	Amount          *decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod   string           `json:"paymentMethod" binding:"required,oneof=credit_card debit_card bank_transfer check"`
	PaymentProvider *string          `json:"paymentProvider" binding:"omitempty,max=100"`
	PaymentType     string           `json:"paymentType" binding:"omitempty,oneof=premium deductible fee refund"`
	DueDate         *time.Time       `json:"dueDate"`
	Description     *string          `json:"description" binding:"omitempty,max=1000"`
	Metadata        map[string]any   `json:"metadata"`
}

// ListPaymentsQuery holds the query string of GET /payments.
type ListPaymentsQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending processing completed failed refunded cancelled"`
	PolicyID string `form:"policyId" binding:"omitempty,uuid"`
	record.Page
}

// CompletePaymentReq is the body of POST /payments/:id/complete.
type CompletePaymentReq struct {
	ProviderTransactionID *string `json:"providerTransactionId" binding:"omitempty,max=255"`
}

// FailPaymentReq is the body of POST /payments/:id/fail.
type FailPaymentReq struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// Input converts the request into a usecase input.
func (r CreatePaymentReq) Input() usecase.CreateInput {
	return usecase.CreateInput{
		PolicyID:        r.PolicyID,
		PayerID:         r.PayerID,
		Amount:          *r.Amount,
		PaymentMethod:   entity.Method(r.PaymentMethod),
		PaymentProvider: r.PaymentProvider,
		PaymentType:     entity.Type(r.PaymentType),
		DueDate:         r.DueDate,
		Description:     r.Description,
		Metadata:        r.Metadata,
	}
}
