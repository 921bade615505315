// Package dto defines the request bodies of the quotes endpoints.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"insurance_backend/internal/feature/quotes/usecase"
	"insurance_backend/internal/shared/billing"
	"insurance_backend/internal/shared/coverage"
	"insurance_backend/internal/shared/record"
)

// CreateQuoteReq is the body of POST /quotes.
type CreateQuoteReq struct {
	VehicleID        string           `json:"vehicleId" binding:"required,uuid"`
	Coverages        []string         `json:"coverages" binding:"required,min=1,dive,oneof=liability collision comprehensive uninsured_motorist personal_injury_protection medical_payments roadside_assistance rental_reimbursement"`
	Deductible       *decimal.Decimal `json:"deductible"`
	CoverageLimit    *decimal.Decimal `json:"coverageLimit"`
	PaymentFrequency string           `json:"paymentFrequency" binding:"omitempty,oneof=monthly quarterly semi-annual annual"`
	EffectiveDate    *time.Time       `json:"effectiveDate"`
	TermMonths       int              `json:"termMonths" binding:"omitempty,min=1,max=12"`
	Notes            *string          `json:"notes" binding:"omitempty,max=1000"`
}

// ListQuotesQuery holds the query string of GET /quotes.
type ListQuotesQuery struct {
	Status    string `form:"status" binding:"omitempty,oneof=pending accepted expired declined"`
	VehicleID string `form:"vehicleId" binding:"omitempty,uuid"`
	record.Page
}

// Input converts the request into a usecase input.
func (r CreateQuoteReq) Input() usecase.CreateInput {
	types := make([]coverage.Type, len(r.Coverages))
	for i, c := range r.Coverages {
		types[i] = coverage.Type(c)
	}
	return usecase.CreateInput{
		VehicleID:        r.VehicleID,
		Coverages:        types,
		Deductible:       r.Deductible,
		CoverageLimit:    r.CoverageLimit,
		PaymentFrequency: billing.Frequency(r.PaymentFrequency),
		EffectiveDate:    r.EffectiveDate,
		TermMonths:       r.TermMonths,
		Notes:            r.Notes,
	}
}
