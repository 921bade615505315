// Package entity defines the quote domain model.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"insurance_backend/internal/shared/billing"
	"insurance_backend/internal/shared/coverage"
	"insurance_backend/internal/shared/record"
)

// Status is the lifecycle state of a quote.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusExpired  Status = "expired"
	StatusDeclined Status = "declined"
)

// Validity is how long a quote can be accepted after it was issued.
const Validity = 30 * 24 * time.Hour

// Factor is one rating adjustment applied to a quote, kept for audit.
type Factor struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// Quote is a priced offer for a vehicle that can be turned into a policy.
type Quote struct {
	record.Base
	QuoteNumber        string                               `gorm:"size:50;uniqueIndex;not null" json:"quoteNumber"`
	BasePremium        decimal.Decimal                      `gorm:"type:decimal(10,2);not null" json:"basePremium"`
	TotalPremium       decimal.Decimal                      `gorm:"type:decimal(10,2);not null" json:"totalPremium"`
	DiscountAmount     decimal.Decimal                      `gorm:"type:decimal(10,2);not null;default:0" json:"discountAmount"`
	DiscountPercentage decimal.Decimal                      `gorm:"type:decimal(5,2);not null;default:0" json:"discountPercentage"`
	PaymentFrequency   billing.Frequency                    `gorm:"size:50;not null" json:"paymentFrequency"`
	MonthlyPremium     decimal.Decimal                      `gorm:"type:decimal(10,2);not null" json:"monthlyPremium"`
	EffectiveDate      time.Time                            `gorm:"type:date;not null" json:"effectiveDate"`
	ExpirationDate     time.Time                            `gorm:"type:date;not null" json:"expirationDate"`
	QuoteExpiresAt     time.Time                            `gorm:"not null;index" json:"quoteExpiresAt"`
	Status             Status                               `gorm:"size:20;not null;default:pending;index" json:"status"`
	CoverageDetails    datatypes.JSONType[coverage.Details] `json:"coverageDetails"`
	RiskFactors        datatypes.JSONType[[]Factor]         `json:"riskFactors"`
	DiscountFactors    datatypes.JSONType[[]Factor]         `json:"discountFactors"`
	Notes              *string                              `gorm:"type:text" json:"notes,omitempty"`
	CustomerID         string                               `gorm:"type:uuid;index;not null" json:"customerId"`
	VehicleID          string                               `gorm:"type:uuid;index;not null" json:"vehicleId"`
	AgentID            *string                              `gorm:"type:uuid" json:"agentId,omitempty"`
}

// IsExpired reports whether the acceptance window has closed.
func (q *Quote) IsExpired(now time.Time) bool {
	return now.After(q.QuoteExpiresAt)
}

// CanAccept reports whether the quote can still be turned into a policy.
func (q *Quote) CanAccept(now time.Time) bool {
	return q.Status == StatusPending && !q.IsExpired(now)
}

// GenerateQuoteNumber assigns a QTE number unless one is already set.
func (q *Quote) GenerateQuoteNumber(now time.Time) {
	if q.QuoteNumber == "" {
		q.QuoteNumber = record.Number("QTE", now)
	}
}
