// Package entity defines the policy domain model.
package entity

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"insurance_backend/internal/shared/billing"
	"insurance_backend/internal/shared/coverage"
	"insurance_backend/internal/shared/record"
)

// Status is the lifecycle state of a policy.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

const (
	// RenewalWindowDays is how close to expiration a policy becomes renewable.
	RenewalWindowDays = 30
	// DefaultGracePeriodDays is granted on every issued policy.
	DefaultGracePeriodDays = 10
)

var (
	ErrEffectiveAfterExpiration = errors.New("Effective date must be before expiration date")
	ErrTermTooLong              = errors.New("Policy term cannot exceed one year")
)

// Policy is an issued insurance contract for one vehicle.
type Policy struct {
	record.Base
	PolicyNumber       string                               `gorm:"size:50;uniqueIndex;not null" json:"policyNumber"`
	Status             Status                               `gorm:"size:20;not null;default:pending;index" json:"status"`
	EffectiveDate      time.Time                            `gorm:"type:date;not null" json:"effectiveDate"`
	ExpirationDate     time.Time                            `gorm:"type:date;not null;index" json:"expirationDate"`
	PremiumAmount      decimal.Decimal                      `gorm:"type:decimal(10,2);not null" json:"premiumAmount"`
	PaymentFrequency   billing.Frequency                    `gorm:"size:50;not null" json:"paymentFrequency"`
	MonthlyPremium     decimal.Decimal                      `gorm:"type:decimal(10,2);not null" json:"monthlyPremium"`
	NextPaymentDue     *time.Time                           `gorm:"type:date" json:"nextPaymentDue,omitempty"`
	GracePeriodDays    int                                  `gorm:"not null;default:0" json:"gracePeriodDays"`
	CoverageDetails    datatypes.JSONType[coverage.Details] `gorm:"not null" json:"coverageDetails"`
	Deductible         decimal.NullDecimal                  `gorm:"type:decimal(10,2)" json:"deductible"`
	CoverageLimit      decimal.NullDecimal                  `gorm:"type:decimal(15,2)" json:"coverageLimit"`
	LastPaymentDate    *time.Time                           `gorm:"type:date" json:"lastPaymentDate,omitempty"`
	OutstandingBalance decimal.Decimal                      `gorm:"type:decimal(10,2);not null;default:0" json:"outstandingBalance"`
	CancellationReason *string                              `gorm:"type:text" json:"cancellationReason,omitempty"`
	CancellationDate   *time.Time                           `gorm:"type:date" json:"cancellationDate,omitempty"`
	AutoRenew          bool                                 `gorm:"not null" json:"autoRenew"`
	Notes              *string                              `gorm:"type:text" json:"notes,omitempty"`
	QuoteID            string                               `gorm:"type:uuid;index;not null" json:"quoteId"`
	CustomerID         string                               `gorm:"type:uuid;index;not null" json:"customerId"`
	VehicleID          string                               `gorm:"type:uuid;index;not null" json:"vehicleId"`
	AgentID            *string                              `gorm:"type:uuid" json:"agentId,omitempty"`
}

// IsActive reports whether the policy is active and now falls within its term.
func (p *Policy) IsActive(now time.Time) bool {
	return p.Status == StatusActive && !now.Before(p.EffectiveDate) && !now.After(p.ExpirationDate)
}

// IsExpired reports whether the term has ended.
func (p *Policy) IsExpired(now time.Time) bool {
	return now.After(p.ExpirationDate)
}

// DaysUntilExpiration rounds up to whole days; negative once expired.
func (p *Policy) DaysUntilExpiration(now time.Time) int {
	return int(math.Ceil(p.ExpirationDate.Sub(now).Hours() / 24))
}

// NeedsRenewal reports whether expiration is at most RenewalWindowDays away.
func (p *Policy) NeedsRenewal(now time.Time) bool {
	d := p.DaysUntilExpiration(now)
	return d > 0 && d <= RenewalWindowDays
}

// CanRenew is true inside the renewal window or up to RenewalWindowDays after expiration.
func (p *Policy) CanRenew(now time.Time) bool {
	if p.NeedsRenewal(now) {
		return true
	}
	return p.IsExpired(now) && now.Sub(p.ExpirationDate) < RenewalWindowDays*24*time.Hour
}

// Cancellable reports whether the policy can still be cancelled.
func (p *Policy) Cancellable() bool {
	switch p.Status {
	case StatusPending, StatusActive, StatusSuspended:
		return true
	}
	return false
}

// TermMonths counts the months of the term; a started month counts as whole.
func (p *Policy) TermMonths() int {
	ey, em, ed := p.EffectiveDate.Date()
	xy, xm, xd := p.ExpirationDate.Date()
	months := (xy-ey)*12 + int(xm-em)
	if xd > ed {
		months++
	}
	if months < 0 {
		return 0
	}
	return months
}

// CalculateTotalPremium is the monthly premium times the months in the term.
func (p *Policy) CalculateTotalPremium() decimal.Decimal {
	return p.MonthlyPremium.Mul(decimal.NewFromInt(int64(p.TermMonths()))).Round(2)
}

// IsInGracePeriod reports whether a payment is overdue but still within the grace days.
func (p *Policy) IsInGracePeriod(now time.Time) bool {
	if p.NextPaymentDue == nil || !p.NextPaymentDue.Before(now) {
		return false
	}
	return !now.After(p.NextPaymentDue.AddDate(0, 0, p.GracePeriodDays))
}

// ApplyPayment records a premium instalment paid at: the balance drops by amount but never
// below zero and the next due date moves forward by one billing interval.
func (p *Policy) ApplyPayment(amount decimal.Decimal, at time.Time) {
	p.OutstandingBalance = decimal.Max(p.OutstandingBalance.Sub(amount), decimal.Zero)
	p.LastPaymentDate = &at
	if p.NextPaymentDue != nil && p.PaymentFrequency.Valid() {
		next := p.PaymentFrequency.Next(*p.NextPaymentDue)
		p.NextPaymentDue = &next
	}
}

// Credit adds a refunded amount back to the outstanding balance.
func (p *Policy) Credit(amount decimal.Decimal) {
	p.OutstandingBalance = p.OutstandingBalance.Add(amount)
}

// ValidateDates checks the ordering and length of the term.
func (p *Policy) ValidateDates() error {
	if !p.EffectiveDate.Before(p.ExpirationDate) {
		return ErrEffectiveAfterExpiration
	}
	if p.ExpirationDate.After(p.EffectiveDate.AddDate(1, 0, 0)) {
		return ErrTermTooLong
	}
	return nil
}

// GeneratePolicyNumber assigns a POL number unless one is already set.
func (p *Policy) GeneratePolicyNumber(now time.Time) {
	if p.PolicyNumber == "" {
		p.PolicyNumber = record.Number("POL", now)
	}
}

// Summary is the computed view returned by the status endpoint.
type Summary struct {
	ID                  string          `json:"id"`
	PolicyNumber        string          `json:"policyNumber"`
	Status              Status          `json:"status"`
	IsActive            bool            `json:"isActive"`
	IsExpired           bool            `json:"isExpired"`
	DaysUntilExpiration int             `json:"daysUntilExpiration"`
	NeedsRenewal        bool            `json:"needsRenewal"`
	IsInGracePeriod     bool            `json:"isInGracePeriod"`
	TotalPremium        decimal.Decimal `json:"totalPremium"`
	OutstandingBalance  decimal.Decimal `json:"outstandingBalance"`
}

// Summarize computes the status view at now.
func (p *Policy) Summarize(now time.Time) Summary {
	return Summary{
		ID:                  p.ID,
		PolicyNumber:        p.PolicyNumber,
		Status:              p.Status,
		IsActive:            p.IsActive(now),
		IsExpired:           p.IsExpired(now),
		DaysUntilExpiration: p.DaysUntilExpiration(now),
		NeedsRenewal:        p.NeedsRenewal(now),
		IsInGracePeriod:     p.IsInGracePeriod(now),
		TotalPremium:        p.CalculateTotalPremium(),
		OutstandingBalance:  p.OutstandingBalance,
	}
}
