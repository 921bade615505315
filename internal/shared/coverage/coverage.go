// Package coverage defines the coverage types sold on a policy and their annual base rates.
package coverage

import (
	"github.com/shopspring/decimal"
)

// Type is a line of coverage. Claims are filed against a single Type.
type Type string

const (
	Liability                Type = "liability"
	Collision                Type = "collision"
	Comprehensive            Type = "comprehensive"
	UninsuredMotorist        Type = "uninsured_motorist"
	PersonalInjuryProtection Type = "personal_injury_protection"
	MedicalPayments          Type = "medical_payments"
	RoadsideAssistance       Type = "roadside_assistance"
	RentalReimbursement      Type = "rental_reimbursement"
)

var baseRates = map[Type]decimal.Decimal{
	Liability:                decimal.NewFromInt(600),
	Collision:                decimal.NewFromInt(450),
	Comprehensive:            decimal.NewFromInt(250),
	UninsuredMotorist:        decimal.NewFromInt(120),
	PersonalInjuryProtection: decimal.NewFromInt(180),
	MedicalPayments:          decimal.NewFromInt(90),
	RoadsideAssistance:       decimal.NewFromInt(40),
	RentalReimbursement:      decimal.NewFromInt(60),
}

// Valid reports whether t is a known coverage type.
func (t Type) Valid() bool {
	_, ok := baseRates[t]
	return ok
}

// BaseRate returns the annual base rate of t, zero for unknown types.
func (t Type) BaseRate() decimal.Decimal {
	return baseRates[t]
}

// Details is the coverage selection stored as JSON on quotes and policies.
type Details struct {
	Coverages     []Type           `json:"coverages"`
	Deductible    *decimal.Decimal `json:"deductible,omitempty"`
	CoverageLimit *decimal.Decimal `json:"coverageLimit,omitempty"`
}

// Includes reports whether t is part of the selection.
func (d Details) Includes(t Type) bool {
	for _, c := range d.Coverages {
		if c == t {
			return true
		}
	}
	return false
}

// Normalize drops duplicates while keeping the first occurrence order.
func Normalize(types []Type) []Type {
	seen := make(map[Type]struct{}, len(types))
	out := make([]Type, 0, len(types))
	for _, t := range types {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
