// Package rating prices a coverage selection for a vehicle.
//
// Annual base rates are summed per coverage, prorated to the term, multiplied by the
// vehicle risk factors and reduced by the safety and payment discounts. All amounts are
// rounded to cents.
package rating

import (
	"github.com/shopspring/decimal"

	"insurance_backend/internal/feature/quotes/domain/entity"
	vehicle "insurance_backend/internal/feature/vehicles/domain/entity"
	"insurance_backend/internal/shared/billing"
	"insurance_backend/internal/shared/coverage"
)

// MaxDiscountPercentage caps the sum of all discounts.
var MaxDiscountPercentage = decimal.NewFromInt(25)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Input is everything the rating depends on.
type Input struct {
	Coverages     []coverage.Type
	TermMonths    int
	Frequency     billing.Frequency
	VehicleAge    int
	Usage         vehicle.Usage
	AnnualMileage int
	Parking       vehicle.ParkingLocation
	HasAntiTheft  bool
	HasAirbags    bool
	HasABS        bool
}

// Result is the priced quote.
type Result struct {
	BasePremium        decimal.Decimal
	RiskMultiplier     decimal.Decimal
	DiscountPercentage decimal.Decimal
	DiscountAmount     decimal.Decimal
	TotalPremium       decimal.Decimal
	MonthlyPremium     decimal.Decimal
	RiskFactors        []entity.Factor
	DiscountFactors    []entity.Factor
}

// Rate prices in. TermMonths outside 1..12 is treated as 12.
func Rate(in Input) Result {
	term := in.TermMonths
	if term < 1 || term > 12 {
		term = 12
	}
	months := decimal.NewFromInt(int64(term))

	annual := decimal.Zero
	for _, c := range coverage.Normalize(in.Coverages) {
		annual = annual.Add(c.BaseRate())
	}
	base := annual.Mul(months).Div(twelve).Round(2)

	risk, riskFactors := riskMultiplier(in)
	adjusted := base.Mul(risk).Round(2)

	pct, discountFactors := discountPercentage(in)
	discount := adjusted.Mul(pct).Div(hundred).Round(2)
	total := adjusted.Sub(discount)

	return Result{
		BasePremium:        base,
		RiskMultiplier:     risk,
		DiscountPercentage: pct,
		DiscountAmount:     discount,
		TotalPremium:       total,
		MonthlyPremium:     total.Div(months).Round(2),
		RiskFactors:        riskFactors,
		DiscountFactors:    discountFactors,
	}
}

func riskMultiplier(in Input) (decimal.Decimal, []entity.Factor) {
	m := decimal.NewFromInt(1)
	factors := []entity.Factor{}
	apply := func(name, value string) {
		v := decimal.RequireFromString(value)
		m = m.Mul(v)
		factors = append(factors, entity.Factor{Name: name, Value: v})
	}

	switch {
	case in.VehicleAge < 3:
		apply("new_vehicle", "1.15")
	case in.VehicleAge > 15:
		apply("old_vehicle", "0.90")
	}
	switch in.Usage {
	case vehicle.UsageBusiness:
		apply("business_use", "1.20")
	case vehicle.UsageCommercial:
		apply("commercial_use", "1.40")
	}
	switch {
	case in.AnnualMileage > 15000:
		apply("high_mileage", "1.10")
	case in.AnnualMileage < 7500:
		apply("low_mileage", "0.95")
	}
	switch in.Parking {
	case vehicle.ParkingStreet:
		apply("street_parking", "1.10")
	case vehicle.ParkingGarage:
		apply("garage_parking", "0.95")
	}
	return m, factors
}

func discountPercentage(in Input) (decimal.Decimal, []entity.Factor) {
	pct := decimal.Zero
	factors := []entity.Factor{}
	apply := func(name string, value int64) {
		v := decimal.NewFromInt(value)
		pct = pct.Add(v)
		factors = append(factors, entity.Factor{Name: name, Value: v})
	}

	if in.HasAntiTheft {
		apply("anti_theft", 5)
	}
	if in.HasAirbags {
		apply("airbags", 3)
	}
	if in.HasABS {
		apply("abs", 2)
	}
	if in.Frequency == billing.Annual {
		apply("annual_payment", 5)
	}
	if pct.GreaterThan(MaxDiscountPercentage) {
		pct = MaxDiscountPercentage
	}
	return pct, factors
}
