package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"

	vehicle "insurance_backend/internal/feature/vehicles/domain/entity"
	"insurance_backend/internal/shared/billing"
	"insurance_backend/internal/shared/coverage"
)

func TestRate(t *testing.T) {
	t.Parallel()

	neutral := Input{
		Coverages:     []coverage.Type{coverage.Liability, coverage.Collision},
		TermMonths:    12,
		Frequency:     billing.Monthly,
		VehicleAge:    5,
		Usage:         vehicle.UsagePersonal,
		AnnualMileage: 12000,
		Parking:       vehicle.ParkingDriveway,
	}

	tests := []struct {
		name        string
		modify      func(in *Input)
		wantBase    string
		wantPct     string
		wantDisc    string
		wantTotal   string
		wantMonthly string
		wantRisk    []string
		wantDiscs   []string
	}{
		{
			name:        "no adjustments",
			modify:      func(*Input) {},
			wantBase:    "1050.00",
			wantPct:     "0.00",
			wantDisc:    "0.00",
			wantTotal:   "1050.00",
			wantMonthly: "87.50",
		},
		{
			name:        "duplicate coverages counted once",
			modify:      func(in *Input) { in.Coverages = append(in.Coverages, coverage.Liability) },
			wantBase:    "1050.00",
			wantPct:     "0.00",
			wantDisc:    "0.00",
			wantTotal:   "1050.00",
			wantMonthly: "87.50",
		},
		{
			name: "every risk factor and discount",
			modify: func(in *Input) {
				in.Coverages = []coverage.Type{coverage.Liability}
				in.VehicleAge = 1
				in.Usage = vehicle.UsageBusiness
				in.AnnualMileage = 20000
				in.Parking = vehicle.ParkingGarage
				in.HasAntiTheft, in.HasAirbags, in.HasABS = true, true, true
				in.Frequency = billing.Annual
			},
			wantBase:    "600.00",
			wantPct:     "15.00",
			wantDisc:    "129.79",
			wantTotal:   "735.47",
			wantMonthly: "61.29",
			wantRisk:    []string{"new_vehicle", "business_use", "high_mileage", "garage_parking"},
			wantDiscs:   []string{"anti_theft", "airbags", "abs", "annual_payment"},
		},
		{
			name: "old commercial street vehicle with low mileage",
			modify: func(in *Input) {
				in.Coverages = []coverage.Type{coverage.Comprehensive}
				in.VehicleAge = 20
				in.Usage = vehicle.UsageCommercial
				in.AnnualMileage = 5000
				in.Parking = vehicle.ParkingStreet
			},
			// 250 * 0.90 * 1.40 * 0.95 * 1.10 = 329.175
			wantBase:    "250.00",
			wantPct:     "0.00",
			wantDisc:    "0.00",
			wantTotal:   "329.18",
			wantMonthly: "27.43",
			wantRisk:    []string{"old_vehicle", "commercial_use", "low_mileage", "street_parking"},
		},
		{
			name:        "six month term is prorated",
			modify:      func(in *Input) { in.TermMonths = 6 },
			wantBase:    "525.00",
			wantPct:     "0.00",
			wantDisc:    "0.00",
			wantTotal:   "525.00",
			wantMonthly: "87.50",
		},
		{
			name:        "out of range term falls back to a year",
			modify:      func(in *Input) { in.TermMonths = 0 },
			wantBase:    "1050.00",
			wantPct:     "0.00",
			wantDisc:    "0.00",
			wantTotal:   "1050.00",
			wantMonthly: "87.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := neutral
			in.Coverages = append([]coverage.Type(nil), neutral.Coverages...)
			tt.modify(&in)

			got := Rate(in)
			assert.Equal(t, tt.wantBase, got.BasePremium.StringFixed(2))
			assert.Equal(t, tt.wantPct, got.DiscountPercentage.StringFixed(2))
			assert.Equal(t, tt.wantDisc, got.DiscountAmount.StringFixed(2))
			assert.Equal(t, tt.wantTotal, got.TotalPremium.StringFixed(2))
			assert.Equal(t, tt.wantMonthly, got.MonthlyPremium.StringFixed(2))

			var risk, discs []string
			for _, f := range got.RiskFactors {
				risk = append(risk, f.Name)
			}
			for _, f := range got.DiscountFactors {
				discs = append(discs, f.Name)
			}
			assert.Equal(t, tt.wantRisk, risk)
			assert.Equal(t, tt.wantDiscs, discs)
		})
	}
}
