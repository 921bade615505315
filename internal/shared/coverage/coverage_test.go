package coverage

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestType_BaseRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ   Type
		valid bool
		rate  int64
	}{
		{Liability, true, 600},
		{Collision, true, 450},
		{Comprehensive, true, 250},
		{UninsuredMotorist, true, 120},
		{PersonalInjuryProtection, true, 180},
		{MedicalPayments, true, 90},
		{RoadsideAssistance, true, 40},
		{RentalReimbursement, true, 60},
		{Type("flood"), false, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.valid, tt.typ.Valid())
			assert.True(t, decimal.NewFromInt(tt.rate).Equal(tt.typ.BaseRate()))
		})
	}
}

func TestDetails_IncludesAndNormalize(t *testing.T) {
	t.Parallel()

	d := Details{Coverages: Normalize([]Type{Collision, Liability, Collision})}
	assert.Equal(t, []Type{Collision, Liability}, d.Coverages)
	assert.True(t, d.Includes(Liability))
	assert.False(t, d.Includes(Comprehensive))
}
