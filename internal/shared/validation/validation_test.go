package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsVIN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		vin  string
		want bool
	}{
		{"1HGCM82633A004352", true},
		{"1hgcm82633a004352", true},
		{"1HGCM82633A00435", false},
		{"1HGCM82633A0043521", false},
		{"1HGCM82633I004352", false},
		{"1HGCM82633O004352", false},
		{"1HGCM82633Q004352", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsVIN(tt.vin), tt.vin)
	}
}

func TestRegister_UsesJSONNamesAndVINRule(t *testing.T) {
	Register()
	Register()

	type payload struct {
		VIN  string `json:"vin" binding:"required,vin"`
		Make string `json:"make" binding:"required"`
	}

	err := binding.Validator.ValidateStruct(&payload{VIN: "bad"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := map[string]string{}
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	assert.Equal(t, map[string]string{"vin": "vin", "make": "required"}, fields)
}
