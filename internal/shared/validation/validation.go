// Package validation registers the custom rules and naming used by gin's binding validator.
package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// VIN characters exclude I, O and Q.
var vinPattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

var once sync.Once

// Register installs the json field naming and the "vin" rule on gin's validator.
// Safe to call more than once.
func Register() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonName)
		_ = v.RegisterValidation("vin", func(fl validator.FieldLevel) bool {
			return IsVIN(fl.Field().String())
		})
	})
}

// IsVIN reports whether s is a well formed vehicle identification number.
func IsVIN(s string) bool {
	return vinPattern.MatchString(strings.ToUpper(s))
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
