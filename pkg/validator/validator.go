package validator

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/rsaputelli/PRS/internal/model"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

// Register adds the custom tags to gin's binding validator:
//
//	hhmm       "15:04" or "15:04:05"
//	band_role  one of model.BandRoles
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v)
}

// RegisterOn adds the custom tags to v.
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("hhmm", validateClock); err != nil {
		return err
	}
	return v.RegisterValidation("band_role", validateBandRole)
}

func validateClock(fl validator.FieldLevel) bool {
	return clockPattern.MatchString(fl.Field().String())
}

func validateBandRole(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	for _, r := range model.BandRoles {
		if r == role {
			return true
		}
	}
	return false
}
