package validator

import (
	"errors"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// phoneRegex accepts a 10-15 digit phone number with an optional leading +.
var phoneRegex = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// RegisterCustomValidations installs the application's binding rules on
// gin's validator engine. Call once at startup.
func RegisterCustomValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
}
