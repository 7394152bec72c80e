package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type phoneField struct {
	Phone string `binding:"omitempty,phone"`
}

func TestPhoneValidation(t *testing.T) {
	require.NoError(t, RegisterCustomValidations())

	valid := []string{"", "1234567890", "+14155550123", "447911123456"}
	for _, number := range valid {
		err := binding.Validator.ValidateStruct(&phoneField{Phone: number})
		assert.NoError(t, err, "number %q", number)
	}

	invalid := []string{"abc", "123", "+1 415 555 0123", "12345678901234567890"}
	for _, number := range invalid {
		err := binding.Validator.ValidateStruct(&phoneField{Phone: number})
		assert.Error(t, err, "number %q", number)
	}
}
