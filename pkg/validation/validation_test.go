package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type applyForm struct {
	FullName    string `validate:"required,valid_name,no_emoji"`
	PhoneNumber string `validate:"required,valid_phone"`
	Email       string `validate:"required,email"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

func TestCustomValidators(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name  string
		form  applyForm
		valid bool
	}{
		{"accepts an ordinary applicant", applyForm{"Jane O'Neil-Doe", "+62 812-3456-7890", "jane@example.com"}, true},
		{"accepts accented names", applyForm{"José Müller", "0812345678", "jose@example.com"}, true},
		{"rejects digits in names", applyForm{"Jane 2", "0812345678", "jane@example.com"}, false},
		{"rejects emoji in names", applyForm{"Jane 😀", "0812345678", "jane@example.com"}, false},
		{"rejects short phone numbers", applyForm{"Jane", "12345", "jane@example.com"}, false},
		{"rejects letters in phone numbers", applyForm{"Jane", "0812abc678", "jane@example.com"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.form)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	err := newValidator().Struct(applyForm{FullName: "Jane 2", PhoneNumber: "", Email: "nope"})
	require.Error(t, err)

	msgs := FormatValidationErrors(err)
	assert.Contains(t, msgs, "Full name: only letters, spaces and common punctuation (. ' - ,) are allowed")
	assert.Contains(t, msgs, "Phone number: is required")
	assert.Contains(t, msgs, "Email: invalid email format")
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+6281234567890", NormalizePhone("+62 (812) 3456-7890"))
}
