package validator

import (
	"github.com/go-playground/validator/v10"
)

// Validator wraps struct validation and the business rule validator
type Validator struct {
	validate *validator.Validate
	business *BusinessValidator
}

// NewValidator creates a validator with all custom rules registered
func NewValidator() *Validator {
	business := NewBusinessValidator()

	return &Validator{
		validate: business.validate,
		business: business,
	}
}

// Struct validates any tagged struct
func (v *Validator) Struct(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// GetBusinessValidator returns the business rule validator
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}
