package validator

import (
	"github.com/quizdeck/quiz-service/internal/errors"
)

// Use shared validation errors from errors package
type ValidationError = errors.ValidationError
type ValidationErrors = errors.ValidationErrors

var (
	NewValidationError         = errors.NewValidationError
	NewValidationErrorWithRule = errors.NewValidationErrorWithRule
)

// ToValidationErrors converts validator.ValidationErrors to our custom type
func ToValidationErrors(err error) ValidationErrors {
	return errors.ToValidationErrors(err)
}
