// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/fulfillment/internal/errors"
)

var (
	// emailRegex is a basic email validation pattern
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Email validates that a string is a plausible email address.
var Email = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_email_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if !emailRegex.MatchString(s) {
		return validation.NewError("validation_email", "must be a valid email address")
	}
	return nil
})

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}
