package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/tartampluch/ieq-connect/internal/config"
)

// ErrValidation marks a form submission that was rejected before saving.
var ErrValidation = errors.New(config.ErrValidation)

var validate = validator.New()

// Validate checks the struct tags of a record.
// The returned error wraps ErrValidation and the validator field errors.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// FieldErrors extracts the names of the failing fields, for display.
func FieldErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}
