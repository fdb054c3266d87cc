// Package utils provides request validation helpers shared by the HTTP layer and
// application services.
package utils

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/trackops/riskregistry/pkg/errors"
)

// defaultValidator holds the singleton validator instance.
var defaultValidator *validator.Validate

func init() {
	defaultValidator = validator.New()
}

// ValidateStruct validates a struct using the default validator. It returns a
// VALIDATION_ERROR with per-field messages if validation fails, nil otherwise.
func ValidateStruct(s interface{}) errors.RegistryError {
	if err := defaultValidator.Struct(s); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return errors.ErrValidation(err.Error())
		}
		parts := make([]string, 0, len(validationErrors))
		regErr := errors.ErrValidation("")
		for _, fe := range validationErrors {
			field := toSnakeCase(fe.Field())
			msg := formatValidationError(fe)
			parts = append(parts, field+" "+msg)
			regErr = regErr.WithMetadata(field, msg)
		}
		return errors.ErrValidation(strings.Join(parts, "; ")).WithCause(regErr)
	}
	return nil
}

// formatValidationError creates a user-friendly message for one field error.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation rule %q", fe.Tag())
	}
}

// toSnakeCase converts a Go field name to its snake_case JSON form.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
