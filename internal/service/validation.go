package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate   = validator.New(validator.WithRequiredStructEnabled())
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// validateStruct traduce el primer error de validator a *ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: "input", Message: "invalid value"}
	}
	fe := verrs[0]
	return &ValidationError{
		Field:   strings.ToLower(fe.Field()),
		Message: fieldErrorMessage(fe),
	}
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "invalid email format"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "url":
		return "must be a valid url"
	default:
		return "invalid value"
	}
}

func isEmailShaped(email string) bool {
	return emailShape.MatchString(email)
}
