package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrDuplicateEmail        = errors.New("email already registered")
	ErrAccountNotFound       = errors.New("account not found")
	ErrAlreadyVerified       = errors.New("email already verified")
	ErrOAuthOnlyAccount      = errors.New("account uses external sign-in")
	ErrEmailNotVerified      = errors.New("email not verified")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrEmailDeliveryFailed   = errors.New("email delivery failed")
	ErrStorageFailure        = errors.New("storage failure")
	ErrRateLimited           = errors.New("rate limited")
	ErrOAuthInvalid          = errors.New("oauth data invalid")
)

// ValidationError describe un campo de entrada rechazado.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func storageFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}
