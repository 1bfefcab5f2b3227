package models

import (
	"errors"
	"fmt"
)

// Domain errors. Callers match them with errors.Is.
var (
	ErrValidation          = errors.New("validation error")
	ErrDuplicateAccount    = errors.New("account already exists")
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrInvalidToken        = errors.New("invalid token")
	ErrMalformedCredential = errors.New("malformed credential")
)

// NewValidationError wraps err so that errors.Is(result, ErrValidation) holds
func NewValidationError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrValidation, err.Error())
}
