package service

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Handlers translate these into the
// stable HTTP error codes; anything else surfaces as a generic internal error.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrEmailTaken         = errors.New("email already registered")
	ErrQRCodeTaken        = errors.New("qr identifier already assigned")
	ErrInvalidInput       = errors.New("invalid input")
)

// invalidInput wraps ErrInvalidInput with a caller-facing detail message.
func invalidInput(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, a...))
}
