package service

import (
	"errors"
	"fmt"

	"xpointconnect/backend/services/booking-service/internal/repository"
)

var (
	// ErrValidation marks malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrNotEligible marks a well-formed request the current state does not allow.
	ErrNotEligible = errors.New("not eligible")
	// ErrNotFound marks a missing booking, station or owner.
	ErrNotFound = errors.New("not found")
	// ErrMalformedQR marks a QR token that cannot be decoded.
	ErrMalformedQR = errors.New("malformed qr token")
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notEligiblef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotEligible, fmt.Sprintf(format, args...))
}

// notFound maps repository.ErrNotFound to ErrNotFound and passes other errors through.
func notFound(err error, what, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
	}
	return err
}
