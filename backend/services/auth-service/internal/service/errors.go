package service

import (
	"errors"
	"fmt"

	"xpointconnect/backend/services/auth-service/internal/repository"
)

var (
	// ErrInvalidCredentials represents login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAlreadyExists is returned when a username or NIC is taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotFound marks a missing account.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks malformed input.
	ErrValidation = errors.New("validation failed")
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storeError maps repository sentinels onto service sentinels.
func storeError(err error, what, key string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s %s", ErrNotFound, what, key)
	case errors.Is(err, repository.ErrAlreadyExists):
		return fmt.Errorf("%w: %s %s", ErrAlreadyExists, what, key)
	default:
		return err
	}
}
