package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid wraps every input rejected by domain validation.
	ErrInvalid = errors.New("invalid input")
	// ErrConflict is returned when the request clashes with current state,
	// such as onboarding onto an occupied asset.
	ErrConflict = errors.New("conflict")
)

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalid, err)
}
