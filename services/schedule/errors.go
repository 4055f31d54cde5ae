package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input rejected before any store access.
	ErrValidation = errors.New("invalid request")
	// ErrNotFound marks a slot id that does not resolve.
	ErrNotFound = errors.New("slot not found")
	// ErrConflict marks a slot that is no longer bookable. Callers should offer
	// another slot rather than retry.
	ErrConflict = errors.New("sorry, this slot was just taken by someone else")
	// ErrStore marks a persistence failure; the operation had no effect.
	ErrStore = errors.New("schedule store failure")
)

func validationErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func storeErr(operation string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, operation, err)
}

func requireID(field, value string) error {
	if value == "" {
		return validationErr("%s is required", field)
	}
	return nil
}
