package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced entity is absent or soft-deleted
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when validation fails or a referenced
	// entity does not exist (dangling reference)
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned on a unique-field collision (e.g. duplicate name)
	ErrConflict = errors.New("conflict occurred")

	// ErrStore is returned when an underlying store call on the primary
	// query path fails
	ErrStore = errors.New("store failure")
)

// StoreError wraps an unexpected store failure so callers can match it with
// errors.Is(err, ErrStore) while keeping the cause in the message.
func StoreError(err error) error {
	return fmt.Errorf("%w: %v", ErrStore, err)
}
