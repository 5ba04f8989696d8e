package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups whose target must exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateAttempt is returned when a carry-over attempt for the same user
// and date is already recorded.
var ErrDuplicateAttempt = errors.New("carry-over attempt already recorded")

// ValidationError rejects a write that lacks required identity or data.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func required(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}
