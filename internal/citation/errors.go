package citation

import (
	"errors"
	"fmt"
)

// ErrMissingRequiredField indicates a record lacks a field citations need.
var ErrMissingRequiredField = errors.New("missing required field")

// MissingFieldError names the field that prevented formatting.
type MissingFieldError struct {
	RecordID string
	Field    string
}

func (e *MissingFieldError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("%s: %s (record %s)", ErrMissingRequiredField, e.Field, e.RecordID)
	}
	return fmt.Sprintf("%s: %s", ErrMissingRequiredField, e.Field)
}

// Unwrap makes errors.Is(err, ErrMissingRequiredField) hold.
func (e *MissingFieldError) Unwrap() error {
	return ErrMissingRequiredField
}
