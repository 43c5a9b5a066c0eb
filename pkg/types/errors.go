package types

import (
	"errors"
	"fmt"
)

// Store errors.
var (
	ErrNotFound            = errors.New("entity not found")
	ErrDuplicateMedicine   = errors.New("medicine already exists")
	ErrStoreClosed         = errors.New("store is closed")
	ErrExportSourceMissing = errors.New("database file not found")
	ErrInvalidID           = errors.New("invalid id")
)

// ValidationError reports a recoverable input problem the user can correct.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid returns a *ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
