package service

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateSubmission    = errors.New("an identical request is already being processed")
	ErrDepositAddressNotFound = errors.New("no deposit address configured for this coin and network")
)

// ValidationError is a form-level rejection raised before any request leaves
// for the payments API. Message is user facing.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
