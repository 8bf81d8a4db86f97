package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity does not exist or is not owned by
// the requesting user. The two cases are reported identically.
var ErrNotFound = errors.New("not found")

var ErrUnauthorized = errors.New("unauthorized")

// ValidationError rejects malformed input before any state is changed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) error {
	return ValidationError{Field: field, Reason: reason}
}

// PersistenceError wraps a failure of the underlying store
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}
