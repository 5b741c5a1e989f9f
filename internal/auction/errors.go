package auction

import (
	"errors"
	"fmt"
)

// Category classifies operation failures so callers can decide whether a
// retry makes sense. Only persistence and conflict failures are retryable.
type Category string

const (
	CategoryValidation    Category = "validation"
	CategoryStateConflict Category = "state_conflict"
	CategoryAuthorization Category = "authorization"
	CategoryResource      Category = "resource"
	CategoryNotFound      Category = "not_found"
	CategoryConflict      Category = "conflict"
	CategoryPersistence   Category = "persistence"
)

type OpError struct {
	Category Category
	Message  string
	Err      error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func validationf(format string, args ...any) error {
	return &OpError{Category: CategoryValidation, Message: fmt.Sprintf(format, args...)}
}

func statef(format string, args ...any) error {
	return &OpError{Category: CategoryStateConflict, Message: fmt.Sprintf(format, args...)}
}

func authf(format string, args ...any) error {
	return &OpError{Category: CategoryAuthorization, Message: fmt.Sprintf(format, args...)}
}

func resourcef(format string, args ...any) error {
	return &OpError{Category: CategoryResource, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) error {
	return &OpError{Category: CategoryNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) error {
	return &OpError{Category: CategoryConflict, Message: fmt.Sprintf(format, args...)}
}

func persistence(msg string, err error) error {
	return &OpError{Category: CategoryPersistence, Message: msg, Err: err}
}

// NewAuthError reports an authorization failure raised outside the core
// operations, e.g. by the HTTP layer's admin gate.
func NewAuthError(msg string) error {
	return &OpError{Category: CategoryAuthorization, Message: msg}
}

// CategoryOf extracts the failure category; unknown errors are treated as
// persistence failures.
func CategoryOf(err error) Category {
	var op *OpError
	if errors.As(err, &op) {
		return op.Category
	}
	return CategoryPersistence
}
