package errs

import (
	"context"
	"errors"
	"fmt"
)

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound  = errors.New("not_found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
	ErrInvalid   = errors.New("invalid")
	// ErrUnauthorized signals missing or bad credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInsufficientFunds rejects an expense larger than the account balance.
	ErrInsufficientFunds = errors.New("insufficient_funds")
	// ErrStorage marks failures of the underlying persistence layer.
	ErrStorage = errors.New("storage")
)

// FieldError reports a single invalid or missing input field.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Msg }

// Unwrap lets errors.Is(err, ErrInvalid) match field errors.
func (e *FieldError) Unwrap() error { return ErrInvalid }

// Field builds a FieldError.
func Field(field, msg string) error { return &FieldError{Field: field, Msg: msg} }

// StorageError wraps a persistence failure with the operation that produced it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// Storage wraps err as a StorageError unless it already carries a domain sentinel.
// Context cancellation and deadlines pass through so callers see the request ended.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict), errors.Is(err, ErrInvalid),
		errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrStorage):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return &StorageError{Op: op, Err: err}
}
