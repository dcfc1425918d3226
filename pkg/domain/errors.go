package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the caller fails an ownership or approval
// check.
var ErrUnauthorized = errors.New("unauthorized")

// NotFoundError is returned when a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError is returned when an operation would violate a uniqueness or
// single-active invariant, such as minting an existing token id or creating a
// sale while one is active.
type ConflictError struct {
	Reason string
}

func (e ConflictError) Error() string { return e.Reason }

// InvalidInputError is returned for malformed payloads: zero supply, inverted
// time windows, zero prices, insufficient funds.
type InvalidInputError struct {
	Reason string
}

func (e InvalidInputError) Error() string { return e.Reason }

// StorageError wraps a failure surfaced by the persistence collaborator.
type StorageError struct {
	Err error
}

func (e StorageError) Error() string { return fmt.Sprintf("storage: %v", e.Err) }

// Unwrap exposes the underlying storage failure.
func (e StorageError) Unwrap() error { return e.Err }

// ModuleError tags a module failure with the module that produced it. Any
// module error aborts the entire call; the dispatcher wraps and rethrows.
type ModuleError struct {
	Module string
	Err    error
}

func (e ModuleError) Error() string { return fmt.Sprintf("module %s: %v", e.Module, e.Err) }

// Unwrap exposes the module-scoped error for errors.Is / errors.As.
func (e ModuleError) Unwrap() error { return e.Err }

// ModuleNotFoundError is returned when a tagged message addresses a module
// the contract does not register.
type ModuleNotFoundError struct {
	Module string
}

func (e ModuleNotFoundError) Error() string {
	return fmt.Sprintf("module %s not found", e.Module)
}

// IsNotFound reports whether err carries a NotFoundError anywhere in its chain.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err carries a ConflictError anywhere in its chain.
func IsConflict(err error) bool {
	var c ConflictError
	return errors.As(err, &c)
}

// IsInvalidInput reports whether err carries an InvalidInputError.
func IsInvalidInput(err error) bool {
	var i InvalidInputError
	return errors.As(err, &i)
}
