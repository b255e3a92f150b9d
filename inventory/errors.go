/*
errors.go - Centralized error types for the inventory core

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match with errors.Is/errors.As; the structured types carry
  enough context to build a user-facing message without string parsing.

ERROR CATEGORIES:
  1. Validation errors - Negative price/quantity/threshold
  2. Lookup errors     - Unknown product code
  3. Conflict errors   - Adding an already-registered code
  4. Persistence errors - Backend load/save failures (recoverable)

USAGE:
  if errors.Is(err, inventory.ErrNotFound) {
      // surface "product not registered" and re-prompt
  }

SEE ALSO:
  - inventory.go: Raises lookup/conflict errors
  - product.go:   Raises validation errors
*/
package inventory

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when input violates a domain invariant
	// (negative price, negative quantity, negative threshold).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a product code is not registered.
	ErrNotFound = errors.New("product not found")

	// ErrDuplicateCode is returned when adding a product whose code is
	// already registered. Codes are the unique identity of a product.
	ErrDuplicateCode = errors.New("duplicate product code")

	// ErrPersistence is returned when a storage backend fails to load or
	// save. Callers should treat it as recoverable: fall back to the
	// in-memory state rather than crash.
	ErrPersistence = errors.New("persistence failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which field violated which invariant.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError reports the product code that missed.
type NotFoundError struct {
	Code int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.Code)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DuplicateCodeError reports the code that collided.
type DuplicateCodeError struct {
	Code int
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("product %d already registered", e.Code)
}

func (e *DuplicateCodeError) Unwrap() error { return ErrDuplicateCode }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicateCode)
}

// IsNotFound returns true if the error indicates a missing product.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
