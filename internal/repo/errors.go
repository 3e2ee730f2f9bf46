package repo

import (
	"errors"
	"fmt"
)

// ErrProductNotFound is returned when a product is not found in the repository.
var ErrProductNotFound = errors.New("product not found")

// ErrCategoryNotFound is returned when a category is not found in the repository.
var ErrCategoryNotFound = errors.New("category not found")

// ErrInsufficientStock is returned when an outflow would drive stock negative.
// The movement is not recorded and the product is left untouched.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrCategoryInUse is returned when deleting a category still referenced by products.
var ErrCategoryInUse = errors.New("category is referenced by products")

// ErrProductHasMovements is returned when hard-deleting a product that still
// owns journal entries. Such products are archived instead.
var ErrProductHasMovements = errors.New("product has movement history")

// ErrTransactionFailed wraps a failed commit of the movement transaction.
// Callers may retry the whole operation; no partial effect remains.
var ErrTransactionFailed = errors.New("transaction failed")

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports a uniqueness violation on the named field.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}
