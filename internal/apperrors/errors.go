package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that an operation is illegal in the resource's current state.
var ErrConflict = errors.New("operation conflicts with resource state")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// InsufficientStockError reports a stock movement that would drive a
// stock quantity below zero.
type InsufficientStockError struct {
	ProductID   string
	InventoryID string
	Available   int64
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s in inventory %s: available %d, requested %d",
		e.ProductID, e.InventoryID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrValidation
}

// InsufficientCapacityError reports a stock movement that would exceed an
// inventory's remaining free capacity.
type InsufficientCapacityError struct {
	InventoryID string
	Available   int64
	Requested   int64
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity in inventory %s: available %d, requested %d",
		e.InventoryID, e.Available, e.Requested)
}

func (e *InsufficientCapacityError) Unwrap() error {
	return ErrValidation
}

// AppError wraps a lower-level error with an HTTP-ish status code and message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
