package models

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the referenced record does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidState indicates an attempt to mutate a finalized record.
var ErrInvalidState = errors.New("invalid state")

// ErrEmptyCollection indicates a collection with no eggs.
var ErrEmptyCollection = errors.New("collection has no eggs")

// ErrSpeedModeRequired indicates a bulk operation was requested while tracking per color.
var ErrSpeedModeRequired = errors.New("operation requires speed mode")

// InsufficientStockError is returned when a debit exceeds the loose eggs on hand.
type InsufficientStockError struct {
	Category  CategoryID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.Category, e.Requested, e.Available)
}

// InvalidCartonSizeError is returned for carton or pack sizes outside the allowed range.
type InvalidCartonSizeError struct {
	Value int
}

func (e *InvalidCartonSizeError) Error() string {
	return fmt.Sprintf("invalid carton size %d", e.Value)
}

// InvalidSaleInputError names the sale field that failed validation.
type InvalidSaleInputError struct {
	Field string
}

func (e *InvalidSaleInputError) Error() string {
	return fmt.Sprintf("invalid sale input: %s", e.Field)
}

// UnknownCategoryError is returned for ids missing from the catalog.
type UnknownCategoryError struct {
	ID CategoryID
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q", string(e.ID))
}

// InvalidInputError is returned when a raw value cannot be converted.
type InvalidInputError struct {
	Field string
	Value string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// PersistenceError wraps a storage failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError unless it is nil or already one.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
