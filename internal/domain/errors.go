package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError reports a field that violates one of its constraints
type ValidationError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: violates %s", e.Field, e.Constraint)
}

// ConversionError reports a decimal that cannot be represented in storage
type ConversionError struct {
	Value string
	Err   error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot convert decimal %q for storage: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("cannot convert decimal %q for storage", e.Value)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// InsertionError reports that storage rejected a new product.
// Message is meant to be shown to the caller as is.
type InsertionError struct {
	Message string
}

func (e *InsertionError) Error() string {
	return e.Message
}

// NotFoundError reports that no product exists with the given ID
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product not found with id: %s", e.ID)
}
