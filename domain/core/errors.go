package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrMalformedLog = errors.New("malformed episode log")
	ErrMissingField = errors.New("missing required field")
	ErrRaggedColumn = errors.New("column length mismatch")
	ErrEmptyBatch   = errors.New("no datasets supplied")

	// Lookup errors
	ErrNotFound      = errors.New("resource not found")
	ErrBatchNotFound = fmt.Errorf("%w: batch", ErrNotFound)
)

// Error constructors with context
func NewMalformedLogError(dataset string, cause error) error {
	return fmt.Errorf("%w: dataset %q: %v", ErrMalformedLog, dataset, cause)
}

func NewMissingFieldError(dataset, field string) error {
	return fmt.Errorf("%w: dataset %q field %q", ErrMissingField, dataset, field)
}

func NewRaggedColumnError(dataset, field string, got, want int) error {
	return fmt.Errorf("%w: dataset %q field %q has %d values, expected %d", ErrRaggedColumn, dataset, field, got, want)
}

// Error checking helpers
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrMissingField) || errors.Is(err, ErrRaggedColumn)
}

func IsParseError(err error) bool {
	return errors.Is(err, ErrMalformedLog)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
