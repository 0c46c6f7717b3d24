package domain

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnsupported  = errors.New("unsupported operation")
	ErrInternal     = errors.New("internal error")
	ErrUnavailable  = errors.New("service unavailable")
	ErrRateLimited  = errors.New("rate limit exceeded")
)

// Specific errors.
var (
	ErrCollectionNotFound  = fmt.Errorf("collection: %w", ErrNotFound)
	ErrInvalidCoordinate   = fmt.Errorf("coordinate: %w", ErrInvalidInput)
	ErrInvalidBounds       = fmt.Errorf("bounds: %w", ErrInvalidInput)
	ErrMalformedShape      = fmt.Errorf("shape: %w", ErrInvalidInput)
	ErrEmptyGeometry       = fmt.Errorf("empty geometry: %w", ErrInvalidInput)
	ErrUnsupportedGeometry = fmt.Errorf("geometry type: %w", ErrUnsupported)
	ErrEllipsoidMismatch   = fmt.Errorf("ellipsoids do not match: %w", ErrInvalidInput)
	ErrNotConverging       = fmt.Errorf("distance did not converge: %w", ErrInternal)
	ErrNotReady            = fmt.Errorf("service not ready: %w", ErrUnavailable)
	ErrStorageUnavailable  = fmt.Errorf("storage: %w", ErrUnavailable)
)

// ValidationError represents a detailed validation error.
type ValidationError struct {
	Field      string      // Field that failed validation
	Value      interface{} // The invalid value
	Constraint string      // The constraint that was violated
	Message    string      // Human-readable message
	Err        error       // Specific sentinel; ErrInvalidInput when nil
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v, constraint: %s)",
		e.Field, e.Message, e.Value, e.Constraint)
}

// Unwrap returns the specific sentinel, which itself wraps ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// ShapeError reports a shape that cannot support containment or segment derivation.
type ShapeError struct {
	Kind   Kind   // Kind of the offending shape
	Points int    // Number of points the shape holds
	Reason string // What is wrong with it
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("malformed %s with %d points: %s", e.Kind, e.Points, e.Reason)
}

// Unwrap returns ErrMalformedShape.
func (e *ShapeError) Unwrap() error {
	return ErrMalformedShape
}

// DecodeError represents a failure to turn an encoded document into shapes.
type DecodeError struct {
	Source string // File, object key or "request"
	Err    error  // Underlying error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("decode error in %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("decode error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StorageError represents an error during storage operations.
type StorageError struct {
	Operation string // Operation that failed (list, read, etc.)
	Key       string // Object key
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage error during %s for %s: %v",
			e.Operation, e.Key, e.Err)
	}
	return fmt.Sprintf("storage error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string // Configuration field
	Message string // Error message
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error type.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidInput
}
