package errors

import (
	"errors"
	"fmt"
	"time"
)

// Error types for the codescope analysis engine
type ErrorType string

const (
	// Path errors
	ErrorTypePathValidation ErrorType = "path_validation"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeSizeLimit      ErrorType = "size_limit"

	// Analysis errors
	ErrorTypeNotAnalyzed ErrorType = "not_analyzed"
	ErrorTypeProcessing  ErrorType = "processing"

	// Internal errors
	ErrorTypeCache ErrorType = "cache"
)

// OperationError represents a failure in a single engine or store operation
type OperationError struct {
	Type       ErrorType
	Operation  string
	Path       string
	Underlying error
	Timestamp  time.Time
}

// New creates an operation error of the given type
func New(typ ErrorType, op string, err error) *OperationError {
	return &OperationError{
		Type:       typ,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Newf creates an operation error with a formatted underlying message
func Newf(typ ErrorType, op string, format string, args ...any) *OperationError {
	return New(typ, op, fmt.Errorf(format, args...))
}

// WithPath adds the affected path to the error
func (e *OperationError) WithPath(path string) *OperationError {
	e.Path = path
	return e
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s failed for %s: %v", e.Type, e.Operation, e.Path, e.Underlying)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Type, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *OperationError) Unwrap() error {
	return e.Underlying
}

// TypeOf returns the ErrorType of err, or the empty string if err is not
// an OperationError
func TypeOf(err error) ErrorType {
	var oe *OperationError
	if errors.As(err, &oe) {
		return oe.Type
	}
	return ""
}

// IsType reports whether err is an OperationError of the given type
func IsType(err error, typ ErrorType) bool {
	return TypeOf(err) == typ
}

// IsPathValidation reports whether err is a path validation failure
func IsPathValidation(err error) bool { return IsType(err, ErrorTypePathValidation) }

// IsNotFound reports whether err is a missing-file failure
func IsNotFound(err error) bool { return IsType(err, ErrorTypeNotFound) }

// IsSizeLimit reports whether err is a size limit failure
func IsSizeLimit(err error) bool { return IsType(err, ErrorTypeSizeLimit) }

// IsNotAnalyzed reports whether err indicates a missing cached context
func IsNotAnalyzed(err error) bool { return IsType(err, ErrorTypeNotAnalyzed) }
