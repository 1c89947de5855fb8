// Package errors provides the error type shared by every stage of the
// analysis pipeline. Error carries the failing operation, the column it was
// working on and a Kind that classifies the failure, with wrapping support.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindIO
	KindParse
	KindColumn
	KindValidation
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindColumn:
		return "column"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Error represents standardized errors across table and pipeline operations
type Error struct {
	Kind    Kind
	Op      string // Operation name (e.g., "ReadCSV", "GroupBy", "LeftJoin")
	Column  string // Column name if applicable
	Path    string // File path for I/O failures
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	switch {
	case e.Column != "":
		return fmt.Sprintf("%s operation failed on column '%s': %s", e.Op, e.Column, msg)
	case e.Path != "":
		return fmt.Sprintf("%s operation failed on '%s': %s", e.Op, e.Path, msg)
	default:
		return fmt.Sprintf("%s operation failed: %s", e.Op, msg)
	}
}

// Unwrap returns the underlying cause for error wrapping support
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is()
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind && e.Op == other.Op && e.Column == other.Column && e.Message == other.Message
}

// IsKind reports whether err is an *Error of the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// NewColumnNotFoundError creates an error for operations on non-existent columns
func NewColumnNotFoundError(op, column string) *Error {
	return &Error{
		Kind:    KindColumn,
		Op:      op,
		Column:  column,
		Message: "column does not exist",
	}
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Op:      op,
		Message: message,
	}
}

// NewUnsupportedTypeError creates an error for unsupported column types
func NewUnsupportedTypeError(op, column, typeName string) *Error {
	return &Error{
		Kind:    KindColumn,
		Op:      op,
		Column:  column,
		Message: fmt.Sprintf("unsupported type: %s", typeName),
	}
}

// NewValidationError creates an error for input validation failures
func NewValidationError(op, column, message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Op:      op,
		Column:  column,
		Message: message,
	}
}

// NewIOError creates an error for file system and stream failures
func NewIOError(op, path string, cause error) *Error {
	return &Error{
		Kind:    KindIO,
		Op:      op,
		Path:    path,
		Message: "i/o failure",
		Cause:   cause,
	}
}

// NewParseError creates an error for malformed input data
func NewParseError(op, path string, cause error) *Error {
	return &Error{
		Kind:    KindParse,
		Op:      op,
		Path:    path,
		Message: "malformed input",
		Cause:   cause,
	}
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *Error {
	return &Error{
		Kind:    KindInternal,
		Op:      op,
		Message: "internal error occurred",
		Cause:   cause,
	}
}

// ErrEmptyDataFrame indicates operations that need at least one row
var ErrEmptyDataFrame = &Error{
	Kind:    KindValidation,
	Op:      "validation",
	Message: "operation not supported on empty DataFrame",
}
