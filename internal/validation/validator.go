// Package validation checks the preconditions of pipeline steps.
//
// Most analysis steps are optional: they run only when the columns they read
// are present. MissingColumns and HasColumns answer that question; the
// Validate* helpers turn a failed precondition into a typed error.
package validation

import (
	"fmt"

	"github.com/paveg/retail-eda/internal/errors"
)

// Validator checks one precondition.
type Validator interface {
	Validate() error
}

// ColumnProvider is the part of a DataFrame the validators look at.
type ColumnProvider interface {
	HasColumn(name string) bool
	Columns() []string
	Len() int
	Width() int
}

// MissingColumns returns the requested columns df lacks, in request order.
func MissingColumns(df ColumnProvider, columns ...string) []string {
	var missing []string
	for _, column := range columns {
		if !df.HasColumn(column) {
			missing = append(missing, column)
		}
	}
	return missing
}

// HasColumns reports whether df has every requested column.
func HasColumns(df ColumnProvider, columns ...string) bool {
	return len(MissingColumns(df, columns...)) == 0
}

// ColumnValidator requires every listed column to be present.
type ColumnValidator struct {
	df      ColumnProvider
	op      string
	columns []string
}

// NewColumnValidator returns a ColumnValidator reporting failures under op.
func NewColumnValidator(df ColumnProvider, op string, columns ...string) *ColumnValidator {
	return &ColumnValidator{df: df, op: op, columns: columns}
}

// Validate reports the first missing column.
func (v *ColumnValidator) Validate() error {
	if missing := MissingColumns(v.df, v.columns...); len(missing) > 0 {
		return errors.NewColumnNotFoundError(v.op, missing[0])
	}
	return nil
}

// LengthValidator requires a step to keep the row count it was given.
type LengthValidator struct {
	op, context      string
	expected, actual int
}

// NewLengthValidator compares actual against expected; context names the step.
func NewLengthValidator(expected, actual int, op, context string) *LengthValidator {
	return &LengthValidator{op: op, context: context, expected: expected, actual: actual}
}

func (v *LengthValidator) Validate() error {
	if v.expected != v.actual {
		message := fmt.Sprintf("%s: expected length %d, got %d", v.context, v.expected, v.actual)
		return errors.NewValidationError(v.op, "", message)
	}
	return nil
}

// EmptyDataFrameValidator requires at least one row.
type EmptyDataFrameValidator struct {
	df ColumnProvider
	op string
}

func NewEmptyDataFrameValidator(df ColumnProvider, op string) *EmptyDataFrameValidator {
	return &EmptyDataFrameValidator{df: df, op: op}
}

func (v *EmptyDataFrameValidator) Validate() error {
	if v.df.Len() > 0 {
		return nil
	}
	return &errors.Error{Kind: errors.KindValidation, Op: v.op, Message: "table has no rows"}
}

// CompoundValidator runs validators in order and stops at the first failure.
type CompoundValidator struct {
	validators []Validator
}

func NewCompoundValidator(validators ...Validator) *CompoundValidator {
	return &CompoundValidator{validators: validators}
}

func (v *CompoundValidator) Validate() error {
	for _, validator := range v.validators {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateColumns fails with a column error naming the first missing column.
func ValidateColumns(df ColumnProvider, op string, columns ...string) error {
	return NewColumnValidator(df, op, columns...).Validate()
}

// ValidateLength fails when a step changed the row count.
func ValidateLength(expected, actual int, op, context string) error {
	return NewLengthValidator(expected, actual, op, context).Validate()
}
