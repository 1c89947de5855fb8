// Package dataframe provides the in-memory table the analysis pipeline works on.
//
// A DataFrame is an ordered set of equally long Arrow-backed series. Operations
// never mutate the receiver: they return a new DataFrame that may share
// unchanged columns with the original.
package dataframe

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/retail-eda/internal/errors"
)

// DataFrame represents a table of data with typed columns
type DataFrame struct {
	columns map[string]ISeries
	order   []string // Maintains column order
	mem     memory.Allocator
}

// ColumnCount pairs a column name with a count, e.g. its number of nulls.
type ColumnCount struct {
	Column string
	Count  int
}

// New creates a new DataFrame from a slice of ISeries
func New(series ...ISeries) *DataFrame {
	columns := make(map[string]ISeries)
	order := make([]string, 0, len(series))

	for _, s := range series {
		name := s.Name()
		if _, exists := columns[name]; !exists {
			order = append(order, name)
		}
		columns[name] = s
	}

	return &DataFrame{
		columns: columns,
		order:   order,
		mem:     memory.NewGoAllocator(),
	}
}

// Columns returns the names of all columns in order
func (df *DataFrame) Columns() []string {
	if len(df.order) == 0 {
		return []string{}
	}
	return append([]string(nil), df.order...)
}

// Len returns the number of rows
func (df *DataFrame) Len() int {
	if len(df.order) == 0 {
		return 0
	}
	return df.columns[df.order[0]].Len()
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.order)
}

// Shape returns the (rows, columns) pair.
func (df *DataFrame) Shape() (int, int) {
	return df.Len(), df.Width()
}

// Column returns the series for the given column name
func (df *DataFrame) Column(name string) (ISeries, bool) {
	series, exists := df.columns[name]
	return series, exists
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(name string) bool {
	_, exists := df.columns[name]
	return exists
}

// Select returns a new DataFrame with only the specified columns.
// Unknown names are ignored.
func (df *DataFrame) Select(names ...string) *DataFrame {
	selected := make([]ISeries, 0, len(names))
	for _, name := range names {
		if series, exists := df.columns[name]; exists {
			selected = append(selected, series)
		}
	}
	return New(selected...)
}

// Drop returns a new DataFrame without the specified columns
func (df *DataFrame) Drop(names ...string) *DataFrame {
	dropSet := make(map[string]bool, len(names))
	for _, name := range names {
		dropSet[name] = true
	}

	kept := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		if !dropSet[name] {
			kept = append(kept, df.columns[name])
		}
	}
	return New(kept...)
}

// WithColumn returns a new DataFrame with s added as the last column, or
// replacing the existing column of the same name in place.
func (df *DataFrame) WithColumn(s ISeries) (*DataFrame, error) {
	if df.Width() > 0 && s.Len() != df.Len() {
		return nil, errors.NewValidationError("WithColumn", s.Name(),
			fmt.Sprintf("expected length %d, got %d", df.Len(), s.Len()))
	}

	updated := make([]ISeries, 0, len(df.order)+1)
	replaced := false
	for _, name := range df.order {
		if name == s.Name() {
			updated = append(updated, s)
			replaced = true
			continue
		}
		updated = append(updated, df.columns[name])
	}
	if !replaced {
		updated = append(updated, s)
	}
	return New(updated...), nil
}

// NullCounts returns the number of nulls per column, in column order.
func (df *DataFrame) NullCounts() []ColumnCount {
	counts := make([]ColumnCount, 0, len(df.order))
	for _, name := range df.order {
		counts = append(counts, ColumnCount{Column: name, Count: df.columns[name].NullCount()})
	}
	return counts
}

// Row returns the textual values of row i, in column order.
func (df *DataFrame) Row(i int) []string {
	row := make([]string, len(df.order))
	for j, name := range df.order {
		row[j] = df.columns[name].GetAsString(i)
	}
	return row
}

// String returns a string representation of the DataFrame
func (df *DataFrame) String() string {
	if len(df.columns) == 0 {
		return "DataFrame[empty]"
	}

	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.Len(), df.Width())}

	for _, name := range df.order {
		series := df.columns[name]
		parts = append(parts, fmt.Sprintf("  %s: %s", name, series.DataType().String()))
	}

	return strings.Join(parts, "\n")
}

// Release releases all underlying Arrow memory.
// Frames derived from this one may share columns; release only the last owner.
func (df *DataFrame) Release() {
	for _, series := range df.columns {
		series.Release()
	}
}
