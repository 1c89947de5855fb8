// Package clean is the first transformation stage: it reports missing
// values, removes exact duplicate rows and turns the order date text into
// dates.
package clean

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/paveg/retail-eda/internal/dataframe"
	"github.com/paveg/retail-eda/internal/report"
)

// Column names the cleaner reads and writes.
const (
	OrderDateColumn = "Order Date"
	YearColumn      = "Year"
	MonthColumn     = "Month"
)

// Options configures the cleaner.
type Options struct {
	DateLayouts []string
}

// Result is the cleaned table plus what was done to it.
type Result struct {
	Frame             *dataframe.DataFrame
	DuplicatesRemoved int
	InvalidDates      int
	DatesParsed       bool
}

// Cleaner runs the cleaning steps and prints their console report to out.
type Cleaner struct {
	opts   Options
	out    io.Writer
	logger *slog.Logger
}

// New creates a cleaner. A nil logger discards log output.
func New(opts Options, out io.Writer, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cleaner{opts: opts, out: out, logger: logger}
}

// Run prints the missing-value counts, drops duplicates and, when the table
// has an order date column, parses it and derives Year and Month.
func (c *Cleaner) Run(df *dataframe.DataFrame) (*Result, error) {
	fmt.Fprintln(c.out, "\nMissing values:")
	report.RenderCounts(c.out, df.NullCounts())

	deduped, removed, err := df.DropDuplicates()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(c.out, "\nRemoved %d duplicate rows\n", removed)
	c.logger.Debug("dropped duplicates", "removed", removed, "rows", deduped.Len())

	result := &Result{Frame: deduped, DuplicatesRemoved: removed}

	if !deduped.HasColumn(OrderDateColumn) {
		c.logger.Debug("skipping date parsing", "missing", OrderDateColumn)
		return result, nil
	}

	parsed, invalid, err := ParseDates(deduped, OrderDateColumn, c.opts.DateLayouts)
	if err != nil {
		return nil, err
	}
	if invalid > 0 {
		c.logger.Warn("unparseable dates set to null", "column", OrderDateColumn, "count", invalid)
	}

	withParts, err := AddYearMonth(parsed, OrderDateColumn, YearColumn, MonthColumn)
	if err != nil {
		return nil, err
	}

	result.Frame = withParts
	result.InvalidDates = invalid
	result.DatesParsed = true
	return result, nil
}
