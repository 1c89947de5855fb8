// Package features derives the analytical columns of the retail table and
// writes the augmented table to disk.
//
// Derivations run in a fixed order and each one is skipped when a column it
// reads is missing. Undefined numeric results are stored as 0, never as NaN
// or infinity.
package features

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/paveg/retail-eda/internal/clean"
	"github.com/paveg/retail-eda/internal/dataframe"
	dfio "github.com/paveg/retail-eda/internal/io"
	"github.com/paveg/retail-eda/internal/validation"
)

// Source columns.
const (
	OrderDateColumn  = "Order Date"
	ShipDateColumn   = "Ship Date"
	SalesColumn      = "Sales"
	ProfitColumn     = "Profit"
	QuantityColumn   = "Quantity"
	DiscountColumn   = "Discount"
	CustomerIDColumn = "Customer ID"
	OrderIDColumn    = "Order ID"
	CategoryColumn   = "Category"
)

// Derived columns.
const (
	ProfitMarginColumn       = "ProfitMargin"
	OrderYearColumn          = "OrderYear"
	OrderMonthColumn         = "OrderMonth"
	OrderMonthNameColumn     = "OrderMonthName"
	OrderDayColumn           = "OrderDay"
	OrderWeekdayColumn       = "OrderWeekday"
	DeliveryDaysColumn       = "DeliveryDays"
	RevPerUnitColumn         = "RevPerUnit"
	HighDiscountFlagColumn   = "HighDiscountFlag"
	CustTotalSalesColumn     = "cust_total_sales"
	CustTotalOrdersColumn    = "cust_total_orders"
	CustAvgOrderValueColumn  = "cust_avg_order_value"
	RepeatCustomerFlagColumn = "RepeatCustomerFlag"
	CategoryLabelColumn      = "Category_Label"
	DaysSinceOrderColumn     = "DaysSinceOrder"
	YearMonthColumn          = "YearMonth"
)

const (
	// MissingDeliveryDays marks a row whose delivery time is unknown.
	MissingDeliveryDays = -1

	// YearMonthLayout formats the monthly period.
	YearMonthLayout = "2006-01"
)

// Options configures the feature engineer.
type Options struct {
	DateLayouts           []string
	HighDiscountThreshold float64
}

// Output names the files the feature table is written to. ParquetPath is
// optional.
type Output struct {
	CSVPath     string
	Encoding    string
	ParquetPath string
}

// Result is the augmented table plus the names of the derivations that ran
// and of those skipped for missing columns.
type Result struct {
	Frame   *dataframe.DataFrame
	Applied []string
	Skipped []string
}

type step struct {
	name     string
	requires []string
	apply    func(*dataframe.DataFrame) (*dataframe.DataFrame, error)
}

// Engineer derives the feature columns.
type Engineer struct {
	opts   Options
	logger *slog.Logger
}

// New creates an engineer. A nil logger discards log output.
func New(opts Options, logger *slog.Logger) *Engineer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engineer{opts: opts, logger: logger}
}

func (e *Engineer) steps() []step {
	return []step{
		{
			name:     ProfitMarginColumn,
			requires: []string{SalesColumn, ProfitColumn},
			apply: func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
				return Ratio(df, ProfitColumn, SalesColumn, ProfitMarginColumn)
			},
		},
		{
			name:     "calendar parts",
			requires: []string{OrderDateColumn},
			apply: func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
				df, err := e.parseDates(df, OrderDateColumn)
				if err != nil {
					return nil, err
				}
				return CalendarParts(df, OrderDateColumn)
			},
		},
		{
			name:     DeliveryDaysColumn,
			requires: []string{ShipDateColumn, OrderDateColumn},
			apply: func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
				df, err := e.parseDates(df, ShipDateColumn)
				if err != nil {
					return nil, err
				}
				return DeliveryDays(df, ShipDateColumn, OrderDateColumn)
			},
		},
		{
			name:     RevPerUnitColumn,
			requires: []string{SalesColumn, QuantityColumn},
			apply: func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
				return Ratio(df, SalesColumn, QuantityColumn, RevPerUnitColumn)
			},
		},
		{
			name:     HighDiscountFlagColumn,
			requires: []string{DiscountColumn},
			apply: func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
				return HighDiscountFlag(df, DiscountColumn, e.opts.HighDiscountThreshold)
			},
		},
		{
			name:     "customer aggregates",
			requires: []string{CustomerIDColumn, SalesColumn, OrderIDColumn},
			apply:    CustomerAggregates,
		},
		{
			name:     CategoryLabelColumn,
			requires: []string{CategoryColumn},
			apply: func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
				return CategoryLabel(df, CategoryColumn, CategoryLabelColumn)
			},
		},
		{
			name:     DaysSinceOrderColumn,
			requires: []string{OrderDateColumn},
			apply: func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
				return DaysSince(df, OrderDateColumn, DaysSinceOrderColumn)
			},
		},
		{
			name:     YearMonthColumn,
			requires: []string{OrderDateColumn},
			apply: func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
				return YearMonth(df, OrderDateColumn, YearMonthColumn)
			},
		},
	}
}

// parseDates makes sure column holds dates; text is parsed leniently.
func (e *Engineer) parseDates(df *dataframe.DataFrame, column string) (*dataframe.DataFrame, error) {
	parsed, invalid, err := clean.ParseDates(df, column, e.opts.DateLayouts)
	if err != nil {
		return nil, err
	}
	if invalid > 0 {
		e.logger.Warn("unparseable dates set to null", "column", column, "count", invalid)
	}
	return parsed, nil
}

// Apply runs every derivation whose source columns are present.
func (e *Engineer) Apply(df *dataframe.DataFrame) (*Result, error) {
	result := &Result{}
	rows := df.Len()

	for _, s := range e.steps() {
		if missing := validation.MissingColumns(df, s.requires...); len(missing) > 0 {
			e.logger.Debug("skipping feature", "feature", s.name, "missing", missing)
			result.Skipped = append(result.Skipped, s.name)
			continue
		}

		next, err := s.apply(df)
		if err != nil {
			return nil, fmt.Errorf("deriving %s: %w", s.name, err)
		}
		if err := validation.ValidateLength(rows, next.Len(), "Features", s.name); err != nil {
			return nil, err
		}

		df = next
		result.Applied = append(result.Applied, s.name)
	}

	result.Frame = df
	return result, nil
}

// Save writes df to the CSV file, and to Parquet when a path is set.
func Save(df *dataframe.DataFrame, out Output) error {
	options := dfio.DefaultCSVOptions()
	options.Encoding = out.Encoding
	if err := dfio.WriteCSVFile(out.CSVPath, df, options); err != nil {
		return err
	}

	if out.ParquetPath != "" {
		if err := dfio.WriteParquetFile(out.ParquetPath, df, dfio.DefaultParquetOptions()); err != nil {
			return err
		}
	}
	return nil
}
