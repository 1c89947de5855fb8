// Package testutil provides retail fixtures shared by the package tests.
//
// Fixtures are produced as CSV text first and loaded through the real CSV
// reader, so a frame built here has exactly the column types the pipeline
// sees at run time: dates are raw text, Quantity is int64, money columns are
// float64.
package testutil

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/retail-eda/internal/dataframe"
	"github.com/paveg/retail-eda/internal/io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// defaultRowCount is the default number of rows in retail fixtures.
	defaultRowCount = 12

	// sourceDateLayout is how the raw file writes dates.
	sourceDateLayout = "1/2/2006"
)

// RetailColumns lists the fixture columns in file order.
var RetailColumns = []string{
	"Order ID", "Order Date", "Ship Date", "Ship Mode", "Customer ID", "Segment",
	"Region", "Category", "Sub-Category", "Sales", "Quantity", "Discount", "Profit",
}

var (
	customerIDs   = []string{"CG-12520", "DV-13045", "SO-20335", "BH-11710"}
	regions       = []string{"West", "East", "Central", "South"}
	shipModes     = []string{"Second Class", "Standard Class", "First Class", "Same Day"}
	segments      = []string{"Consumer", "Corporate", "Home Office"}
	discounts     = []float64{0, 0.2, 0.45, 0.1, 0.8}
	subCategories = [][2]string{
		{"Furniture", "Chairs"}, {"Furniture", "Tables"}, {"Office Supplies", "Binders"},
		{"Office Supplies", "Paper"}, {"Technology", "Phones"}, {"Technology", "Accessories"},
		{"Furniture", "Bookcases"}, {"Office Supplies", "Art"}, {"Office Supplies", "Storage"},
		{"Technology", "Copiers"}, {"Office Supplies", "Labels"}, {"Furniture", "Furnishings"},
	}
)

// TestMemoryContext provides memory allocator with automatic cleanup.
type TestMemoryContext struct {
	Allocator memory.Allocator
	cleanup   func()
}

// Release performs cleanup of the memory context.
func (tmc *TestMemoryContext) Release() {
	if tmc.cleanup != nil {
		tmc.cleanup()
	}
}

// SetupMemoryTest creates a memory allocator for tests.
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	return &TestMemoryContext{
		Allocator: memory.NewGoAllocator(),
		cleanup:   func() {},
	}
}

// RetailOption configures retail fixture creation.
type RetailOption func(*retailConfig)

type retailConfig struct {
	rowCount   int
	duplicates int
	drop       []string
	overrides  map[[2]int]string
}

// WithRowCount sets the number of distinct rows.
func WithRowCount(count int) RetailOption {
	return func(cfg *retailConfig) {
		cfg.rowCount = count
	}
}

// WithDuplicates appends exact copies of the first n rows.
func WithDuplicates(n int) RetailOption {
	return func(cfg *retailConfig) {
		cfg.duplicates = n
	}
}

// WithoutColumns removes the named columns from the fixture.
func WithoutColumns(names ...string) RetailOption {
	return func(cfg *retailConfig) {
		cfg.drop = append(cfg.drop, names...)
	}
}

// WithCell replaces the text of one cell before duplicates are appended.
// An empty value produces a null.
func WithCell(row int, column, value string) RetailOption {
	return func(cfg *retailConfig) {
		col := slices.Index(RetailColumns, column)
		if col < 0 {
			panic(fmt.Sprintf("testutil: unknown column %q", column))
		}
		cfg.overrides[[2]int{row, col}] = value
	}
}

// RetailRecords returns the fixture as CSV records, header first.
func RetailRecords(opts ...RetailOption) [][]string {
	cfg := &retailConfig{
		rowCount:  defaultRowCount,
		overrides: make(map[[2]int]string),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	rows := make([][]string, 0, cfg.rowCount+cfg.duplicates)
	for i := range cfg.rowCount {
		rows = append(rows, retailRow(i))
	}
	for key, value := range cfg.overrides {
		if key[0] < len(rows) {
			rows[key[0]][key[1]] = value
		}
	}
	for i := range min(cfg.duplicates, len(rows)) {
		rows = append(rows, slices.Clone(rows[i]))
	}

	keep := make([]int, 0, len(RetailColumns))
	for i, name := range RetailColumns {
		if !slices.Contains(cfg.drop, name) {
			keep = append(keep, i)
		}
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, project(RetailColumns, keep))
	for _, row := range rows {
		records = append(records, project(row, keep))
	}
	return records
}

// RetailCSV renders the fixture as UTF-8 CSV text.
func RetailCSV(opts ...RetailOption) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.WriteAll(RetailRecords(opts...))
	return sb.String()
}

// WriteRetailCSV writes the fixture into dir and returns its path.
func WriteRetailCSV(tb testing.TB, dir string, opts ...RetailOption) string {
	tb.Helper()
	path := filepath.Join(dir, "superstore.csv")
	require.NoError(tb, os.WriteFile(path, []byte(RetailCSV(opts...)), 0o600))
	return path
}

// CreateRetailDataFrame loads the fixture through the CSV reader.
func CreateRetailDataFrame(tb testing.TB, allocator memory.Allocator, opts ...RetailOption) *dataframe.DataFrame {
	tb.Helper()
	options := io.DefaultCSVOptions()
	options.Encoding = "utf-8"
	df, err := io.NewCSVReader(strings.NewReader(RetailCSV(opts...)), options, allocator).Read()
	require.NoError(tb, err)
	return df
}

// RetailOrderDate returns the order date of fixture row i.
func RetailOrderDate(i int) time.Time {
	return time.Date(2014+i%4, time.Month(1+i%12), 1+(i*7)%28, 0, 0, 0, 0, time.UTC)
}

func retailRow(i int) []string {
	orderDate := RetailOrderDate(i)
	shipDate := orderDate.AddDate(0, 0, i%5)
	category := subCategories[i%len(subCategories)]
	sales := 10 + float64((i*37)%500) + 0.25
	discount := discounts[i%len(discounts)]
	profit := math.Round((sales*0.2-discount*sales*0.5)*100) / 100

	return []string{
		fmt.Sprintf("CA-%d-%06d", orderDate.Year(), 100000+i/2),
		orderDate.Format(sourceDateLayout),
		shipDate.Format(sourceDateLayout),
		shipModes[i%len(shipModes)],
		customerIDs[i%len(customerIDs)],
		segments[i%len(segments)],
		regions[(i/2)%len(regions)],
		category[0],
		category[1],
		strconv.FormatFloat(sales, 'f', -1, 64),
		strconv.Itoa(1 + i%7),
		strconv.FormatFloat(discount, 'f', -1, 64),
		strconv.FormatFloat(profit, 'f', -1, 64),
	}
}

func project(row []string, keep []int) []string {
	out := make([]string, len(keep))
	for i, idx := range keep {
		out[i] = row[idx]
	}
	return out
}

// AssertDataFrameHasColumns verifies that a DataFrame has the expected columns.
func AssertDataFrameHasColumns(t *testing.T, df *dataframe.DataFrame, expectedColumns []string) {
	t.Helper()

	require.NotNil(t, df, "DataFrame should not be nil")
	for _, col := range expectedColumns {
		assert.True(t, df.HasColumn(col), "DataFrame should have column %s", col)
	}
}

// AssertDataFrameEqual compares two frames cell by cell in their text form.
func AssertDataFrameEqual(t *testing.T, expected, actual *dataframe.DataFrame) {
	t.Helper()

	require.NotNil(t, expected, "expected DataFrame should not be nil")
	require.NotNil(t, actual, "actual DataFrame should not be nil")

	require.Equal(t, expected.Columns(), actual.Columns(), "DataFrame columns should match")
	require.Equal(t, expected.Len(), actual.Len(), "DataFrame lengths should match")
	for i := range expected.Len() {
		assert.Equal(t, expected.Row(i), actual.Row(i), "row %d should match", i)
	}
}
