package report_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/retail-eda/internal/dataframe"
	"github.com/paveg/retail-eda/internal/errors"
	"github.com/paveg/retail-eda/internal/report"
	"github.com/paveg/retail-eda/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func createSalesDataFrame(t *testing.T) *dataframe.DataFrame {
	t.Helper()
	mem := memory.NewGoAllocator()

	subs := series.New("Sub-Category", []string{
		"Phones", "Chairs", "Binders", "Phones", "Art", "Tables", "Paper", "Storage",
		"Copiers", "Labels", "Bookcases", "Machines", "Envelopes",
	}, mem)
	regions := series.New("Region", []string{
		"West", "East", "South", "West", "Central", "East", "West", "South",
		"Central", "East", "West", "South", "Central",
	}, mem)
	sales, err := series.NewWithNulls("Sales", []float64{
		100, 80, 50, 20, 5, 60, 50, 40, 300, 1, 30, 25, 0,
	}, []bool{true, true, true, true, true, true, true, true, true, true, true, true, false}, mem)
	require.NoError(t, err)
	profit := series.New("Profit", []float64{
		10, -5, 2, 1, 0.5, -20, 5, 4, 90, 0.1, 3, -2, 0,
	}, mem)

	return dataframe.New(subs, regions, sales, profit)
}

func TestComputeTotals(t *testing.T) {
	df := createSalesDataFrame(t)

	totals, err := report.ComputeTotals(df)
	require.NoError(t, err)
	assert.True(t, totals.HasSales)
	assert.True(t, totals.HasProfit)
	assert.InDelta(t, 761, totals.Sales, 1e-9)
	assert.InDelta(t, 88.6, totals.Profit, 1e-9)

	totals, err = report.ComputeTotals(df.Drop("Profit"))
	require.NoError(t, err)
	assert.False(t, totals.HasProfit)
}

func TestTopSubCategories(t *testing.T) {
	df := createSalesDataFrame(t)

	top, err := report.TopSubCategories(df, 10)
	require.NoError(t, err)
	require.Len(t, top, 10)

	assert.Equal(t, report.Ranked{Key: "Copiers", Value: 300}, top[0])
	assert.Equal(t, report.Ranked{Key: "Phones", Value: 120}, top[1])

	seen := make(map[string]bool)
	for i, r := range top {
		assert.False(t, seen[r.Key], "duplicate key %s", r.Key)
		seen[r.Key] = true
		if i > 0 {
			assert.GreaterOrEqual(t, top[i-1].Value, r.Value)
		}
	}

	// Binders and Paper tie at 50 and keep ascending key order
	var tied []string
	for _, r := range top {
		if r.Value == 50 {
			tied = append(tied, r.Key)
		}
	}
	assert.Equal(t, []string{"Binders", "Paper"}, tied)

	// the null-sales row still forms a group with sum 0 and ranks last
	all, err := report.TopSubCategories(df, 100)
	require.NoError(t, err)
	assert.Len(t, all, 12)
	assert.Equal(t, "Envelopes", all[len(all)-1].Key)
}

func TestTopSubCategoriesLimits(t *testing.T) {
	df := createSalesDataFrame(t)

	// Binders and Paper both sum to 50 and keep name order
	top, err := report.TopSubCategories(df, 6)
	require.NoError(t, err)
	require.Len(t, top, 6)
	assert.Equal(t, report.Ranked{Key: "Binders", Value: 50}, top[4])
	assert.Equal(t, report.Ranked{Key: "Paper", Value: 50}, top[5])

	none, err := report.TopSubCategories(df, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	none, err = report.TopSubCategories(df, -1)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = report.TopSubCategories(df.Drop("Sub-Category"), 3)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindColumn))
}

func TestSalesByRegion(t *testing.T) {
	df := createSalesDataFrame(t)

	regions, err := report.SalesByRegion(df)
	require.NoError(t, err)
	assert.Equal(t, []report.Ranked{
		{Key: "Central", Value: 305},
		{Key: "East", Value: 141},
		{Key: "South", Value: 115},
		{Key: "West", Value: 200},
	}, regions)

	_, err = report.SalesByRegion(df.Drop("Region"))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindColumn))
}

func TestBuild(t *testing.T) {
	t.Run("all aggregates", func(t *testing.T) {
		summary, err := report.Build(createSalesDataFrame(t), 10)
		require.NoError(t, err)
		assert.Len(t, summary.TopSubCategories, 10)
		assert.Len(t, summary.RegionSales, 4)
		assert.Empty(t, summary.Skipped)
	})

	t.Run("missing region skips only the region aggregate", func(t *testing.T) {
		summary, err := report.Build(createSalesDataFrame(t).Drop("Region"), 10)
		require.NoError(t, err)
		assert.Nil(t, summary.RegionSales)
		assert.Len(t, summary.TopSubCategories, 10)
		assert.True(t, summary.Totals.HasSales)
		assert.Equal(t, []string{"sales by region"}, summary.Skipped)
	})
}

func TestSummaryPrint(t *testing.T) {
	summary, err := report.Build(createSalesDataFrame(t), 3)
	require.NoError(t, err)

	var buf bytes.Buffer
	summary.Print(&buf)
	out := buf.String()

	assert.Contains(t, out, "Total Sales: 761\n")
	assert.Contains(t, out, "Total Profit: 88.6")
	assert.Contains(t, out, "Top Sub-Categories by Sales:")
	assert.Contains(t, out, "Copiers")
	assert.Contains(t, out, "300.0000")
	assert.Contains(t, out, "Sales by Region:")
	assert.Less(t, strings.Index(out, "Top Sub-Categories"), strings.Index(out, "Sales by Region"))
}

func TestRenderFrame(t *testing.T) {
	df := createSalesDataFrame(t)

	var buf bytes.Buffer
	report.RenderFrame(&buf, df, 2)
	out := buf.String()

	assert.Contains(t, out, "Sub-Category")
	assert.Contains(t, out, "Phones")
	assert.Contains(t, out, "Chairs")
	assert.NotContains(t, out, "Binders")

	buf.Reset()
	report.RenderCounts(&buf, df.NullCounts())
	assert.Contains(t, buf.String(), "Sales")
}

func TestWriteWorkbook(t *testing.T) {
	summary, err := report.Build(createSalesDataFrame(t), 5)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "summary.xlsx")
	require.NoError(t, report.WriteWorkbook(path, summary))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Totals", "Top Sub-Categories", "Sales by Region"}, f.GetSheetList())

	label, err := f.GetCellValue("Totals", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Total Sales", label)

	top, err := f.GetCellValue("Top Sub-Categories", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Copiers", top)

	rows, err := f.GetRows("Sales by Region")
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}
