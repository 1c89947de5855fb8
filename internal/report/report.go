// Package report computes the read-only summary aggregates of the feature
// table and prints them.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/paveg/retail-eda/internal/dataframe"
	"github.com/paveg/retail-eda/internal/validation"
)

// Column names read by the report.
const (
	SalesColumn       = "Sales"
	ProfitColumn      = "Profit"
	SubCategoryColumn = "Sub-Category"
	RegionColumn      = "Region"
)

// Ranked is one aggregated group.
type Ranked struct {
	Key   string
	Value float64
}

// Totals holds column sums. A Has* flag is false when the column is absent.
type Totals struct {
	Sales     float64
	Profit    float64
	HasSales  bool
	HasProfit bool
}

// Summary is everything the reporter prints.
type Summary struct {
	Totals           Totals
	TopSubCategories []Ranked
	RegionSales      []Ranked
	Skipped          []string
}

// ComputeTotals sums Sales and Profit, skipping nulls.
func ComputeTotals(df *dataframe.DataFrame) (Totals, error) {
	var totals Totals
	if df.HasColumn(SalesColumn) {
		sum, err := columnSum(df, SalesColumn)
		if err != nil {
			return Totals{}, err
		}
		totals.Sales, totals.HasSales = sum, true
	}
	if df.HasColumn(ProfitColumn) {
		sum, err := columnSum(df, ProfitColumn)
		if err != nil {
			return Totals{}, err
		}
		totals.Profit, totals.HasProfit = sum, true
	}
	return totals, nil
}

func columnSum(df *dataframe.DataFrame, column string) (float64, error) {
	values, valid, err := df.Float64s(column)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i, v := range values {
		if valid[i] {
			sum += v
		}
	}
	return sum, nil
}

// SalesBy sums Sales per key value, in ascending key order. Rows with a null
// key are left out.
func SalesBy(df *dataframe.DataFrame, key string) ([]Ranked, error) {
	sums, err := salesSums(df, key)
	if err != nil {
		return nil, err
	}
	return ranked(sums, key)
}

// TopSubCategories ranks sub-categories by summed sales, largest first. Ties
// keep ascending name order.
func TopSubCategories(df *dataframe.DataFrame, n int) ([]Ranked, error) {
	sums, err := salesSums(df, SubCategoryColumn)
	if err != nil {
		return nil, err
	}
	sorted, err := sums.SortBy(SalesColumn, false)
	if err != nil {
		return nil, err
	}
	top, err := sorted.Head(n)
	if err != nil {
		return nil, err
	}
	return ranked(top, SubCategoryColumn)
}

func salesSums(df *dataframe.DataFrame, key string) (*dataframe.DataFrame, error) {
	if err := validation.ValidateColumns(df, "SalesBy", key, SalesColumn); err != nil {
		return nil, err
	}
	gb, err := df.GroupBy(key)
	if err != nil {
		return nil, err
	}
	return gb.Sum(SalesColumn)
}

func ranked(sums *dataframe.DataFrame, key string) ([]Ranked, error) {
	keys, _, err := sums.Strings(key)
	if err != nil {
		return nil, err
	}
	values, _, err := sums.Float64s(SalesColumn)
	if err != nil {
		return nil, err
	}

	out := make([]Ranked, len(keys))
	for i := range keys {
		out[i] = Ranked{Key: keys[i], Value: values[i]}
	}
	return out, nil
}

// SalesByRegion sums sales per region in ascending region order.
func SalesByRegion(df *dataframe.DataFrame) ([]Ranked, error) {
	return SalesBy(df, RegionColumn)
}

// Build computes the summary. Each aggregate is skipped, and named in
// Skipped, when its columns are missing.
func Build(df *dataframe.DataFrame, topN int) (*Summary, error) {
	totals, err := ComputeTotals(df)
	if err != nil {
		return nil, err
	}
	summary := &Summary{Totals: totals}

	if validation.HasColumns(df, SubCategoryColumn, SalesColumn) {
		if summary.TopSubCategories, err = TopSubCategories(df, topN); err != nil {
			return nil, err
		}
	} else {
		summary.Skipped = append(summary.Skipped, "top sub-categories")
	}

	if validation.HasColumns(df, RegionColumn, SalesColumn) {
		if summary.RegionSales, err = SalesByRegion(df); err != nil {
			return nil, err
		}
	} else {
		summary.Skipped = append(summary.Skipped, "sales by region")
	}

	return summary, nil
}

// Print writes the summary in console form.
func (s *Summary) Print(w io.Writer) {
	if s.Totals.HasSales {
		fmt.Fprintf(w, "\nTotal Sales: %s\n", formatFloat(s.Totals.Sales))
	}
	if s.Totals.HasProfit {
		fmt.Fprintf(w, "Total Profit: %s\n", formatFloat(s.Totals.Profit))
	}

	if s.TopSubCategories != nil {
		fmt.Fprintln(w, "\nTop Sub-Categories by Sales:")
		RenderTable(w, []string{SubCategoryColumn, SalesColumn}, rankedRows(s.TopSubCategories))
	}

	if s.RegionSales != nil {
		fmt.Fprintln(w, "\nSales by Region:")
		RenderTable(w, []string{RegionColumn, SalesColumn}, rankedRows(s.RegionSales))
	}
}

func rankedRows(ranked []Ranked) [][]string {
	rows := make([][]string, len(ranked))
	for i, r := range ranked {
		rows[i] = []string{r.Key, strconv.FormatFloat(r.Value, 'f', 4, 64)}
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}
