// Package plots renders the summary charts of the retail table as PNG files.
package plots

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/paveg/retail-eda/internal/dataframe"
	"github.com/paveg/retail-eda/internal/errors"
	"github.com/paveg/retail-eda/internal/features"
	"github.com/paveg/retail-eda/internal/report"
	"github.com/paveg/retail-eda/internal/validation"
)

// Chart file names inside the plots directory.
const (
	TopSubCategoriesFile = "top10_subcategories.png"
	MonthlyTrendFile     = "monthly_sales_trend.png"
	RegionShareFile      = "sales_by_region.png"
	SalesProfitFile      = "sales_vs_profit.png"
)

// Options controls what the Visualizer draws and where.
type Options struct {
	Dir        string
	TopN       int
	SampleSize int
	SampleSeed uint64
}

// Result lists the charts written and the ones skipped for lack of data.
type Result struct {
	Written []string
	Skipped []string
}

// Visualizer writes the four summary charts.
type Visualizer struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Visualizer.
func New(opts Options, logger *slog.Logger) *Visualizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Visualizer{opts: opts, logger: logger}
}

type chartFunc func(df *dataframe.DataFrame, path string) (bool, error)

// Render creates the plots directory and draws every chart whose columns
// are present. An empty table gets no charts. Existing files are overwritten.
func (v *Visualizer) Render(df *dataframe.DataFrame) (*Result, error) {
	if err := os.MkdirAll(v.opts.Dir, 0o755); err != nil {
		return nil, errors.NewIOError("Render", v.opts.Dir, err)
	}

	charts := []struct {
		file     string
		requires []string
		draw     chartFunc
	}{
		{TopSubCategoriesFile, []string{report.SubCategoryColumn, report.SalesColumn}, v.topSubCategories},
		{MonthlyTrendFile, []string{report.SalesColumn}, v.monthlyTrend},
		{RegionShareFile, []string{report.RegionColumn, report.SalesColumn}, v.regionShare},
		{SalesProfitFile, []string{report.SalesColumn, report.ProfitColumn}, v.salesVsProfit},
	}

	result := &Result{}
	for _, c := range charts {
		precondition := validation.NewCompoundValidator(
			validation.NewColumnValidator(df, c.file, c.requires...),
			validation.NewEmptyDataFrameValidator(df, c.file),
		)
		if err := precondition.Validate(); err != nil {
			v.logger.Info("skipping chart", "chart", c.file, "reason", err.Error())
			result.Skipped = append(result.Skipped, c.file)
			continue
		}

		path := filepath.Join(v.opts.Dir, c.file)
		drawn, err := c.draw(df, path)
		if err != nil {
			return nil, err
		}
		if !drawn {
			result.Skipped = append(result.Skipped, c.file)
			continue
		}
		v.logger.Debug("chart written", "path", path)
		result.Written = append(result.Written, path)
	}
	return result, nil
}

func (v *Visualizer) topSubCategories(df *dataframe.DataFrame, path string) (bool, error) {
	ranked, err := report.TopSubCategories(df, v.opts.TopN)
	if err != nil {
		return false, err
	}
	if len(ranked) == 0 {
		v.logger.Info("skipping chart", "chart", TopSubCategoriesFile, "reason", "no sub-categories")
		return false, nil
	}
	return true, SubCategoryBarChart(path, ranked)
}

func (v *Visualizer) monthlyTrend(df *dataframe.DataFrame, path string) (bool, error) {
	if !df.HasColumn(features.YearMonthColumn) {
		if !df.HasColumn(features.OrderDateColumn) {
			v.logger.Info("skipping chart", "chart", MonthlyTrendFile, "missing", []string{features.YearMonthColumn})
			return false, nil
		}
		withPeriod, err := features.YearMonth(df, features.OrderDateColumn, features.YearMonthColumn)
		if err != nil {
			v.logger.Info("skipping chart", "chart", MonthlyTrendFile, "reason", err.Error())
			return false, nil
		}
		df = withPeriod
	}

	// "2006-01" keys sort chronologically
	monthly, err := report.SalesBy(df, features.YearMonthColumn)
	if err != nil {
		return false, err
	}
	if len(monthly) == 0 {
		v.logger.Info("skipping chart", "chart", MonthlyTrendFile, "reason", "no dated orders")
		return false, nil
	}
	return true, MonthlyTrendChart(path, monthly)
}

func (v *Visualizer) regionShare(df *dataframe.DataFrame, path string) (bool, error) {
	regions, err := report.SalesByRegion(df)
	if err != nil {
		return false, err
	}
	for _, r := range regions {
		if r.Value > 0 {
			return true, RegionPieChart(path, regions)
		}
	}
	v.logger.Info("skipping chart", "chart", RegionShareFile, "reason", "no positive sales")
	return false, nil
}

func (v *Visualizer) salesVsProfit(df *dataframe.DataFrame, path string) (bool, error) {
	sample, err := df.Sample(v.opts.SampleSize, v.opts.SampleSeed)
	if err != nil {
		return false, err
	}

	sales, salesValid, err := sample.Float64s(report.SalesColumn)
	if err != nil {
		return false, err
	}
	profit, profitValid, err := sample.Float64s(report.ProfitColumn)
	if err != nil {
		return false, err
	}

	xs := make([]float64, 0, len(sales))
	ys := make([]float64, 0, len(sales))
	for i := range sales {
		if salesValid[i] && profitValid[i] {
			xs = append(xs, sales[i])
			ys = append(ys, profit[i])
		}
	}
	if len(xs) == 0 {
		v.logger.Info("skipping chart", "chart", SalesProfitFile, "reason", "no complete sales/profit pairs")
		return false, nil
	}
	return true, SalesProfitScatter(path, xs, ys)
}
