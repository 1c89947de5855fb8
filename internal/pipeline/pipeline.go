// Package pipeline runs the five analysis stages over one input file:
// load, clean, derive features, report and plot.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/retail-eda/internal/clean"
	"github.com/paveg/retail-eda/internal/config"
	"github.com/paveg/retail-eda/internal/dataframe"
	"github.com/paveg/retail-eda/internal/features"
	dfio "github.com/paveg/retail-eda/internal/io"
	"github.com/paveg/retail-eda/internal/monitoring"
	"github.com/paveg/retail-eda/internal/plots"
	"github.com/paveg/retail-eda/internal/report"
)

// Stage names, as recorded in metrics and logs.
const (
	StageLoad     = "load"
	StageClean    = "clean"
	StageFeatures = "features"
	StageReport   = "report"
	StagePlots    = "plots"
)

// Summary describes what one run did.
type Summary struct {
	RowsLoaded        int
	DuplicatesRemoved int
	InvalidDates      int
	RowsWritten       int
	OutputPath        string
	ParquetPath       string
	WorkbookPath      string
	Charts            []string
	Skipped           []string
}

// Pipeline holds the configuration and sinks of a run.
type Pipeline struct {
	cfg     config.Config
	out     io.Writer
	logger  *slog.Logger
	metrics *monitoring.MetricsCollector
	mem     memory.Allocator
}

// New creates a pipeline that prints its report to out.
func New(cfg config.Config, out io.Writer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:     cfg,
		out:     out,
		logger:  logger,
		metrics: monitoring.NewMetricsCollector(cfg.MetricsCollection),
		mem:     memory.NewGoAllocator(),
	}
}

// Metrics returns the collector the stages are recorded into.
func (p *Pipeline) Metrics() *monitoring.MetricsCollector {
	return p.metrics
}

// Run executes the stages in order. Cancellation is checked between stages;
// a stage that has started runs to completion.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	var df *dataframe.DataFrame

	stages := []struct {
		name string
		run  func() (int, error)
	}{
		{StageLoad, func() (int, error) {
			loaded, err := p.load()
			if err != nil {
				return 0, err
			}
			df = loaded
			summary.RowsLoaded = loaded.Len()
			return loaded.Len(), nil
		}},
		{StageClean, func() (int, error) {
			result, err := clean.New(clean.Options{DateLayouts: p.cfg.DateLayouts}, p.out, p.logger).Run(df)
			if err != nil {
				return 0, err
			}
			df = result.Frame
			summary.DuplicatesRemoved = result.DuplicatesRemoved
			summary.InvalidDates = result.InvalidDates
			if !result.DatesParsed {
				summary.Skipped = append(summary.Skipped, "date parsing")
			}
			return df.Len(), nil
		}},
		{StageFeatures, func() (int, error) {
			frame, err := p.features(df, summary)
			if err != nil {
				return 0, err
			}
			df = frame
			return df.Len(), nil
		}},
		{StageReport, func() (int, error) {
			return df.Len(), p.report(df, summary)
		}},
		{StagePlots, func() (int, error) {
			return df.Len(), p.plots(df, summary)
		}},
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("before %s stage: %w", stage.name, err)
		}

		p.logger.Info("stage started", "stage", stage.name)
		if err := p.metrics.RecordStage(stage.name, stage.run); err != nil {
			p.logger.Error("stage failed", "stage", stage.name, "error", err)
			return nil, fmt.Errorf("%s stage: %w", stage.name, err)
		}
		p.logger.Info("stage finished", "stage", stage.name)
	}

	if p.metrics.IsEnabled() {
		fmt.Fprintln(p.out, "\nStage metrics:")
		p.metrics.WriteTable(p.out)
		totals := p.metrics.GetSummary()
		fmt.Fprintf(p.out, "%d stages in %s (average %s), %d failed\n",
			totals.TotalStages, totals.TotalDuration.Round(time.Microsecond),
			totals.AverageDuration.Round(time.Microsecond), totals.FailedStages)
	}
	return summary, nil
}

func (p *Pipeline) load() (*dataframe.DataFrame, error) {
	options := dfio.DefaultCSVOptions()
	options.Encoding = p.cfg.Encoding

	df, err := dfio.ReadCSVFile(p.cfg.InputPath, options, p.mem)
	if err != nil {
		return nil, err
	}

	rows, cols := df.Shape()
	fmt.Fprintln(p.out, "Dataset loaded successfully!")
	fmt.Fprintf(p.out, "\nDataset Shape: (%d, %d)\n", rows, cols)
	fmt.Fprintf(p.out, "\nFirst %d rows:\n", p.cfg.HeadRows)
	report.RenderFrame(p.out, df, p.cfg.HeadRows)
	return df, nil
}

func (p *Pipeline) features(df *dataframe.DataFrame, summary *Summary) (*dataframe.DataFrame, error) {
	engineer := features.New(features.Options{
		DateLayouts:           p.cfg.DateLayouts,
		HighDiscountThreshold: p.cfg.HighDiscountThreshold,
	}, p.logger)

	result, err := engineer.Apply(df)
	if err != nil {
		return nil, err
	}
	summary.Skipped = append(summary.Skipped, result.Skipped...)

	out := features.Output{
		CSVPath:     p.cfg.OutputPath,
		Encoding:    p.cfg.Encoding,
		ParquetPath: p.cfg.ParquetPath,
	}
	if err := features.Save(result.Frame, out); err != nil {
		return nil, err
	}

	summary.RowsWritten = result.Frame.Len()
	summary.OutputPath = p.cfg.OutputPath
	summary.ParquetPath = p.cfg.ParquetPath
	fmt.Fprintf(p.out, "\nFeature engineering done. Saved file: %s\n", p.cfg.OutputPath)
	return result.Frame, nil
}

func (p *Pipeline) report(df *dataframe.DataFrame, summary *Summary) error {
	s, err := report.Build(df, p.cfg.TopN)
	if err != nil {
		return err
	}
	s.Print(p.out)
	summary.Skipped = append(summary.Skipped, s.Skipped...)

	if p.cfg.WorkbookPath != "" {
		if err := report.WriteWorkbook(p.cfg.WorkbookPath, s); err != nil {
			return err
		}
		summary.WorkbookPath = p.cfg.WorkbookPath
		p.logger.Info("workbook written", "path", p.cfg.WorkbookPath)
	}
	return nil
}

func (p *Pipeline) plots(df *dataframe.DataFrame, summary *Summary) error {
	visualizer := plots.New(plots.Options{
		Dir:        p.cfg.PlotsDir,
		TopN:       p.cfg.TopN,
		SampleSize: p.cfg.SampleSize,
		SampleSeed: p.cfg.SampleSeed,
	}, p.logger)

	result, err := visualizer.Render(df)
	if err != nil {
		return err
	}
	summary.Charts = result.Written
	summary.Skipped = append(summary.Skipped, result.Skipped...)

	fmt.Fprintf(p.out, "\nPlots saved in folder: %s/ (%s)\n",
		strings.TrimRight(p.cfg.PlotsDir, "/"), strings.Join(chartFiles(), ", "))
	return nil
}

func chartFiles() []string {
	return []string{plots.TopSubCategoriesFile, plots.MonthlyTrendFile, plots.RegionShareFile, plots.SalesProfitFile}
}
