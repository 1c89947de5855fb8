// Package retaileda runs the retail transactions exploratory analysis:
// it loads the orders file, cleans it, derives features, prints summary
// aggregates and renders the summary charts.
//
// This package is the public API; the stages live under internal/.
package retaileda

import (
	"context"
	"io"
	"log/slog"

	"github.com/paveg/retail-eda/internal/config"
	"github.com/paveg/retail-eda/internal/logging"
	"github.com/paveg/retail-eda/internal/pipeline"
)

// Config is the configuration of one run.
type Config = config.Config

// Summary describes what a run did.
type Summary = pipeline.Summary

// DefaultConfig returns the configuration used when nothing is set:
// "Sample - Superstore.csv" in, retail_with_features.csv and plots/ out.
func DefaultConfig() Config {
	return config.NewConfig()
}

// LoadConfig reads a YAML or JSON file, or starts from the defaults when
// path is empty, then applies RETAIL_EDA_* environment overrides and
// validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := config.LoadFromEnv()
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = config.ApplyEnv(loaded)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the pipeline with cfg, printing the report to stdout and
// logging to logger. A nil logger writes text logs to io.Discard.
func Run(ctx context.Context, cfg Config, stdout io.Writer, logger *slog.Logger) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return pipeline.New(cfg, stdout, logger).Run(ctx)
}
