// Package config provides configuration management for the retail analysis pipeline
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	dfio "github.com/paveg/retail-eda/internal/io"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration of one pipeline run
type Config struct {
	// Input Configuration
	InputPath   string   `json:"input_path" yaml:"input_path"`     // Source CSV file
	Encoding    string   `json:"encoding" yaml:"encoding"`         // Text encoding of input and output CSV
	DateLayouts []string `json:"date_layouts" yaml:"date_layouts"` // Layouts tried in order when parsing dates

	// Output Configuration
	OutputPath   string `json:"output_path" yaml:"output_path"`     // Feature table CSV
	ParquetPath  string `json:"parquet_path" yaml:"parquet_path"`   // Optional Parquet copy of the feature table
	WorkbookPath string `json:"workbook_path" yaml:"workbook_path"` // Optional xlsx summary workbook
	PlotsDir     string `json:"plots_dir" yaml:"plots_dir"`         // Chart directory

	// Analysis Configuration
	HeadRows              int     `json:"head_rows" yaml:"head_rows"`                               // Rows shown after loading
	TopN                  int     `json:"top_n" yaml:"top_n"`                                       // Sub-categories in the ranking
	SampleSize            int     `json:"sample_size" yaml:"sample_size"`                           // Max points in the scatter plot
	SampleSeed            uint64  `json:"sample_seed" yaml:"sample_seed"`                           // Seed of the scatter sample
	HighDiscountThreshold float64 `json:"high_discount_threshold" yaml:"high_discount_threshold"` // Discount above which an order is flagged

	// Logging Configuration
	LogLevel          string `json:"log_level" yaml:"log_level"`                   // debug, info, warn, error
	LogFormat         string `json:"log_format" yaml:"log_format"`                 // text or json
	MetricsCollection bool   `json:"metrics_collection" yaml:"metrics_collection"` // Enable per-stage metrics
}

// Default configuration values
const (
	DefaultInputPath             = "Sample - Superstore.csv"
	DefaultEncoding              = "latin1"
	DefaultOutputPath            = "retail_with_features.csv"
	DefaultPlotsDir              = "plots"
	DefaultHeadRows              = 5
	DefaultTopN                  = 10
	DefaultSampleSize            = 1000
	DefaultSampleSeed            = 1
	DefaultHighDiscountThreshold = 0.3
	DefaultLogLevel              = "info"
	DefaultLogFormat             = "text"
)

// DefaultDateLayouts returns the date layouts tried when none are configured.
func DefaultDateLayouts() []string {
	return []string{"1/2/2006", "2006-01-02", "01/02/2006", "2006/01/02", "1/2/06", "1-2-2006"}
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		InputPath:             DefaultInputPath,
		Encoding:              DefaultEncoding,
		DateLayouts:           DefaultDateLayouts(),
		OutputPath:            DefaultOutputPath,
		PlotsDir:              DefaultPlotsDir,
		HeadRows:              DefaultHeadRows,
		TopN:                  DefaultTopN,
		SampleSize:            DefaultSampleSize,
		SampleSeed:            DefaultSampleSeed,
		HighDiscountThreshold: DefaultHighDiscountThreshold,
		LogLevel:              DefaultLogLevel,
		LogFormat:             DefaultLogFormat,
		MetricsCollection:     false,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("InputPath must not be empty")
	}

	if c.OutputPath == "" {
		return fmt.Errorf("OutputPath must not be empty")
	}

	if c.PlotsDir == "" {
		return fmt.Errorf("PlotsDir must not be empty")
	}

	if _, err := dfio.LookupEncoding(c.Encoding); err != nil {
		return fmt.Errorf("unsupported Encoding %q", c.Encoding)
	}

	if len(c.DateLayouts) == 0 {
		return fmt.Errorf("DateLayouts must not be empty")
	}

	if c.HeadRows < 0 {
		return fmt.Errorf("HeadRows must be non-negative, got %d", c.HeadRows)
	}

	if c.TopN <= 0 {
		return fmt.Errorf("TopN must be positive, got %d", c.TopN)
	}

	if c.SampleSize <= 0 {
		return fmt.Errorf("SampleSize must be positive, got %d", c.SampleSize)
	}

	if c.HighDiscountThreshold < 0.0 || c.HighDiscountThreshold > 1.0 {
		return fmt.Errorf("HighDiscountThreshold must be between 0 and 1, got %f", c.HighDiscountThreshold)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported LogLevel %q", c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported LogFormat %q", c.LogFormat)
	}

	return nil
}

// WithDefaults returns a new configuration with default values filled in for
// zero values. It is meant for configurations built in code, where an unset
// field cannot be told apart from zero: HeadRows 0 and HighDiscountThreshold 0
// both become their defaults. The file loaders do not use it.
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.InputPath == "" {
		c.InputPath = defaults.InputPath
	}
	if c.Encoding == "" {
		c.Encoding = defaults.Encoding
	}
	if len(c.DateLayouts) == 0 {
		c.DateLayouts = defaults.DateLayouts
	}
	if c.OutputPath == "" {
		c.OutputPath = defaults.OutputPath
	}
	if c.PlotsDir == "" {
		c.PlotsDir = defaults.PlotsDir
	}
	if c.HeadRows == 0 {
		c.HeadRows = defaults.HeadRows
	}
	if c.TopN == 0 {
		c.TopN = defaults.TopN
	}
	if c.SampleSize == 0 {
		c.SampleSize = defaults.SampleSize
	}
	if c.SampleSeed == 0 {
		c.SampleSeed = defaults.SampleSeed
	}
	if c.HighDiscountThreshold == 0.0 {
		c.HighDiscountThreshold = defaults.HighDiscountThreshold
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = defaults.LogFormat
	}

	// Optional outputs stay empty and MetricsCollection keeps its explicit value.

	return c
}

// LoadFromJSON loads configuration from JSON data. Fields the document
// leaves out keep their defaults; fields it sets, zero included, are kept.
func LoadFromJSON(data []byte) (Config, error) {
	config := NewConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config, nil
}

// LoadFromFile loads configuration from a JSON or YAML file. Like
// LoadFromJSON, keys absent from the file keep their defaults.
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	var config Config
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		config, err = LoadFromJSON(data)
	case ".yaml", ".yml":
		// decode over the defaults so an explicit head_rows: 0 stays 0
		config = NewConfig()
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config, nil
}

// LoadFromEnv loads configuration from environment variables on top of the defaults
func LoadFromEnv() Config {
	return ApplyEnv(NewConfig())
}

// ApplyEnv overrides fields of config with any RETAIL_EDA_* variables that are set.
// Values that fail to parse are ignored.
func ApplyEnv(config Config) Config {
	if val := os.Getenv("RETAIL_EDA_INPUT"); val != "" {
		config.InputPath = val
	}

	if val := os.Getenv("RETAIL_EDA_ENCODING"); val != "" {
		config.Encoding = val
	}

	if val := os.Getenv("RETAIL_EDA_OUTPUT"); val != "" {
		config.OutputPath = val
	}

	if val := os.Getenv("RETAIL_EDA_PLOTS_DIR"); val != "" {
		config.PlotsDir = val
	}

	if val := os.Getenv("RETAIL_EDA_SAMPLE_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.SampleSize = parsed
		}
	}

	if val := os.Getenv("RETAIL_EDA_SEED"); val != "" {
		if parsed, err := strconv.ParseUint(val, 10, 64); err == nil {
			config.SampleSeed = parsed
		}
	}

	if val := os.Getenv("RETAIL_EDA_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	if val := os.Getenv("RETAIL_EDA_LOG_FORMAT"); val != "" {
		config.LogFormat = val
	}

	if val := os.Getenv("RETAIL_EDA_METRICS"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.MetricsCollection = parsed
		}
	}

	return config
}
