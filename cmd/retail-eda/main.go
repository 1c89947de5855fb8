package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	retaileda "github.com/paveg/retail-eda"
	"github.com/paveg/retail-eda/internal/logging"
	"github.com/paveg/retail-eda/internal/version"
)

func customUsage() {
	fmt.Fprintf(os.Stderr, "Retail EDA (version %s)\n\n", version.Version)
	fmt.Fprintf(os.Stderr, "Usage: retail-eda [options]\n\n")
	fmt.Fprintf(os.Stderr, "Analyzes \"Sample - Superstore.csv\" in the working directory, writes\n")
	fmt.Fprintf(os.Stderr, "retail_with_features.csv and renders charts into plots/.\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	fmt.Fprintf(os.Stderr, "  --config PATH\n\t\tYAML or JSON configuration file\n")
	fmt.Fprintf(os.Stderr, "  -v, --version\n\t\tPrint version information and exit\n")
	fmt.Fprintf(os.Stderr, "  -h, --help\n\t\tShow this help message and exit\n")
	fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
	fmt.Fprintf(os.Stderr, "  RETAIL_EDA_INPUT, RETAIL_EDA_ENCODING, RETAIL_EDA_OUTPUT, RETAIL_EDA_PLOTS_DIR,\n")
	fmt.Fprintf(os.Stderr, "  RETAIL_EDA_SAMPLE_SIZE, RETAIL_EDA_SEED, RETAIL_EDA_LOG_LEVEL,\n")
	fmt.Fprintf(os.Stderr, "  RETAIL_EDA_LOG_FORMAT, RETAIL_EDA_METRICS\n")
}

func main() {
	versionFlag := flag.Bool("v", false, "Print version and exit")
	flag.BoolVar(versionFlag, "version", false, "Print version and exit") // alias
	configFlag := flag.String("config", "", "YAML or JSON configuration file")

	//nolint:reassign // Standard Go pattern for customizing flag usage message
	flag.Usage = customUsage

	flag.Parse()

	if *versionFlag {
		fmt.Print(version.Info().String())
		return
	}

	os.Exit(run(*configFlag))
}

func run(configPath string) int {
	cfg, err := retaileda.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "retail-eda: %v\n", err)
		return 1
	}

	logger := logging.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := retaileda.Run(ctx, cfg, os.Stdout, logger); err != nil {
		logger.Error("run failed", "error", err)
		return 1
	}
	return 0
}
