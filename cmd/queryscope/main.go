// Package main provides the entry point for the queryscope pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fieldline/queryscope/cmd/queryscope/config"
	"github.com/fieldline/queryscope/pkg/infrastructure/metrics"
	"github.com/fieldline/queryscope/pkg/pipeline"
	"github.com/fieldline/queryscope/pkg/repositories"
	"github.com/fieldline/queryscope/pkg/repositories/csvrepo"
	"github.com/fieldline/queryscope/pkg/repositories/duckdb"
	"github.com/fieldline/queryscope/pkg/services"
)

var (
	// Version information (set by build flags)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "queryscope",
	Short: "Club query-usage analytics pipeline",
	Long: `queryscope analyzes a log of submitted analytical SQL queries.

It extracts which tables each query touches and under which data-platform
generation, scores query complexity, and aggregates club-level engagement
and table-level popularity summaries for migration planning.`,
}

var captureCmd = &cobra.Command{
	Use:   "capture <input.csv>",
	Short: "Extract table references and classify environments",
	Long: `Read the raw query log, extract legacy and gridiron table references,
normalize them, classify each query's environment, and write the
captured-tables intermediate.

Example:
  queryscope capture data.csv
  queryscope capture data.csv --output-dir ./curated_output`,
	Args: cobra.ExactArgs(1),
	RunE: runCapture,
}

var scoreCmd = &cobra.Command{
	Use:   "score <captured.csv>",
	Short: "Score query complexity",
	Long: `Read the captured-tables intermediate, score every complete query's
complexity, and write the categorized intermediate.

Example:
  queryscope score query_table_captured.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate <categorized.csv>",
	Short: "Build club and table summaries",
	Long: `Read the categorized intermediate and emit the club engagement and
table popularity summaries. With --warehouse the categorized rows and both
summaries are also published to a DuckDB database file.

Example:
  queryscope aggregate categorized_queries.csv
  queryscope aggregate categorized_queries.csv --warehouse usage.duckdb`,
	Args: cobra.ExactArgs(1),
	RunE: runAggregate,
}

var quicklookCmd = &cobra.Command{
	Use:   "quicklook <categorized.csv>",
	Short: "Generate supplementary analysis cuts",
	Long: `Read the categorized intermediate and emit the supplementary cuts:
table usage ranking, environment distribution, club engagement ranking,
and per-table complexity mix.

Example:
  queryscope quicklook categorized_queries.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runQuicklook,
}

var runCmd = &cobra.Command{
	Use:   "run <input.csv>",
	Short: "Run the full pipeline",
	Long: `Run every stage in order: capture, score, aggregate, quicklook.
Each stage reads the complete output of the previous one.

Example:
  queryscope run data.csv --warehouse usage.duckdb`,
	Args: cobra.ExactArgs(1),
	RunE: runAll,
}

func init() {
	for _, cmd := range []*cobra.Command{captureCmd, scoreCmd, aggregateCmd, quicklookCmd, runCmd} {
		cmd.Flags().StringP("config", "c", "", "config file path")
		cmd.Flags().String("raw-data-dir", "raw_data", "directory holding raw input files")
		cmd.Flags().String("output-dir", "curated_output", "directory for curated output files")
		cmd.Flags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
		cmd.Flags().Bool("metrics", false, "enable Prometheus metrics")
		cmd.Flags().String("metrics-address", "", "serve /metrics on this address for the run's duration")
		cmd.Flags().String("metrics-file", "", "write run metrics in exposition format to this path")
		cmd.Flags().String("warehouse", "", "DuckDB database path for warehouse publication")
		cmd.Flags().Int("top-tables", 20, "table count for the quicklook complexity cut")
		rootCmd.AddCommand(cmd)
	}

	// Flag names are shared across subcommands; binding any one set is enough.
	if err := viper.BindPFlags(runCmd.Flags()); err != nil {
		panic(fmt.Errorf("failed to bind flags: %w", err))
	}
	viper.SetEnvPrefix("QUERYSCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("queryscope\n")
			fmt.Printf("Version:    %s\n", version)
			fmt.Printf("Commit:     %s\n", commit)
			fmt.Printf("Build Date: %s\n", buildDate)
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runtime bundles everything a stage invocation needs.
type runtime struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	cleanup  func()
}

func runCapture(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer rt.cleanup()

	input := resolveInput(args[0], rt.cfg.RawDataDir)
	_, err = rt.pipeline.Capture(context.Background(), input)
	return err
}

func runScore(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer rt.cleanup()

	input := resolveInput(args[0], rt.cfg.OutputDir)
	_, err = rt.pipeline.Score(context.Background(), input)
	return err
}

func runAggregate(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer rt.cleanup()

	input := resolveInput(args[0], rt.cfg.OutputDir)
	return rt.pipeline.Aggregate(context.Background(), input)
}

func runQuicklook(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer rt.cleanup()

	input := resolveInput(args[0], rt.cfg.OutputDir)
	return rt.pipeline.Quicklook(context.Background(), input)
}

func runAll(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer rt.cleanup()

	input := resolveInput(args[0], rt.cfg.RawDataDir)
	return rt.pipeline.Run(context.Background(), input)
}

// setup loads configuration and wires the pipeline. withWarehouse controls
// whether a configured warehouse path is honored for this command.
func setup(cmd *cobra.Command, withWarehouse bool) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogging(cfg.LogLevel)
	logger.Info().
		Str("version", version).
		Str("output_dir", cfg.OutputDir).
		Msg("Starting queryscope")

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var collector metrics.Collector
	var promCollector *metrics.PrometheusCollector
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		promCollector = metrics.NewPrometheusCollector()
		collector = promCollector
		if cfg.Metrics.Address != "" {
			metricsServer = metrics.NewServer(cfg.Metrics.Address, promCollector)
			go func() {
				logger.Info().Str("address", cfg.Metrics.Address).Msg("Starting metrics server")
				if err := metricsServer.Start(); err != nil {
					logger.Error().Err(err).Msg("Metrics server failed")
				}
			}()
		}
	} else {
		collector = metrics.NewNoOpCollector()
	}

	svcLogger := pipeline.NewServiceLogger(logger)
	svcMetrics := pipeline.NewServiceMetrics(collector)
	csvRepo := csvrepo.New(logger)

	var warehouse repositories.WarehouseRepository
	if withWarehouse && cfg.Warehouse.Path != "" {
		warehouse, err = duckdb.NewWarehouseRepository(cfg.Warehouse.Path, logger)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", cfg.Warehouse.Path).Msg("Warehouse publication enabled")
	}

	deps := pipeline.Deps{
		Capture:     services.NewCaptureService(svcLogger, svcMetrics),
		Scoring:     services.NewScoringService(svcLogger, svcMetrics),
		Queries:     csvRepo,
		Captured:    csvRepo,
		Categorized: csvRepo,
		Summaries:   csvRepo,
		Quicklook:   csvRepo,
		Warehouse:   warehouse,
		Logger:      logger,
		Metrics:     collector,
	}

	cleanup := func() {
		if warehouse != nil {
			if err := warehouse.Close(); err != nil {
				logger.Error().Err(err).Msg("Failed to close warehouse")
			}
		}
		if metricsServer != nil {
			if err := metricsServer.Stop(); err != nil {
				logger.Error().Err(err).Msg("Failed to stop metrics server")
			}
		}
		if promCollector != nil {
			path := cfg.Metrics.TextfilePath
			if path == "" {
				path = filepath.Join(cfg.OutputDir, pipeline.MetricsFileName)
			}
			if err := promCollector.WriteTextfile(path); err != nil {
				logger.Error().Err(err).Msg("Failed to write metrics file")
			}
		}
	}

	return &runtime{
		cfg:      cfg,
		pipeline: pipeline.New(deps, cfg.OutputDir, cfg.Quicklook.TopTables),
		cleanup:  cleanup,
	}, nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	// Load config file if specified
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &config.Config{
		RawDataDir: viper.GetString("raw-data-dir"),
		OutputDir:  viper.GetString("output-dir"),
		LogLevel:   viper.GetString("log-level"),
		Warehouse: config.WarehouseConfig{
			Path: viper.GetString("warehouse"),
		},
		Metrics: config.MetricsConfig{
			Enabled:      viper.GetBool("metrics"),
			Address:      viper.GetString("metrics-address"),
			TextfilePath: viper.GetString("metrics-file"),
		},
		Quicklook: config.QuicklookConfig{
			TopTables: viper.GetInt("top-tables"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setupLogging(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.DurationFieldUnit = time.Millisecond

	var logLevel zerolog.Level
	switch level {
	case "trace":
		logLevel = zerolog.TraceLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(writer).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", "queryscope")

	if logLevel <= zerolog.DebugLevel {
		logger = logger.Caller()
	}

	return logger.Logger()
}

// resolveInput mirrors how analysts hand filenames to the pipeline: a bare
// name resolves under dir and gets a .csv extension if missing; explicit
// paths pass through untouched.
func resolveInput(name, dir string) string {
	if strings.ContainsAny(name, `/\`) || filepath.IsAbs(name) {
		return name
	}
	if !strings.HasSuffix(name, ".csv") {
		name += ".csv"
	}
	return filepath.Join(dir, name)
}
