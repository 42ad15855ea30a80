package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/bears/internal/job"
	"github.com/ajitpratap0/bears/pkg/aggregate"
	"github.com/ajitpratap0/bears/pkg/config"
	"github.com/ajitpratap0/bears/pkg/logger"
	"github.com/ajitpratap0/bears/pkg/metrics"
	"github.com/ajitpratap0/bears/pkg/observability"
)

var version = "0.1.0"

// envPrefix prefixes the environment variables that override flags, e.g.
// BEARS_LOG_LEVEL=debug
const envPrefix = "BEARS"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "bears",
		Short: "Bears - group-by aggregation over CSV tables",
		Long: `Bears loads a CSV file into a typed in-memory table, groups its rows by
one or more key columns and computes aggregates (count, sum, mean, min, max,
first, last) per group.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("trace", false, "Export tracing spans to stderr")
	root.PersistentFlags().String("metrics-file", "", "Write Prometheus metrics to this file when the job ends")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newAggregateCmd())
	root.AddCommand(newCensusCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Bears v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func newAggregateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Group a CSV file by key columns and aggregate it",
		Long: `Group a CSV file by one or more key columns and compute aggregates per group.
Aggregates are given as column:kind[:as], where kind is one of
count, sum, mean (or avg), min, max, first, last.

Settings can come from a YAML job file (--config), flags, or BEARS_*
environment variables. Flags and environment variables override the file.

Example:
  bears aggregate --input tracts.csv --key CBSA09 --agg POP00:sum --agg POP10:mean:avg10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := bindViper(cmd)
			if err != nil {
				return err
			}
			cfg, err := jobConfigFrom(v)
			if err != nil {
				return err
			}
			return runWithObservability(cmd, v, cfg.Observability, cfg.Name, func(ctx context.Context, deps job.Deps) error {
				_, err := job.Run(ctx, cfg, deps)
				return err
			})
		},
	}

	f := cmd.Flags()
	f.StringP("config", "c", "", "Path to a YAML job configuration file")
	f.StringP("input", "i", "", "Input CSV file; .gz, .zst, .lz4, .sz and .s2 are decompressed")
	f.StringSliceP("key", "k", nil, "Key column to group by (repeatable)")
	f.StringArrayP("agg", "a", nil, "Aggregate as column:kind[:as] (repeatable)")
	f.Bool("drop-missing-key", false, "Leave out rows whose key is missing")
	f.Bool("fail-on-empty-group", false, "Fail when an aggregate has no values in a group")
	f.String("sort-by", "", "Sort the result by this column")
	f.Bool("descending", false, "Sort in descending order")
	f.StringP("format", "f", "csv", "Output format (csv, json, table, arrow, parquet)")
	f.StringP("output", "o", "-", "Output file, - for stdout")
	f.String("compress", "", "Output compression (none, gzip, zstd, lz4, snappy, s2); detected from --output when empty")
	f.Int("precision", -1, "Decimal places for numbers, -1 for full precision")
	f.Bool("no-header", false, "Leave out the header row")
	return cmd
}

func newCensusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "census <input.csv> [output.csv]",
		Short: "Build the CBSA population change report from census tract data",
		Long: `Build the CBSA population change report from 2000/2010 census tract data.
The report has one headerless CSV row per CBSA, sorted by code:
code, title, tracts, population 2000, population 2010, mean change percent.
Tracts without a CBSA code are left out. Without an output path, or with -,
the report goes to stdout.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := bindViper(cmd)
			if err != nil {
				return err
			}
			out := "-"
			if len(args) == 2 {
				out = args[1]
			}
			obs := config.NewJobConfig("census").Observability
			obs.LogLevel = v.GetString("log-level")
			obs.EnableTracing = v.GetBool("trace")
			return runWithObservability(cmd, v, obs, "census", func(ctx context.Context, deps job.Deps) error {
				_, err := job.RunCensus(ctx, args[0], out, deps)
				return err
			})
		},
	}
}

// bindViper binds cmd's flags, including the inherited ones, to a fresh
// viper instance that also reads BEARS_ environment variables
func bindViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := v.BindPFlags(cmd.InheritedFlags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return v, nil
}

// jobConfigFrom builds the job configuration: the YAML file if one is given,
// then every flag or environment variable that was set
func jobConfigFrom(v *viper.Viper) (*config.JobConfig, error) {
	cfg := config.NewJobConfig("aggregate")
	if path := v.GetString("config"); path != "" {
		loaded, err := config.LoadJobConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v.IsSet("input") {
		cfg.Input.Path = v.GetString("input")
	}
	if v.IsSet("key") {
		cfg.GroupBy.Keys = v.GetStringSlice("key")
	}
	if v.IsSet("agg") {
		cfg.GroupBy.Aggregates = nil
		for _, s := range v.GetStringSlice("agg") {
			spec, err := aggregate.ParseSpec(s)
			if err != nil {
				return nil, err
			}
			cfg.GroupBy.Aggregates = append(cfg.GroupBy.Aggregates, spec)
		}
	}
	if v.IsSet("drop-missing-key") {
		cfg.GroupBy.DropMissingKey = v.GetBool("drop-missing-key")
	}
	if v.IsSet("fail-on-empty-group") {
		cfg.GroupBy.FailOnEmptyGroup = v.GetBool("fail-on-empty-group")
	}
	if v.IsSet("sort-by") {
		cfg.GroupBy.SortBy = v.GetString("sort-by")
	}
	if v.IsSet("descending") {
		cfg.GroupBy.Descending = v.GetBool("descending")
	}
	if v.IsSet("format") {
		cfg.Output.Format = v.GetString("format")
	}
	if v.IsSet("output") {
		cfg.Output.Path = v.GetString("output")
	}
	if v.IsSet("compress") {
		cfg.Output.Compression = v.GetString("compress")
	}
	if v.IsSet("precision") {
		cfg.Output.Precision = v.GetInt("precision")
	}
	if v.IsSet("no-header") {
		cfg.Output.Header = !v.GetBool("no-header")
	}
	if v.IsSet("log-level") || v.GetString("config") == "" {
		cfg.Observability.LogLevel = v.GetString("log-level")
	}
	if v.IsSet("trace") {
		cfg.Observability.EnableTracing = v.GetBool("trace")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runWithObservability sets up logging, tracing and metrics around fn and
// tears them down afterwards
func runWithObservability(cmd *cobra.Command, v *viper.Viper, obs config.ObservabilityConfig, name string, fn func(ctx context.Context, deps job.Deps) error) error {
	log, err := logger.New(logger.Config{
		Level:       obs.LogLevel,
		Encoding:    obs.LogEncoding,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("component", "bears-cli"), zap.String("command", name))

	tracing := observability.DefaultConfig()
	tracing.Enabled = obs.EnableTracing
	tracing.SamplingRate = obs.TracingSampleRate
	tracing.ServiceVersion = version
	tracing.Writer = cmd.ErrOrStderr()
	shutdown, err := observability.Initialize(tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	var collector *metrics.Collector
	if obs.EnableMetrics {
		collector = metrics.NewCollector("bears")
	}
	runErr := fn(cmd.Context(), job.Deps{
		Logger:  log,
		Metrics: collector,
		Stdout:  cmd.OutOrStdout(),
	})

	path := v.GetString("metrics-file")
	switch {
	case path == "":
	case collector == nil:
		log.Warn("metrics disabled, not writing metrics file", zap.String("path", path))
	default:
		if err := collector.WriteTextfile(path); err != nil {
			log.Warn("failed to write metrics", zap.String("path", path), zap.Error(err))
		}
	}
	return runErr
}
