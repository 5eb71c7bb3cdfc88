package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thesis-alloc/thesis-alloc/alloc"
	"github.com/thesis-alloc/thesis-alloc/alloc/trace"
)

var (
	// Shared flags
	configPath string // YAML config file
	logLevel   string // Log verbosity level
	logFile    string // Append-only error log

	// Column flags
	meritColumn     string   // Merit score header, matched case-insensitively
	identityColumns []string // Pass-through identity headers
	allocatedColumn string   // Output header for the assigned faculty

	// run flags
	inputPath     string // Input CSV
	outputDir     string // Directory for result tables
	runSubdir     bool   // Write results into <output-dir>/run-<id>/
	traceLevel    string // Decision trace level
	summaryFormat string // json or yaml

	// serve flags
	serverAddr string // Listen address
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "thesis-alloc",
	Short: "Merit-ordered allocation of students to thesis supervisors",
}

// runCmd allocates students from a CSV file and writes both result tables
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Allocate students to faculty from a CSV file",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		logger, closeLog, err := newLogger(cfg.Log, os.Stderr)
		if err != nil {
			logrus.Fatalf("Failed to set up logging: %v", err)
		}
		defer func() { _ = closeLog() }()

		runID := uuid.NewString()
		log := logger.WithField("run_id", runID)
		if inputPath == "" {
			log.Fatal("Input file not provided (--input). Exiting.")
		}

		if err := runAllocation(cmd.Context(), cfg, inputPath, runID, log, cmd.OutOrStdout()); err != nil {
			log.Fatalf("Allocation failed: %v", err)
		}
		log.Info("Allocation complete.")
	},
}

type namedTable struct {
	name  string
	table *alloc.Table
}

// runAllocation loads input, runs the pipeline, writes the result tables and
// prints the run summary to out.
func runAllocation(ctx context.Context, cfg Config, input, runID string, log logrus.FieldLogger, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tbl, err := alloc.LoadCSV(input)
	if err != nil {
		return err
	}
	log.Infof("Loaded %d students with %d columns from %s", tbl.NumRows(), len(tbl.Header), input)

	res, err := alloc.Run(ctx, tbl, cfg.PipelineConfig(), log)
	if err != nil {
		return err
	}

	dir := cfg.Output.Dir
	if cfg.Output.RunSubdir {
		dir = filepath.Join(dir, "run-"+runID)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	outputs := []namedTable{
		{cfg.Output.AllocationsFile, res.AllocationTable(cfg.Columns.Allocated)},
		{cfg.Output.PreferencesFile, res.PreferenceTable()},
	}
	if res.Trace.Enabled() {
		outputs = append(outputs, namedTable{cfg.Output.TraceFile, alloc.TraceTable(res.Trace)})
	}
	for _, o := range outputs {
		path := filepath.Join(dir, o.name)
		if err := o.table.SaveCSV(path); err != nil {
			return err
		}
		log.Infof("Wrote %d rows to %s", o.table.NumRows(), path)
	}

	return printSummary(out, runID, res, cfg.Output.SummaryFormat)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append errors to this file")

	for _, c := range []*cobra.Command{runCmd, tallyCmd, validateCmd, serveCmd} {
		c.Flags().StringVar(&meritColumn, "merit-column", alloc.DefaultMeritColumn, "Merit score column (case-insensitive)")
		c.Flags().StringSliceVar(&identityColumns, "identity-columns", alloc.DefaultIdentityColumns, "Comma-separated identity columns passed through to the output")
	}
	for _, c := range []*cobra.Command{runCmd, tallyCmd, validateCmd} {
		c.Flags().StringVar(&inputPath, "input", "", "Input CSV with a header row")
	}
	for _, c := range []*cobra.Command{runCmd, tallyCmd} {
		c.Flags().StringVar(&outputDir, "output-dir", ".", "Directory for result tables")
	}

	runCmd.Flags().StringVar(&allocatedColumn, "allocated-column", alloc.DefaultAllocatedColumn, "Header of the assigned-faculty column")
	runCmd.Flags().BoolVar(&runSubdir, "run-subdir", false, "Write results into <output-dir>/run-<id>/")
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Decision trace level (none, decisions)")
	runCmd.Flags().StringVar(&summaryFormat, "summary-format", "json", "Run summary format (json, yaml)")

	serveCmd.Flags().StringVar(&allocatedColumn, "allocated-column", alloc.DefaultAllocatedColumn, "Header of the assigned-faculty column")
	serveCmd.Flags().StringVar(&serverAddr, "addr", ":8080", "Listen address")

	rootCmd.AddCommand(runCmd, tallyCmd, validateCmd, serveCmd)
}
