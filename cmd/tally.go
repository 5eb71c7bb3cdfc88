package cmd

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thesis-alloc/thesis-alloc/alloc"
)

// tallyCmd writes only the preference count table
var tallyCmd = &cobra.Command{
	Use:   "tally",
	Short: "Count how many students ranked each faculty at each position",
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

		if inputPath == "" {
			logger.Fatal("Input file not provided (--input). Exiting.")
		}
		path, err := runTally(cfg, inputPath, logger)
		if err != nil {
			logger.Fatalf("Tally failed: %v", err)
		}
		logger.Infof("Wrote preference counts to %s", path)
	},
}

// runTally resolves the schema and writes the preference count table,
// returning the path written.
func runTally(cfg Config, input string, log logrus.FieldLogger) (string, error) {
	tbl, err := alloc.LoadCSV(input)
	if err != nil {
		return "", err
	}
	schema, err := alloc.ResolveSchema(tbl.Header, cfg.PipelineConfig().Schema, log)
	if err != nil {
		return "", err
	}
	pc, err := alloc.Tally(tbl, schema, log)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(cfg.Output.Dir, cfg.Output.PreferencesFile)
	return path, pc.Table().SaveCSV(path)
}
