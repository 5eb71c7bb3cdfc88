package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thesis-alloc/thesis-alloc/alloc"
)

// validateCmd resolves the schema of an input file without allocating
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that an input CSV has a merit column and faculty columns",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		logger, closeLog, err := newLogger(cfg.Log, cmd.ErrOrStderr())
		if err != nil {
			logrus.Fatalf("Failed to set up logging: %v", err)
		}
		defer func() { _ = closeLog() }()

		if inputPath == "" {
			logger.Fatal("Input file not provided (--input). Exiting.")
		}
		if err := runValidate(cfg, inputPath, logger, cmd.OutOrStdout()); err != nil {
			logger.Fatalf("Validation failed: %v", err)
		}
	},
}

func runValidate(cfg Config, input string, log logrus.FieldLogger, out io.Writer) error {
	tbl, err := alloc.LoadCSV(input)
	if err != nil {
		return err
	}
	schema, err := alloc.ResolveSchema(tbl.Header, cfg.PipelineConfig().Schema, log)
	if err != nil {
		return err
	}

	identity := make([]string, len(schema.Identity))
	for i, c := range schema.Identity {
		identity[i] = c.Label
	}
	_, err = fmt.Fprintf(out, "students:  %d\nmerit:     %s\nidentity:  %s\nfaculties: %s (%d)\n",
		tbl.NumRows(), schema.Merit.Label, strings.Join(identity, ", "),
		strings.Join(schema.FacultyLabels(), ", "), schema.NumFaculties())
	return err
}
