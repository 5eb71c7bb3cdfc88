package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thesis-alloc/thesis-alloc/alloc"
	"github.com/thesis-alloc/thesis-alloc/alloc/trace"
)

// Config represents the full config.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Columns ColumnsConfig `yaml:"columns"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	Trace   string        `yaml:"trace"` // "none" or "decisions"
}

// ColumnsConfig names the input columns to resolve and the output column to add.
type ColumnsConfig struct {
	Merit     string   `yaml:"merit"`
	Identity  []string `yaml:"identity"`
	Allocated string   `yaml:"allocated"`
}

// OutputConfig controls where result tables are written.
type OutputConfig struct {
	Dir             string `yaml:"dir"`
	RunSubdir       bool   `yaml:"run_subdir"` // write into <dir>/run-<id>/
	AllocationsFile string `yaml:"allocations_file"`
	PreferencesFile string `yaml:"preferences_file"`
	TraceFile       string `yaml:"trace_file"`
	SummaryFormat   string `yaml:"summary_format"` // "json" or "yaml"
}

// LogConfig controls verbosity and the persistent error log.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // append-only error log; empty disables it
}

// ServerConfig controls the HTTP upload shell.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Columns: ColumnsConfig{
			Merit:     alloc.DefaultMeritColumn,
			Identity:  append([]string(nil), alloc.DefaultIdentityColumns...),
			Allocated: alloc.DefaultAllocatedColumn,
		},
		Output: OutputConfig{
			Dir:             ".",
			AllocationsFile: "allocations.csv",
			PreferencesFile: "preference_counts.csv",
			TraceFile:       "allocation_trace.csv",
			SummaryFormat:   "json",
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 10 << 20,
		},
		Trace: string(trace.TraceLevelNone),
	}
}

// LoadConfig parses path over the defaults. Uses strict field checking so
// typos cause errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config YAML %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerated values and ranges.
func (c Config) Validate() error {
	if !trace.IsValidTraceLevel(c.Trace) {
		return fmt.Errorf("unknown trace level %q", c.Trace)
	}
	switch c.Output.SummaryFormat {
	case "json", "yaml":
	default:
		return fmt.Errorf("unknown summary format %q", c.Output.SummaryFormat)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	return nil
}

// PipelineConfig converts the column settings for alloc.Run.
func (c Config) PipelineConfig() alloc.Config {
	return alloc.Config{
		Schema: alloc.SchemaConfig{
			MeritColumn:     c.Columns.Merit,
			IdentityColumns: c.Columns.Identity,
		},
		AllocatedColumn: c.Columns.Allocated,
		TraceLevel:      trace.TraceLevel(c.Trace),
	}
}

// resolveConfig loads --config and lets explicitly set flags win over it.
// Flags left at their defaults never overwrite file values.
func resolveConfig(cmd *cobra.Command) (Config, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("log") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
	if flags.Changed("merit-column") {
		cfg.Columns.Merit = meritColumn
	}
	if flags.Changed("identity-columns") {
		cfg.Columns.Identity = identityColumns
	}
	if flags.Changed("allocated-column") {
		cfg.Columns.Allocated = allocatedColumn
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = outputDir
	}
	if flags.Changed("run-subdir") {
		cfg.Output.RunSubdir = runSubdir
	}
	if flags.Changed("trace") {
		cfg.Trace = traceLevel
	}
	if flags.Changed("summary-format") {
		cfg.Output.SummaryFormat = summaryFormat
	}
	if flags.Changed("addr") {
		cfg.Server.Addr = serverAddr
	}
	return cfg, cfg.Validate()
}
