package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/thesis-alloc/thesis-alloc/alloc"
	"github.com/thesis-alloc/thesis-alloc/alloc/trace"
)

// RunSummary is printed to stdout after every run.
type RunSummary struct {
	RunID          string              `json:"run_id" yaml:"run_id"`
	MeritColumn    string              `json:"merit_column" yaml:"merit_column"`
	Faculties      []string            `json:"faculties" yaml:"faculties"`
	Students       int                 `json:"students" yaml:"students"`
	Rounds         int                 `json:"rounds" yaml:"rounds"`
	MalformedCells int                 `json:"malformed_cells" yaml:"malformed_cells"`
	Decisions      *trace.TraceSummary `json:"decisions,omitempty" yaml:"decisions,omitempty"`
}

func newRunSummary(runID string, res *alloc.Result) RunSummary {
	s := RunSummary{
		RunID:          runID,
		MeritColumn:    res.Schema.Merit.Label,
		Faculties:      res.Schema.FacultyLabels(),
		Students:       len(res.Allocation.Records),
		Rounds:         res.Allocation.Rounds,
		MalformedCells: res.Allocation.MalformedCells,
	}
	if res.Trace.Enabled() {
		s.Decisions = trace.Summarize(res.Trace)
	}
	return s
}

// printSummary writes the run summary under a fixed banner.
func printSummary(out io.Writer, runID string, res *alloc.Result, format string) error {
	s := newRunSummary(runID, res)

	var data []byte
	var err error
	switch format {
	case "yaml":
		data, err = yaml.Marshal(s)
	default:
		data, err = json.MarshalIndent(s, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("marshaling run summary: %w", err)
	}

	if _, err := fmt.Fprintln(out, "=== Allocation Summary ==="); err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
