package alloc

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/thesis-alloc/thesis-alloc/alloc/trace"
)

// Config groups the knobs of one pipeline run.
type Config struct {
	Schema          SchemaConfig
	AllocatedColumn string           // output header for the assigned faculty
	TraceLevel      trace.TraceLevel // "" or "none" skips per-student records
}

// Result bundles everything one run produces.
type Result struct {
	Schema      Schema
	Allocation  *Allocation
	Preferences *PreferenceCounts
	Trace       *trace.AllocationTrace
}

// Run resolves the schema of t, then allocates and tallies concurrently. Both
// passes only read t.
func Run(ctx context.Context, t *Table, cfg Config, log logrus.FieldLogger) (*Result, error) {
	log = orDiscard(log)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schema, err := ResolveSchema(t.Header, cfg.Schema, log)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Schema: schema,
		Trace:  trace.NewAllocationTrace(cfg.TraceLevel),
	}

	var g errgroup.Group
	g.Go(func() error {
		a, err := Allocate(t, schema, res.Trace, log.WithField("stage", "allocate"))
		res.Allocation = a
		return err
	})
	g.Go(func() error {
		pc, err := Tally(t, schema, log.WithField("stage", "tally"))
		res.Preferences = pc
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// AllocationTable renders the allocation output table.
func (r *Result) AllocationTable(allocatedLabel string) *Table {
	return r.Allocation.Table(r.Schema, allocatedLabel)
}

// PreferenceTable renders the preference count output table.
func (r *Result) PreferenceTable() *Table {
	return r.Preferences.Table()
}

var traceHeader = []string{"position", "row", "student", "round", "faculty", "rank", "fallback"}

// TraceTable renders the decision trace, one row per recorded decision.
func TraceTable(at *trace.AllocationTrace) *Table {
	t := &Table{Header: append([]string(nil), traceHeader...)}
	if at == nil {
		return t
	}
	for _, d := range at.Decisions {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(d.Position),
			strconv.Itoa(d.Row),
			d.Student,
			strconv.Itoa(d.Round),
			d.Faculty,
			strconv.Itoa(d.Rank),
			strconv.FormatBool(d.Fallback),
		})
	}
	return t
}
