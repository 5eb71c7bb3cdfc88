package alloc

import (
	"io"
	"strings"
	"testing"
)

func stringsReader(s string) io.Reader { return strings.NewReader(s) }

// mustResolve resolves the default schema for tbl.
func mustResolve(t *testing.T, tbl *Table) Schema {
	t.Helper()
	s, err := ResolveSchema(tbl.Header, SchemaConfig{}, nil)
	if err != nil {
		t.Fatalf("ResolveSchema: %v", err)
	}
	return s
}

// facultiesByRound groups assigned faculties by round number.
func facultiesByRound(a *Allocation) map[int][]string {
	out := make(map[int][]string)
	for _, r := range a.Records {
		out[r.Round] = append(out[r.Round], r.Faculty)
	}
	return out
}

// assignedTo returns the faculty assigned to the student whose first identity
// value is id.
func assignedTo(t *testing.T, a *Allocation, id string) string {
	t.Helper()
	for _, r := range a.Records {
		if len(r.Identity) > 0 && r.Identity[0] == id {
			return r.Faculty
		}
	}
	t.Fatalf("student %s not in allocation", id)
	return ""
}
