package alloc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesis-alloc/thesis-alloc/alloc/trace"
)

func TestAllocate_TopMeritChoosesFirstWithinRound(t *testing.T) {
	// GIVEN 4 students with merit [9.1, 8.7, 8.7, 7.0] and 2 faculties
	tbl := mustReadCSV(t, `Roll,Name,Email,CGPA,F1,F2
A,a,a@x,9.1,2,1
B,b,b@x,8.7,1,2
C,c,c@x,8.7,1,2
D,d,d@x,7.0,2,1
`)
	s := mustResolve(t, tbl)

	// WHEN allocated
	a, err := Allocate(tbl, s, nil, nil)
	require.NoError(t, err)

	// THEN round 1 = {A, B} with A→F2 and B→F1; the tie between B and C goes to B
	assert.Equal(t, 2, a.Rounds)
	got := make([]string, len(a.Records))
	for i, r := range a.Records {
		got[i] = fmt.Sprintf("%s:%d:%s", r.Identity[0], r.Round, r.Faculty)
	}
	assert.Equal(t, []string{"A:1:F2", "B:1:F1", "C:2:F1", "D:2:F2"}, got)
}

func TestAllocate_FiveStudentsThreeFaculties_RoundSizes(t *testing.T) {
	tbl := mustReadCSV(t, `Roll,CGPA,F1,F2,F3
s1,9,1,2,3
s2,8,1,2,3
s3,7,1,2,3
s4,6,1,2,3
s5,5,1,2,3
`)
	a, err := Allocate(tbl, mustResolve(t, tbl), nil, nil)
	require.NoError(t, err)

	rounds := facultiesByRound(a)
	assert.Equal(t, 2, a.Rounds)
	assert.Equal(t, []string{"F1", "F2", "F3"}, rounds[1])
	assert.Equal(t, []string{"F1", "F2"}, rounds[2])
}

func TestAllocate_NoParsablePreferences_FallsBackToFirstAvailable(t *testing.T) {
	// GIVEN the top student takes F1 and the second has only garbage preferences
	tbl := mustReadCSV(t, `Roll,CGPA,F1,F2,F3
top,9.5,1,2,3
lost,9.0,x,,7
`)
	log, hook := newTestLogger()

	// WHEN allocated
	a, err := Allocate(tbl, mustResolve(t, tbl), nil, log)
	require.NoError(t, err)

	// THEN the second student gets the first faculty still free, flagged as fallback
	require.Len(t, a.Records, 2)
	lost := a.Records[1]
	assert.Equal(t, "F2", lost.Faculty)
	assert.True(t, lost.Fallback)
	assert.Equal(t, 0, lost.Rank)
	assert.Equal(t, 2, a.MalformedCells)

	// AND the malformed cells were reported at debug level, not as errors
	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, logrus.ErrorLevel, e.Level, e.Message)
	}
}

func TestAllocate_ExhaustedChoices_FallBack(t *testing.T) {
	// Every student only ranks F1; later students in the round fall back in column order.
	tbl := mustReadCSV(t, `Roll,CGPA,F1,F2,F3
a,9,1,,
b,8,1,,
c,7,1,,
`)
	a, err := Allocate(tbl, mustResolve(t, tbl), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "F1", assignedTo(t, a, "a"))
	assert.Equal(t, "F2", assignedTo(t, a, "b"))
	assert.Equal(t, "F3", assignedTo(t, a, "c"))
	assert.True(t, a.Records[2].Fallback)
}

func TestAllocate_SharedRank_ScansInColumnOrder(t *testing.T) {
	tbl := mustReadCSV(t, `Roll,CGPA,F1,F2,F3
a,9,1,2,3
b,8,1,1,2
`)
	a, err := Allocate(tbl, mustResolve(t, tbl), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "F2", assignedTo(t, a, "b"))
	assert.Equal(t, 1, a.Records[1].Rank)
}

func TestAllocate_MissingMerit_SortsLastInInputOrder(t *testing.T) {
	tbl := mustReadCSV(t, `Roll,CGPA,F1
n1,,1
n2,n/a,1
ok,2.5,1
`)
	a, err := Allocate(tbl, mustResolve(t, tbl), nil, nil)
	require.NoError(t, err)

	var order []string
	for _, r := range a.Records {
		order = append(order, r.Identity[0])
	}
	assert.Equal(t, []string{"ok", "n1", "n2"}, order)
	assert.Equal(t, "n/a", a.Records[2].Merit, "merit cell passes through verbatim")
	assert.Equal(t, 1, a.MalformedCells, "blank merit is absent, not malformed")
}

func TestAllocate_NoFaculties_AllocationError(t *testing.T) {
	log, hook := newTestLogger()
	tbl := &Table{Header: []string{"Roll", "CGPA"}, Rows: [][]string{{"a", "9"}}}

	_, err := Allocate(tbl, Schema{Merit: Column{Label: "CGPA", Index: 1}}, nil, log)

	var ae *AllocationError
	require.True(t, errors.As(err, &ae))
	assert.ErrorIs(t, err, ErrNoFaculties)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestAllocate_EmptyTable_NoRecords(t *testing.T) {
	tbl := mustReadCSV(t, "Roll,CGPA,F1\n")
	a, err := Allocate(tbl, mustResolve(t, tbl), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, a.Records)
	assert.Equal(t, 0, a.Rounds)
}

// syntheticCohort builds a table of students faculties wide with rotating
// preferences and a handful of merit ties.
func syntheticCohort(students, faculties int) string {
	var b strings.Builder
	b.WriteString("Roll,CGPA")
	for f := 0; f < faculties; f++ {
		fmt.Fprintf(&b, ",F%d", f+1)
	}
	b.WriteString("\n")
	for s := 0; s < students; s++ {
		fmt.Fprintf(&b, "s%02d,%.1f", s, 6.0+float64((s*7)%9)/2)
		for f := 0; f < faculties; f++ {
			rank := (f+s)%faculties + 1
			if (s+f)%5 == 0 {
				b.WriteString(",")
				continue
			}
			fmt.Fprintf(&b, ",%d", rank)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func TestAllocate_Invariants_RowCountAndPerRoundInjection(t *testing.T) {
	for _, tc := range []struct{ students, faculties int }{
		{1, 1}, {7, 3}, {23, 4}, {40, 5}, {12, 6},
	} {
		t.Run(fmt.Sprintf("%dx%d", tc.students, tc.faculties), func(t *testing.T) {
			tbl := mustReadCSV(t, syntheticCohort(tc.students, tc.faculties))
			a, err := Allocate(tbl, mustResolve(t, tbl), nil, nil)
			require.NoError(t, err)

			// Output has one record per input row
			assert.Len(t, a.Records, tbl.NumRows())
			seen := make(map[int]bool)
			for _, r := range a.Records {
				assert.False(t, seen[r.Row], "row %d emitted twice", r.Row)
				seen[r.Row] = true
				assert.NotEmpty(t, r.Faculty, "row %d unassigned", r.Row)
			}

			// No faculty repeats within a round
			for round, facs := range facultiesByRound(a) {
				uniq := make(map[string]bool)
				for _, f := range facs {
					assert.False(t, uniq[f], "round %d reuses %s", round, f)
					uniq[f] = true
				}
				assert.LessOrEqual(t, len(facs), tc.faculties)
			}
		})
	}
}

func TestAllocate_SameInput_IdenticalOutput(t *testing.T) {
	text := syntheticCohort(31, 4)
	render := func() []byte {
		tbl := mustReadCSV(t, text)
		s := mustResolve(t, tbl)
		a, err := Allocate(tbl, s, nil, nil)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, a.Table(s, "").WriteCSV(&buf))
		return buf.Bytes()
	}

	first, second := render(), render()
	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Errorf("allocation not deterministic (-first +second):\n%s", diff)
	}
}

func TestAllocate_RecordsDecisionsInTrace(t *testing.T) {
	tbl := mustReadCSV(t, `Roll,CGPA,F1,F2
a,9,2,1
b,8,,
c,7,1,2
`)
	at := trace.NewAllocationTrace(trace.TraceLevelDecisions)

	_, err := Allocate(tbl, mustResolve(t, tbl), at, nil)
	require.NoError(t, err)

	want := []trace.DecisionRecord{
		{Row: 0, Student: "a", Position: 0, Round: 1, Faculty: "F2", Rank: 1},
		{Row: 1, Student: "b", Position: 1, Round: 1, Faculty: "F1", Fallback: true},
		{Row: 2, Student: "c", Position: 2, Round: 2, Faculty: "F1", Rank: 1},
	}
	if diff := cmp.Diff(want, at.Decisions); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, at.Rounds)
}

func TestAllocation_Table_Shape(t *testing.T) {
	tbl := mustReadCSV(t, `Email,Roll,CGPA,F1
e@x,r1,9,1
`)
	s := mustResolve(t, tbl)
	a, err := Allocate(tbl, s, nil, nil)
	require.NoError(t, err)

	out := a.Table(s, "Supervisor")
	assert.Equal(t, []string{"Roll", "Email", "CGPA", "Supervisor"}, out.Header)
	assert.Equal(t, [][]string{{"r1", "e@x", "9", "F1"}}, out.Rows)
}

func TestRound_ExhaustedRound_LeavesStudentUnassigned(t *testing.T) {
	r := newRound(1)
	r.take(0)
	st := &StudentRecord{Prefs: []RankCell{{Kind: CellValid, Rank: 1}}}

	f, rank, fallback := r.choose(st)

	assert.Equal(t, -1, f)
	assert.Equal(t, 0, rank)
	assert.False(t, fallback)
}
