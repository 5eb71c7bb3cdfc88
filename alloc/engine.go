package alloc

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/thesis-alloc/thesis-alloc/alloc/trace"
)

// DefaultAllocatedColumn is the header of the assigned-faculty column.
const DefaultAllocatedColumn = "Allocated"

// AllocationRecord is one output row of the engine.
type AllocationRecord struct {
	Row      int      // input row index
	Identity []string // passed through from the input
	Merit    string   // merit cell exactly as read
	Faculty  string   // assigned faculty; empty only if the round ran dry
	Round    int      // 1-based
	Rank     int      // satisfied preference rank, 0 for fallback or unassigned
	Fallback bool
}

// Allocation is the engine output: records in merit order, one per input row.
type Allocation struct {
	Records        []AllocationRecord
	Rounds         int
	MalformedCells int
}

// round tracks which faculties are still free within one batch of students.
type round struct {
	available []bool
	remaining int
}

func newRound(n int) *round {
	r := &round{available: make([]bool, n), remaining: n}
	for i := range r.available {
		r.available[i] = true
	}
	return r
}

func (r *round) take(f int) {
	r.available[f] = false
	r.remaining--
}

// firstAvailable returns the lowest free faculty position, or -1.
func (r *round) firstAvailable() int {
	for f, ok := range r.available {
		if ok {
			return f
		}
	}
	return -1
}

// choose picks the faculty for one student: the best-ranked free faculty, else
// the first free one. It returns -1 only when the round is exhausted.
func (r *round) choose(st *StudentRecord) (faculty, rank int, fallback bool) {
	if r.remaining == 0 {
		return -1, 0, false
	}
	ranks := st.byRank(len(r.available))
	for p := 1; p < len(ranks); p++ {
		for _, f := range ranks[p] {
			if r.available[f] {
				return f, p, false
			}
		}
	}
	return r.firstAvailable(), 0, true
}

// meritOrder returns student indices sorted by merit descending, then input
// row ascending. Missing merit sorts last.
func meritOrder(students []StudentRecord) []int {
	order := make([]int, len(students))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := &students[order[i]], &students[order[j]]
		if a.Merit.Score != b.Merit.Score {
			return a.Merit.Score > b.Merit.Score
		}
		return a.Row < b.Row
	})
	return order
}

// Allocate assigns every student in t to one faculty. Students are taken in
// merit order in rounds of n = len(schema.Faculties); within a round each
// faculty is given out at most once. at may be nil.
func Allocate(t *Table, schema Schema, at *trace.AllocationTrace, log logrus.FieldLogger) (*Allocation, error) {
	log = orDiscard(log)

	n := schema.NumFaculties()
	if n == 0 {
		err := &AllocationError{Reason: ErrNoFaculties}
		log.Error(err)
		return nil, err
	}

	students, malformed := readStudents(t, schema, log)
	order := meritOrder(students)

	out := &Allocation{
		Records:        make([]AllocationRecord, 0, len(students)),
		MalformedCells: malformed,
	}

	var current *round
	for pos, idx := range order {
		if pos%n == 0 {
			current = newRound(n)
			out.Rounds++
		}
		st := &students[idx]

		rec := AllocationRecord{
			Row:      st.Row,
			Identity: st.Identity,
			Merit:    st.MeritRaw,
			Round:    out.Rounds,
		}
		f, rank, fallback := current.choose(st)
		if f < 0 {
			log.WithFields(logrus.Fields{"row": st.Row, "round": out.Rounds}).
				Warnf("no faculty left for %s; leaving unassigned", st.Name())
		} else {
			current.take(f)
			rec.Faculty = schema.Faculties[f].Label
			rec.Rank = rank
			rec.Fallback = fallback
			if fallback {
				log.WithField("round", out.Rounds).Debugf("%s fell back to %s", st.Name(), rec.Faculty)
			}
		}
		out.Records = append(out.Records, rec)

		at.RecordDecision(trace.DecisionRecord{
			Row:      st.Row,
			Student:  st.Name(),
			Position: pos,
			Round:    out.Rounds,
			Faculty:  rec.Faculty,
			Rank:     rec.Rank,
			Fallback: rec.Fallback,
		})
	}

	if at != nil {
		at.Rounds = out.Rounds
		at.MalformedCells = malformed
	}
	log.Infof("allocated %d students to %d faculties over %d rounds", len(out.Records), n, out.Rounds)
	return out, nil
}

// Table renders the allocation as identity columns, the merit column and the
// assigned faculty, in merit order.
func (a *Allocation) Table(schema Schema, allocatedLabel string) *Table {
	if allocatedLabel == "" {
		allocatedLabel = DefaultAllocatedColumn
	}
	header := make([]string, 0, len(schema.Identity)+2)
	for _, c := range schema.Identity {
		header = append(header, c.Label)
	}
	header = append(header, schema.Merit.Label, allocatedLabel)

	rows := make([][]string, len(a.Records))
	for i, rec := range a.Records {
		row := make([]string, 0, len(header))
		row = append(row, rec.Identity...)
		row = append(row, rec.Merit, rec.Faculty)
		rows[i] = row
	}
	return &Table{Header: header, Rows: rows}
}
