package alloc

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// StudentRecord is one input row as seen by the engine.
// It is not mutated after readStudents returns.
type StudentRecord struct {
	Row      int      // original input order, the final tie-breaker
	Identity []string // values of Schema.Identity, passed through unchanged
	MeritRaw string   // merit cell exactly as read
	Merit    MeritCell
	Prefs    []RankCell // indexed like Schema.Faculties
}

// Name returns the first identity value, or a row label when the table has no
// identity columns or the cell is blank.
func (s *StudentRecord) Name() string {
	if len(s.Identity) > 0 && s.Identity[0] != "" {
		return s.Identity[0]
	}
	return fmt.Sprintf("row %d", s.Row)
}

// byRank groups faculty positions by the rank the student gave them.
// Index 0 is unused; faculties sharing a rank keep column order.
func (s *StudentRecord) byRank(n int) [][]int {
	ranks := make([][]int, n+1)
	for f, c := range s.Prefs {
		if c.Kind == CellValid {
			ranks[c.Rank] = append(ranks[c.Rank], f)
		}
	}
	return ranks
}

// readStudents parses every row of t against schema. Malformed cells are
// logged and counted, never returned as errors.
func readStudents(t *Table, schema Schema, log logrus.FieldLogger) ([]StudentRecord, int) {
	n := schema.NumFaculties()
	malformed := 0
	students := make([]StudentRecord, t.NumRows())

	for row := range t.Rows {
		st := StudentRecord{
			Row:      row,
			Identity: make([]string, len(schema.Identity)),
			MeritRaw: t.Cell(row, schema.Merit.Index),
			Prefs:    make([]RankCell, n),
		}
		for i, col := range schema.Identity {
			st.Identity[i] = t.Cell(row, col.Index)
		}

		st.Merit = ParseMerit(st.MeritRaw)
		if st.Merit.Kind == CellMalformed {
			malformed++
			reportMalformed(log, &MalformedCellError{Row: row, Column: schema.Merit.Label, Value: st.MeritRaw, Reason: st.Merit.Reason})
		}

		for f, col := range schema.Faculties {
			raw := t.Cell(row, col.Index)
			st.Prefs[f] = ParseRank(raw, n)
			if st.Prefs[f].Kind == CellMalformed {
				malformed++
				reportMalformed(log, &MalformedCellError{Row: row, Column: col.Label, Value: raw, Reason: st.Prefs[f].Reason})
			}
		}
		students[row] = st
	}
	return students, malformed
}
