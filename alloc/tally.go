package alloc

import (
	"strconv"

	"github.com/sirupsen/logrus"
)

// FacultyHeader is the first header cell of the preference count table.
const FacultyHeader = "Faculty"

// PreferenceCounts holds, for every faculty, how many students ranked it at
// each position. Counts[f][p-1] is the count for faculty f at rank p.
type PreferenceCounts struct {
	Faculties      []string
	Counts         [][]int
	MalformedCells int
}

// Total returns the number of students who gave faculty f any valid rank.
func (pc *PreferenceCounts) Total(f int) int {
	sum := 0
	for _, c := range pc.Counts[f] {
		sum += c
	}
	return sum
}

// Tally counts valid preference ranks over the raw, unsorted table. It reads
// t without modifying it and may run alongside Allocate.
func Tally(t *Table, schema Schema, log logrus.FieldLogger) (*PreferenceCounts, error) {
	log = orDiscard(log)

	n := schema.NumFaculties()
	if n == 0 {
		err := &AllocationError{Reason: ErrNoFaculties}
		log.Error(err)
		return nil, err
	}

	pc := &PreferenceCounts{
		Faculties: schema.FacultyLabels(),
		Counts:    make([][]int, n),
	}
	for f := range pc.Counts {
		pc.Counts[f] = make([]int, n)
	}

	for row := range t.Rows {
		for f, col := range schema.Faculties {
			raw := t.Cell(row, col.Index)
			cell := ParseRank(raw, n)
			switch cell.Kind {
			case CellValid:
				pc.Counts[f][cell.Rank-1]++
			case CellMalformed:
				pc.MalformedCells++
				reportMalformed(log, &MalformedCellError{Row: row, Column: col.Label, Value: raw, Reason: cell.Reason})
			case CellAbsent:
			}
		}
	}

	log.Debugf("tallied preferences of %d students across %d faculties", t.NumRows(), n)
	return pc, nil
}

// Table renders one row per faculty followed by the counts for ranks 1..n.
func (pc *PreferenceCounts) Table() *Table {
	n := len(pc.Faculties)
	header := make([]string, 0, n+1)
	header = append(header, FacultyHeader)
	for p := 1; p <= n; p++ {
		header = append(header, strconv.Itoa(p))
	}

	rows := make([][]string, n)
	for f, label := range pc.Faculties {
		row := make([]string, 0, n+1)
		row = append(row, label)
		for _, c := range pc.Counts[f] {
			row = append(row, strconv.Itoa(c))
		}
		rows[f] = row
	}
	return &Table{Header: header, Rows: rows}
}
