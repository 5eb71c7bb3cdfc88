// Package trace provides decision-trace recording for allocation runs.
// This package has no dependencies on alloc/ — it stores pure data types.
package trace

// DecisionRecord captures how a single student was assigned.
type DecisionRecord struct {
	Row      int    // input row index
	Student  string // first identity value, or a row label
	Position int    // 0-based position in merit order
	Round    int    // 1-based round number
	Faculty  string // assigned faculty; empty when unassigned
	Rank     int    // preference rank that was satisfied; 0 for fallback or unassigned
	Fallback bool   // true when no ranked choice was still available
}

// Unassigned reports whether the student left the round without a faculty.
func (r DecisionRecord) Unassigned() bool { return r.Faculty == "" }
