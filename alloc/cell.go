package alloc

import (
	"math"
	"strconv"
	"strings"
)

// CellKind classifies a parsed cell.
type CellKind int

const (
	CellAbsent    CellKind = iota // blank cell
	CellValid                     // usable value
	CellMalformed                 // present but unusable
)

func (k CellKind) String() string {
	switch k {
	case CellAbsent:
		return "absent"
	case CellValid:
		return "valid"
	case CellMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// RankCell is the parse result of one preference cell.
type RankCell struct {
	Kind   CellKind
	Rank   int    // 1..n when Kind == CellValid
	Reason string // set when Kind == CellMalformed
}

// ParseRank parses a preference cell against a domain of n faculties.
// Integers and integral floats ("2.0") in 1..n are valid; blanks are absent;
// everything else is malformed.
func ParseRank(raw string, n int) RankCell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return RankCell{Kind: CellAbsent}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return RankCell{Kind: CellMalformed, Reason: "preference is not a number"}
		}
		if f != math.Trunc(f) {
			return RankCell{Kind: CellMalformed, Reason: "preference is not an integer"}
		}
		if f < 1 || f > float64(n) {
			return RankCell{Kind: CellMalformed, Reason: "preference out of range"}
		}
		v = int(f)
	}
	if v < 1 || v > n {
		return RankCell{Kind: CellMalformed, Reason: "preference out of range"}
	}
	return RankCell{Kind: CellValid, Rank: v}
}

// MissingMerit is the sentinel score for unparsable merit cells. It sorts
// after every finite score.
var MissingMerit = math.Inf(-1)

// MeritCell is the parse result of one merit cell.
type MeritCell struct {
	Kind   CellKind
	Score  float64 // MissingMerit unless Kind == CellValid
	Reason string
}

// ParseMerit parses a merit score. NaN and infinities count as malformed.
func ParseMerit(raw string) MeritCell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return MeritCell{Kind: CellAbsent, Score: MissingMerit}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return MeritCell{Kind: CellMalformed, Score: MissingMerit, Reason: "merit score is not a finite number"}
	}
	return MeritCell{Kind: CellValid, Score: f}
}
