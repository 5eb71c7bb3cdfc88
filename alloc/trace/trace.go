package trace

// TraceLevel controls whether per-student decisions are kept.
type TraceLevel string

const (
	// TraceLevelNone disables decision recording.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions keeps one record per assigned student.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// AllocationTrace collects decision records during one allocation run.
type AllocationTrace struct {
	Level          TraceLevel
	Decisions      []DecisionRecord
	Rounds         int
	MalformedCells int
}

// NewAllocationTrace creates an AllocationTrace ready for recording.
func NewAllocationTrace(level TraceLevel) *AllocationTrace {
	return &AllocationTrace{
		Level:     level,
		Decisions: make([]DecisionRecord, 0),
	}
}

// Enabled reports whether decisions are being kept. Safe on nil.
func (at *AllocationTrace) Enabled() bool {
	return at != nil && at.Level == TraceLevelDecisions
}

// RecordDecision appends a decision record when recording is enabled.
func (at *AllocationTrace) RecordDecision(record DecisionRecord) {
	if !at.Enabled() {
		return
	}
	at.Decisions = append(at.Decisions, record)
}
