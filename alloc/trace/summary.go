package trace

// TraceSummary aggregates statistics from an AllocationTrace.
type TraceSummary struct {
	Students          int         `json:"students" yaml:"students"`
	Rounds            int         `json:"rounds" yaml:"rounds"`
	RankDistribution  map[int]int `json:"rank_distribution" yaml:"rank_distribution"` // satisfied rank → students
	FallbackCount     int         `json:"fallback_count" yaml:"fallback_count"`
	UnassignedCount   int         `json:"unassigned_count" yaml:"unassigned_count"`
	MalformedCells    int         `json:"malformed_cells" yaml:"malformed_cells"`
	FirstChoiceRate   float64     `json:"first_choice_rate" yaml:"first_choice_rate"`
	MeanSatisfiedRank float64     `json:"mean_satisfied_rank" yaml:"mean_satisfied_rank"` // over rank-satisfied students only
}

// Summarize computes aggregate statistics from an AllocationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(at *AllocationTrace) *TraceSummary {
	summary := &TraceSummary{
		RankDistribution: make(map[int]int),
	}
	if at == nil {
		return summary
	}

	summary.Students = len(at.Decisions)
	summary.Rounds = at.Rounds
	summary.MalformedCells = at.MalformedCells

	rankSum, ranked := 0, 0
	for _, d := range at.Decisions {
		switch {
		case d.Unassigned():
			summary.UnassignedCount++
		case d.Fallback:
			summary.FallbackCount++
		default:
			summary.RankDistribution[d.Rank]++
			rankSum += d.Rank
			ranked++
		}
	}

	if summary.Students > 0 {
		summary.FirstChoiceRate = float64(summary.RankDistribution[1]) / float64(summary.Students)
	}
	if ranked > 0 {
		summary.MeanSatisfiedRank = float64(rankSum) / float64(ranked)
	}
	return summary
}
