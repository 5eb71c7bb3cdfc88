package trace

import "testing"

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)

	if summary.Students != 0 || summary.Rounds != 0 {
		t.Errorf("expected zero students and rounds, got %d/%d", summary.Students, summary.Rounds)
	}
	if summary.RankDistribution == nil {
		t.Error("expected non-nil rank distribution")
	}
	if summary.FirstChoiceRate != 0 || summary.MeanSatisfiedRank != 0 {
		t.Error("expected zero rates")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with ranked, fallback and unassigned decisions
	at := NewAllocationTrace(TraceLevelDecisions)
	at.Rounds = 2
	at.MalformedCells = 4
	at.RecordDecision(DecisionRecord{Row: 0, Faculty: "F1", Rank: 1})
	at.RecordDecision(DecisionRecord{Row: 1, Faculty: "F2", Rank: 3})
	at.RecordDecision(DecisionRecord{Row: 2, Faculty: "F3", Fallback: true})
	at.RecordDecision(DecisionRecord{Row: 3, Faculty: "F1", Rank: 1})
	at.RecordDecision(DecisionRecord{Row: 4})

	// WHEN summarized
	summary := Summarize(at)

	// THEN counts match
	if summary.Students != 5 {
		t.Errorf("expected 5 students, got %d", summary.Students)
	}
	if summary.FallbackCount != 1 {
		t.Errorf("expected 1 fallback, got %d", summary.FallbackCount)
	}
	if summary.UnassignedCount != 1 {
		t.Errorf("expected 1 unassigned, got %d", summary.UnassignedCount)
	}
	if summary.RankDistribution[1] != 2 || summary.RankDistribution[3] != 1 {
		t.Errorf("unexpected rank distribution %v", summary.RankDistribution)
	}
	if summary.MalformedCells != 4 || summary.Rounds != 2 {
		t.Errorf("expected malformed=4 rounds=2, got %d/%d", summary.MalformedCells, summary.Rounds)
	}

	// THEN first-choice rate = 2/5 and mean satisfied rank = (1+3+1)/3
	if summary.FirstChoiceRate != 0.4 {
		t.Errorf("expected first choice rate 0.4, got %.4f", summary.FirstChoiceRate)
	}
	expectedMean := 5.0 / 3.0
	if summary.MeanSatisfiedRank < expectedMean-0.001 || summary.MeanSatisfiedRank > expectedMean+0.001 {
		t.Errorf("expected mean rank ~%.4f, got %.4f", expectedMean, summary.MeanSatisfiedRank)
	}
}
