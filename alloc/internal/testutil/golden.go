// Package testutil provides shared test infrastructure for the allocator.
// It holds golden dataset types and fixture loading used by alloc/ and cmd/
// tests. It does not import alloc, so in-package tests can use it.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of alloc/testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one input fixture with its expected output tables.
// Table fields include the header as their first row.
type GoldenTestCase struct {
	Name             string        `json:"name"`
	Input            string        `json:"input"` // file name under alloc/testdata/
	Allocations      [][]string    `json:"allocations"`
	PreferenceCounts [][]string    `json:"preference_counts"`
	Summary          GoldenSummary `json:"summary"`
}

// GoldenSummary holds the expected decision-trace statistics.
type GoldenSummary struct {
	Students         int         `json:"students"`
	Rounds           int         `json:"rounds"`
	FallbackCount    int         `json:"fallback_count"`
	UnassignedCount  int         `json:"unassigned_count"`
	MalformedCells   int         `json:"malformed_cells"`
	RankDistribution map[int]int `json:"rank_distribution"`
}

// TestdataDir returns the absolute path of alloc/testdata/.
func TestdataDir(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from alloc/internal/testutil/ to alloc/testdata/
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "testdata")
}

// FixturePath returns the absolute path of a file under alloc/testdata/.
func FixturePath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(TestdataDir(t), name)
}

// ReadFixture returns the contents of a file under alloc/testdata/.
func ReadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(FixturePath(t, name))
	if err != nil {
		t.Fatalf("Failed to read fixture %s: %v", name, err)
	}
	return data
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	var dataset GoldenDataset
	if err := json.Unmarshal(ReadFixture(t, "goldendataset.json"), &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}
	return &dataset
}
