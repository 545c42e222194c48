// Package testutil provides shared test infrastructure for the portfolio
// packages: run-record fixtures, CSV fixture files and float assertions.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/inference-sim/portfolio-solver/portfolio"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// Algo returns an algorithm with the given name and thread count.
func Algo(name string, threads uint32) portfolio.Algorithm {
	return portfolio.Algorithm{Name: name, NumThreads: threads}
}

// Inst returns an instance with k = 2 and threshold 0.03.
func Inst(name string) portfolio.Instance {
	return portfolio.Instance{Name: name, K: 2, FeasibilityThreshold: 0.03}
}

// Run returns a valid record with time 1.
func Run(algo portfolio.Algorithm, inst portfolio.Instance, quality float64) portfolio.RunRecord {
	return portfolio.NewRunRecord(algo, inst, quality, 1, true)
}

// ScenarioA returns two single-threaded algorithms on four instances:
// algo1 {20, 18, 10, 8} and algo2 {9, 7, 22, 24}. The best quality per
// instance is [9, 7, 10, 8].
func ScenarioA() []portfolio.RunRecord {
	a1, a2 := Algo("algo1", 1), Algo("algo2", 1)
	names := []string{"g1", "g2", "g3", "g4"}
	q1 := []float64{20, 18, 10, 8}
	q2 := []float64{9, 7, 22, 24}
	records := make([]portfolio.RunRecord, 0, 8)
	for i, n := range names {
		records = append(records, Run(a1, Inst(n), q1[i]))
	}
	for i, n := range names {
		records = append(records, Run(a2, Inst(n), q2[i]))
	}
	return records
}

// WriteFile writes content to name inside a fresh temporary directory and
// returns the path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}
