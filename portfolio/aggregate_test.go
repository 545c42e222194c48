package portfolio_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/portfolio-solver/internal/testutil"
	"github.com/inference-sim/portfolio-solver/portfolio"
)

func TestBestPerInstance_ScenarioA(t *testing.T) {
	// GIVEN algo1 {20,18,10,8} and algo2 {9,7,22,24} on four instances
	records := testutil.ScenarioA()

	// WHEN the best quality per instance is computed
	best := portfolio.BestPerInstance(records)

	// THEN it is the lower of the two per instance, in instance order
	want := []portfolio.InstanceValue{
		{Instance: testutil.Inst("g1"), Value: 9},
		{Instance: testutil.Inst("g2"), Value: 7},
		{Instance: testutil.Inst("g3"), Value: 10},
		{Instance: testutil.Inst("g4"), Value: 8},
	}
	if diff := cmp.Diff(want, best); diff != "" {
		t.Errorf("BestPerInstance mismatch (-want +got):\n%s", diff)
	}
}

func TestBestPerInstance_InputOrderIrrelevant(t *testing.T) {
	records := testutil.ScenarioA()
	reversed := make([]portfolio.RunRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}
	if diff := cmp.Diff(portfolio.BestPerInstance(records), portfolio.BestPerInstance(reversed)); diff != "" {
		t.Errorf("order changed the result (-fwd +rev):\n%s", diff)
	}
}

func TestBestPerInstanceCount_ScenarioA(t *testing.T) {
	records := testutil.ScenarioA()
	algorithms := portfolio.DistinctAlgorithms(records)

	counts := portfolio.BestPerInstanceCount(records, algorithms)

	// algo2 wins g1, g2; algo1 wins g3, g4
	assert.Equal(t, []float64{2, 2}, counts)
}

func TestBestPerInstanceCount_NeverBestAlgorithm_ZeroNotDropped(t *testing.T) {
	// GIVEN a third algorithm that is never best
	records := testutil.ScenarioA()
	a3 := testutil.Algo("algo3", 1)
	for _, n := range []string{"g1", "g2", "g3", "g4"} {
		records = append(records, testutil.Run(a3, testutil.Inst(n), 100))
	}
	algorithms := portfolio.DistinctAlgorithms(records)

	// WHEN counting
	counts := portfolio.BestPerInstanceCount(records, algorithms)

	// THEN the output has one entry per algorithm including the zero
	require.Len(t, counts, len(algorithms))
	assert.Equal(t, []float64{2, 2, 0}, counts)
}

func TestBestPerInstanceCount_Tie_FirstInInputOrderWins(t *testing.T) {
	a1, a2 := testutil.Algo("a", 1), testutil.Algo("b", 1)
	inst := testutil.Inst("g")
	records := []portfolio.RunRecord{
		testutil.Run(a2, inst, 5),
		testutil.Run(a1, inst, 5),
	}
	counts := portfolio.BestPerInstanceCount(records, []portfolio.Algorithm{a1, a2})
	assert.Equal(t, []float64{0, 1}, counts)
}

func TestBestPerInstanceTime_TimeOfBestQualityRun(t *testing.T) {
	a1, a2 := testutil.Algo("a", 1), testutil.Algo("b", 1)
	inst := testutil.Inst("g")
	records := []portfolio.RunRecord{
		portfolio.NewRunRecord(a1, inst, 10, 3.5, true),
		portfolio.NewRunRecord(a2, inst, 4, 8.0, true),
		portfolio.NewRunRecord(a1, inst, 6, 0.5, true),
	}
	got := portfolio.BestPerInstanceTime(records)
	require.Len(t, got, 1)
	assert.Equal(t, 8.0, got[0].Value)
}

func TestNewRunRecord_ZeroQuality_RemappedToOne(t *testing.T) {
	r := portfolio.NewRunRecord(testutil.Algo("a", 1), testutil.Inst("g"), 0, 1, true)
	assert.Equal(t, 1.0, r.Quality)
	r = portfolio.NewRunRecord(testutil.Algo("a", 1), testutil.Inst("g"), 1e-20, 1, true)
	assert.Equal(t, 1.0, r.Quality)
	r = portfolio.NewRunRecord(testutil.Algo("a", 1), testutil.Inst("g"), 3, 1, true)
	assert.Equal(t, 3.0, r.Quality)
}

func TestGroupStatistics_MeanAndSampleStdDev(t *testing.T) {
	// GIVEN eight runs of one group and a single run of another
	a, b := testutil.Algo("a", 1), testutil.Algo("b", 1)
	inst := testutil.Inst("g")
	var records []portfolio.RunRecord
	for _, q := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		records = append(records, testutil.Run(a, inst, q))
	}
	records = append(records, testutil.Run(b, inst, 11))

	// WHEN grouped
	groups := portfolio.GroupStatistics(records)

	// THEN mean and Bessel-corrected std are reported; a single run has NaN std
	require.Len(t, groups, 2)
	assert.Equal(t, a, groups[0].Algorithm)
	assert.Equal(t, 8, groups[0].Count)
	testutil.AssertFloat64Equal(t, "mean", 5, groups[0].Mean, 1e-12)
	testutil.AssertFloat64Equal(t, "std", math.Sqrt(32.0/7.0), groups[0].StdDev, 1e-12)
	assert.Equal(t, 11.0, groups[1].Mean)
	assert.True(t, math.IsNaN(groups[1].StdDev))
}

func TestDistinct_SortedAndDeduplicated(t *testing.T) {
	records := []portfolio.RunRecord{
		testutil.Run(testutil.Algo("z", 2), testutil.Inst("b"), 1),
		testutil.Run(testutil.Algo("z", 1), testutil.Inst("a"), 1),
		testutil.Run(testutil.Algo("a", 4), testutil.Inst("b"), 1),
	}
	assert.Equal(t,
		[]portfolio.Algorithm{testutil.Algo("a", 4), testutil.Algo("z", 1), testutil.Algo("z", 2)},
		portfolio.DistinctAlgorithms(records))
	assert.Equal(t, []portfolio.Instance{testutil.Inst("a"), testutil.Inst("b")}, portfolio.DistinctInstances(records))
}
