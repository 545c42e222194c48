package portfolio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inference-sim/portfolio-solver/internal/testutil"
	"github.com/inference-sim/portfolio-solver/portfolio"
)

func TestRoundToSum_ScenarioC(t *testing.T) {
	// GIVEN fractional shares with mixed step sizes and budget 20
	values := []float64{2.4, 1.6, 0.8, 1.9, 1.6}
	steps := []uint32{1, 2, 4, 8, 1}

	// WHEN rounding
	got := portfolio.RoundToSum(values, steps, 20)

	// THEN the remainder goes to the largest losses whose step still fits
	assert.Equal(t, []float64{2, 2, 1, 1, 2}, got)
}

func TestRoundToSum_UnitStep_UsesWholeBudget(t *testing.T) {
	got := portfolio.RoundToSum([]float64{0.3, 0.3, 0.3}, []uint32{1, 1, 1}, 3)
	assert.Equal(t, []float64{1, 1, 1}, got)
}

func TestRoundToSum_NothingFits_StopsShort(t *testing.T) {
	// GIVEN the only step is larger than the remainder
	got := portfolio.RoundToSum([]float64{0.5}, []uint32{4}, 2)
	assert.Equal(t, []float64{0}, got)
}

func TestRoundToSum_NeverExceedsBudget(t *testing.T) {
	tests := []struct {
		values []float64
		steps  []uint32
		sum    uint32
	}{
		{[]float64{1.5, 2.5}, []uint32{2, 3}, 12},
		{[]float64{0.1, 0.9, 3.3}, []uint32{1, 4, 2}, 16},
		{[]float64{4, 0}, []uint32{4, 1}, 16},
	}
	for _, tt := range tests {
		got := portfolio.RoundToSum(tt.values, tt.steps, tt.sum)
		used := 0.0
		for i, v := range got {
			used += v * float64(tt.steps[i])
		}
		assert.LessOrEqual(t, used, float64(tt.sum))
		// a unit step is present in the last two cases: equality holds
		if tt.steps[0] == 1 || tt.steps[1] == 1 {
			assert.Equal(t, float64(tt.sum), used)
		}
	}
}

func TestInitialAssignment_ScenarioA(t *testing.T) {
	records := testutil.ScenarioA()
	algorithms := portfolio.DistinctAlgorithms(records)
	counts := portfolio.BestPerInstanceCount(records, algorithms)

	got := portfolio.InitialAssignment(counts, algorithms, 4, 4)

	assert.Equal(t, []float64{2, 2}, got)
}

func TestInitialAssignment_MixedThreads(t *testing.T) {
	// GIVEN counts [1,1,0] over 2 instances, threads [1,2,1] and 8 cores
	algorithms := []portfolio.Algorithm{testutil.Algo("a", 1), testutil.Algo("b", 2), testutil.Algo("c", 1)}

	got := portfolio.InitialAssignment([]float64{1, 1, 0}, algorithms, 2, 8)

	// THEN shares are 4 and 2 replicas, using all 8 cores
	assert.Equal(t, []float64{4, 2, 0}, got)
}

func TestInitialPortfolio_NameAndCores(t *testing.T) {
	algorithms := []portfolio.Algorithm{testutil.Algo("a", 1), testutil.Algo("b", 2)}
	p := portfolio.InitialPortfolio([]float64{3, 1}, algorithms, 4, 8)
	assert.Equal(t, portfolio.InitialPortfolioName, p.Name)
	assert.Len(t, p.ResourceAssignments, 2)
	assert.Equal(t, 8.0, p.Cores())
	assert.NoError(t, p.Validate(8))
}
