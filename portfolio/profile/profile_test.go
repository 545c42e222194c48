package profile_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/portfolio-solver/internal/testutil"
	"github.com/inference-sim/portfolio-solver/portfolio"
	"github.com/inference-sim/portfolio-solver/portfolio/profile"
)

func TestRatio_ZeroBest(t *testing.T) {
	assert.Equal(t, 2.0, profile.Ratio(8, 4))
	assert.Equal(t, 1.0, profile.Ratio(0, 0))
	assert.Equal(t, 4.0, profile.Ratio(3, 0))
}

func TestParseObjective(t *testing.T) {
	r := portfolio.NewRunRecord(testutil.Algo("a", 1), testutil.Inst("g"), 5, 2, true)
	q, err := profile.ParseObjective("")
	require.NoError(t, err)
	assert.Equal(t, 5.0, q(r))
	tm, err := profile.ParseObjective(profile.ObjectiveTime)
	require.NoError(t, err)
	assert.Equal(t, 2.0, tm(r))
	_, err = profile.ParseObjective("memory")
	assert.True(t, errors.Is(err, portfolio.ErrConfig))
}

func TestCompute_ScenarioA(t *testing.T) {
	// GIVEN scenario A where each algorithm is best on two instances
	objective, err := profile.ParseObjective(profile.ObjectiveQuality)
	require.NoError(t, err)

	// WHEN the profile is computed
	prof := profile.Compute(testutil.ScenarioA(), objective)

	// THEN algo1 reaches fraction 1/2 at ratio 1 and 1 at ratio 18/7
	require.Equal(t, 4, prof.NumInstances)
	require.Len(t, prof.Series, 2)
	s := prof.Series[0]
	assert.Equal(t, "algo1", s.Algorithm)
	assert.Equal(t, 2, s.NumBest)
	require.Len(t, s.Points, 3)
	assert.Equal(t, profile.Point{Fraction: 0.5, Ratio: 1}, s.Points[0])
	testutil.AssertFloat64Equal(t, "ratio", 20.0/9, s.Points[1].Ratio, 1e-12)
	assert.Equal(t, 0.75, s.Points[1].Fraction)
	testutil.AssertFloat64Equal(t, "ratio", 18.0/7, s.Points[2].Ratio, 1e-12)
	assert.Equal(t, 1.0, s.Points[2].Fraction)
	testutil.AssertFloat64Equal(t, "gmean", math.Pow(20.0/9*18.0/7, 0.25), s.GMeanRatio, 1e-12)
}

func TestCompute_RepeatedRunsAveraged(t *testing.T) {
	a, b := testutil.Algo("a", 1), testutil.Algo("b", 1)
	g := testutil.Inst("g")
	records := []portfolio.RunRecord{
		testutil.Run(a, g, 2), testutil.Run(a, g, 6),
		testutil.Run(b, g, 8),
	}
	prof := profile.Compute(records, func(r portfolio.RunRecord) float64 { return r.Quality })
	assert.Equal(t, []float64{1}, prof.Series[0].Ratios)
	assert.Equal(t, []float64{2}, prof.Series[1].Ratios)
}

func TestCompute_MissingInstances_FractionBelowOne(t *testing.T) {
	a, b := testutil.Algo("a", 1), testutil.Algo("b", 1)
	records := []portfolio.RunRecord{
		testutil.Run(a, testutil.Inst("g1"), 1), testutil.Run(a, testutil.Inst("g2"), 1),
		testutil.Run(b, testutil.Inst("g1"), 1),
	}
	prof := profile.Compute(records, func(r portfolio.RunRecord) float64 { return r.Quality })
	assert.Equal(t, []profile.Point{{Fraction: 0.5, Ratio: 1}}, prof.Series[1].Points)
}

func TestPlot_WritesImage(t *testing.T) {
	prof := profile.Compute(testutil.ScenarioA(), func(r portfolio.RunRecord) float64 { return r.Quality })
	path := filepath.Join(t.TempDir(), "profile.png")

	require.NoError(t, profile.Plot(prof, "scenario A", path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
