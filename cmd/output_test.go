package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/portfolio-solver/internal/testutil"
	"github.com/inference-sim/portfolio-solver/portfolio"
)

func TestWritePortfolio_DropsOptSuffix(t *testing.T) {
	dir := t.TempDir()
	p := portfolio.Portfolio{Name: portfolio.FinalPortfolioName, ResourceAssignments: []portfolio.Assignment{
		{Algorithm: testutil.Algo("a", 2), Replicas: 3},
	}}

	require.NoError(t, writePortfolio(dir, p))

	data, err := os.ReadFile(filepath.Join(dir, "final_portfolio.json"))
	require.NoError(t, err)
	var got portfolio.Portfolio
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, p, got)
	assert.Contains(t, string(data), `"resource_assignments"`)
}

func TestExecutorConfig_RoundTrip(t *testing.T) {
	// GIVEN an executor config written by solve
	path := filepath.Join(t.TempDir(), "executor.yaml")
	want := &ExecutorConfig{
		Files:  []string{"runs.csv"},
		Format: "normalized",
		Portfolios: []portfolio.Portfolio{{Name: "p", ResourceAssignments: []portfolio.Assignment{
			{Algorithm: testutil.Algo("a", 1), Replicas: 2},
		}}},
		NumSeeds: 3,
		NumCores: 2,
		Seed:     7,
		Out:      "execution.csv",
	}
	require.NoError(t, writeExecutorConfig(path, want))

	// WHEN read back with strict decoding
	var got ExecutorConfig
	require.NoError(t, decodeStrict(path, &got))

	// THEN it is unchanged and valid
	assert.Equal(t, *want, got)
	assert.NoError(t, got.Validate())
}

func TestExecutorConfig_OverBudgetPortfolio_Rejected(t *testing.T) {
	cfg := ExecutorConfig{
		Files: []string{"runs.csv"}, Format: "normalized", NumSeeds: 1, NumCores: 2, Out: "x.csv",
		Portfolios: []portfolio.Portfolio{{Name: "p", ResourceAssignments: []portfolio.Assignment{
			{Algorithm: testutil.Algo("a", 2), Replicas: 2},
		}}},
	}
	assert.ErrorIs(t, cfg.Validate(), portfolio.ErrConfig)
}

func TestQualityLowerBounds_ValidRunsOnly(t *testing.T) {
	a := testutil.Algo("a", 1)
	g := testutil.Inst("g")
	records := []portfolio.RunRecord{
		portfolio.NewRunRecord(a, g, 3, 1, false),
		portfolio.NewRunRecord(a, g, 5, 1, true),
	}

	bounds, err := QualityLowerBounds(records)

	require.NoError(t, err)
	assert.Equal(t, []portfolio.InstanceValue{{Instance: g, Value: 5}}, bounds)

	_, err = QualityLowerBounds(records[:1])
	assert.ErrorIs(t, err, portfolio.ErrNoValidRuns)
}

func TestSameReplicas(t *testing.T) {
	a := portfolio.Portfolio{Name: "x", ResourceAssignments: []portfolio.Assignment{{Algorithm: testutil.Algo("a", 1), Replicas: 2}}}
	b := portfolio.Portfolio{Name: "y", ResourceAssignments: []portfolio.Assignment{{Algorithm: testutil.Algo("a", 1), Replicas: 2}}}
	assert.True(t, sameReplicas(a, b))
	b.ResourceAssignments[0].Replicas = 1
	assert.False(t, sameReplicas(a, b))
}
