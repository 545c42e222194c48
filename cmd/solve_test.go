package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/portfolio-solver/internal/testutil"
	"github.com/inference-sim/portfolio-solver/portfolio/ingest"
)

func TestSolveThenSimulate_EndToEnd(t *testing.T) {
	// GIVEN scenario A as a run table
	dir := t.TempDir()
	runs := filepath.Join(dir, "runs.csv")
	require.NoError(t, ingest.WriteRecords(runs, testutil.ScenarioA()))
	out := filepath.Join(dir, "out")

	// WHEN solve runs with 2 cores and 2 seeds
	rootCmd.SetArgs([]string{"solve", "--log", "error", "-f", runs, "-k", "2", "-n", "2", "-o", out, "-r"})
	require.NoError(t, rootCmd.Execute())

	// THEN the final portfolio, the simulation table and a replayable executor config exist
	for _, name := range []string{"final_portfolio.json", "random_portfolio.json", "simulation.csv", "executor.yaml"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}

	// AND the executor config replays through simulate
	rootCmd.SetArgs([]string{"simulate", "--log", "error", "-c", filepath.Join(out, "executor.yaml")})
	require.NoError(t, rootCmd.Execute())
	simulated, err := ingest.ReadNormalized(filepath.Join(out, "execution.csv"))
	require.NoError(t, err)
	// final and random portfolios plus two algorithms, four instances, two seeds
	assert.Len(t, simulated, 4*4*2)
}
