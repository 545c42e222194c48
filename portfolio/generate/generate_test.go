package generate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/portfolio-solver/internal/testutil"
	"github.com/inference-sim/portfolio-solver/portfolio"
	"github.com/inference-sim/portfolio-solver/portfolio/generate"
)

func twoAlgorithmConfig() *generate.Config {
	return &generate.Config{
		Algorithms: []generate.AlgorithmSpec{
			{Name: "fast", Ranges: []generate.InstanceRange{{Mean: 100, Std: 0.1, Start: 0, End: 3}}},
			{Ranges: []generate.InstanceRange{
				{Mean: 50, Std: 0.2, Start: 0, End: 2},
				{Mean: 80, Std: 0, Start: 2, End: 3},
			}},
		},
		RunsPerInstance: 4,
		Seed:            7,
	}
}

func TestGenerate_CountsAndNames(t *testing.T) {
	records, err := generate.Generate(twoAlgorithmConfig())

	require.NoError(t, err)
	require.Len(t, records, 2*3*4)
	assert.Equal(t, "fast", records[0].Algorithm.Name)
	assert.Equal(t, "algo1", records[12].Algorithm.Name)
	assert.Equal(t, portfolio.Instance{Name: "graph0", K: 2}, records[0].Instance)
	assert.Equal(t, "graph2", records[11].Instance.Name)
	for _, r := range records {
		assert.True(t, r.Valid)
		assert.GreaterOrEqual(t, r.Quality, 0.0)
	}
	// zero std: every draw equals the mean
	for _, r := range records[20:] {
		assert.Equal(t, 80.0, r.Quality)
	}
}

func TestGenerate_SameSeed_SameRecords(t *testing.T) {
	a, err := generate.Generate(twoAlgorithmConfig())
	require.NoError(t, err)
	b, err := generate.Generate(twoAlgorithmConfig())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	cfg := twoAlgorithmConfig()
	cfg.Seed = 8
	c, err := generate.Generate(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestConfig_Validate(t *testing.T) {
	cfg := twoAlgorithmConfig()
	cfg.RunsPerInstance = 0
	assert.True(t, errors.Is(cfg.Validate(), portfolio.ErrConfig))

	cfg = twoAlgorithmConfig()
	cfg.Algorithms[0].Ranges[0].End = -1
	assert.True(t, errors.Is(cfg.Validate(), portfolio.ErrConfig))

	assert.True(t, errors.Is((&generate.Config{RunsPerInstance: 1}).Validate(), portfolio.ErrConfig))
}

func TestLoadConfig_UnknownField_Rejected(t *testing.T) {
	path := testutil.WriteFile(t, "gen.yaml", "algorithms: []\nruns_per_instance: 1\nsede: 3\n")
	_, err := generate.LoadConfig(path)
	assert.True(t, errors.Is(err, portfolio.ErrConfig))
}

func TestLoadConfig_Parses(t *testing.T) {
	path := testutil.WriteFile(t, "gen.yaml", `algorithms:
  - name: a
    instance_ranges:
      - {mean: 10, std: 0.5, start: 0, end: 4}
runs_per_instance: 2
seed: 3
`)
	cfg, err := generate.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Algorithms[0].Ranges[0].End)
	assert.Equal(t, int64(3), cfg.Seed)
}
