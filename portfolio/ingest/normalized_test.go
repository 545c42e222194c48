package ingest_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/portfolio-solver/internal/testutil"
	"github.com/inference-sim/portfolio-solver/portfolio"
	"github.com/inference-sim/portfolio-solver/portfolio/ingest"
)

func TestReadNormalized_OptionalColumnsDefault(t *testing.T) {
	// GIVEN a table without num_threads, k and feasibility_threshold
	path := testutil.WriteFile(t, "runs.csv", `# produced by hand
algorithm,instance,quality,time,valid
km1, g1, 12, 0.5, true
km1, g2, 0, 1.5, false
`)

	// WHEN read
	records, err := ingest.ReadNormalized(path)

	// THEN defaults are single-threaded, k = 0, threshold = 0 and zero quality becomes 1
	require.NoError(t, err)
	want := []portfolio.RunRecord{
		{Algorithm: portfolio.Algorithm{Name: "km1", NumThreads: 1}, Instance: portfolio.Instance{Name: "g1"}, Quality: 12, Time: 0.5, Valid: true},
		{Algorithm: portfolio.Algorithm{Name: "km1", NumThreads: 1}, Instance: portfolio.Instance{Name: "g2"}, Quality: 1, Time: 1.5, Valid: false},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestReadNormalized_MissingColumn_Error(t *testing.T) {
	path := testutil.WriteFile(t, "runs.csv", "algorithm,instance,quality,time\na,g,1,1\n")
	_, err := ingest.ReadNormalized(path)
	assert.ErrorContains(t, err, `missing column "valid"`)
}

func TestReadNormalized_BadNumber_ReportsRow(t *testing.T) {
	path := testutil.WriteFile(t, "runs.csv", "algorithm,instance,quality,time,valid\na,g,1,1,true\na,g,x,1,true\n")
	_, err := ingest.ReadNormalized(path)
	assert.ErrorContains(t, err, "row 2")
	assert.ErrorContains(t, err, `"quality"`)
}

func TestReadNormalized_ZeroThreads_Error(t *testing.T) {
	path := testutil.WriteFile(t, "runs.csv", "algorithm,num_threads,instance,quality,time,valid\na,0,g,1,1,true\n")
	_, err := ingest.ReadNormalized(path)
	assert.ErrorContains(t, err, "num_threads must be positive")
}

func TestWriteRecords_ReadBack(t *testing.T) {
	records := testutil.ScenarioA()
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, ingest.WriteRecords(path, records))
	got, err := ingest.ReadNormalized(path)

	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestRead_UnknownFormat_ConfigError(t *testing.T) {
	_, err := ingest.Read("parquet", []string{"x.csv"}, nil)
	assert.True(t, errors.Is(err, portfolio.ErrConfig))
}

func TestRead_NoFiles_ConfigError(t *testing.T) {
	_, err := ingest.Read(ingest.FormatNormalized, nil, nil)
	assert.True(t, errors.Is(err, portfolio.ErrConfig))
}

func TestRead_ConcatenatesFilesInOrder(t *testing.T) {
	a := testutil.WriteFile(t, "a.csv", "algorithm,instance,quality,time,valid\nx,g1,1,1,true\n")
	b := testutil.WriteFile(t, "b.csv", "algorithm,instance,quality,time,valid\ny,g2,2,1,true\n")

	records, err := ingest.Read("", []string{a, b}, nil)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "x", records[0].Algorithm.Name)
	assert.Equal(t, "y", records[1].Algorithm.Name)
}
