package ingest

import (
	"strings"

	"github.com/inference-sim/portfolio-solver/portfolio"
)

// Column names of hypergraph-partitioner result files.
const (
	colGraph     = "graph"
	colEpsilon   = "epsilon"
	colImbalance = "imbalance"
	colKm1       = "km1"
	colPartTime  = "totalPartitionTime"
	colFailed    = "failed"
	colTimeout   = "timeout"
)

// ReadHypergraph reads partitioner results. The instance is (graph, k,
// epsilon); quality is km1, time is totalPartitionTime. A run is valid when
// imbalance <= epsilon and it neither failed nor timed out. A missing
// num_threads column means single-threaded runs.
func ReadHypergraph(path string) ([]portfolio.RunRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require(colAlgorithm, colGraph, colK, colEpsilon, colImbalance, colKm1, colPartTime, colFailed, colTimeout); err != nil {
		return nil, err
	}

	records := make([]portfolio.RunRecord, 0, len(t.rows))
	for idx, row := range t.rows {
		line := idx + 1
		threads, err := t.uintCol(row, line, colNumThreads, 1)
		if err != nil {
			return nil, err
		}
		k, err := t.uintCol(row, line, colK, 0)
		if err != nil {
			return nil, err
		}
		epsilon, err := t.floatCol(row, line, colEpsilon)
		if err != nil {
			return nil, err
		}
		imbalance, err := t.floatCol(row, line, colImbalance)
		if err != nil {
			return nil, err
		}
		km1, err := t.floatCol(row, line, colKm1)
		if err != nil {
			return nil, err
		}
		time, err := t.floatCol(row, line, colPartTime)
		if err != nil {
			return nil, err
		}
		valid := imbalance <= epsilon && t.str(row, colFailed) == "no" && t.str(row, colTimeout) == "no"
		records = append(records, portfolio.NewRunRecord(
			portfolio.Algorithm{Name: t.str(row, colAlgorithm), NumThreads: threads},
			portfolio.Instance{Name: GraphName(t.str(row, colGraph)), K: k, FeasibilityThreshold: epsilon},
			km1, time, valid,
		))
	}
	return records, nil
}

// GraphName unifies graph file names across partitioners: a name ending in
// "scotch" has that suffix replaced by "graph".
func GraphName(name string) string {
	if strings.HasSuffix(name, "scotch") {
		return strings.TrimSuffix(name, "scotch") + "graph"
	}
	return name
}
