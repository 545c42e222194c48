package ingest

import (
	"fmt"
	"strconv"

	"github.com/inference-sim/portfolio-solver/portfolio"
)

const colQualityLB = "quality_lb"

// LowerBoundHeader is the column order written by WriteLowerBounds.
var LowerBoundHeader = []string{colInstance, colK, colThreshold, colQualityLB}

// ReadLowerBounds reads a quality lower bound table keyed by instance,
// k and feasibility_threshold (the latter two optional).
func ReadLowerBounds(path string) (map[portfolio.Instance]float64, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require(colInstance, colQualityLB); err != nil {
		return nil, err
	}
	bounds := make(map[portfolio.Instance]float64, len(t.rows))
	for idx, row := range t.rows {
		line := idx + 1
		k, err := t.uintCol(row, line, colK, 0)
		if err != nil {
			return nil, err
		}
		threshold, err := t.optFloatCol(row, line, colThreshold, 0)
		if err != nil {
			return nil, err
		}
		lb, err := t.floatCol(row, line, colQualityLB)
		if err != nil {
			return nil, err
		}
		if lb < 0 {
			return nil, fmt.Errorf("%s row %d: negative quality lower bound %g", path, line, lb)
		}
		bounds[portfolio.Instance{Name: t.str(row, colInstance), K: k, FeasibilityThreshold: threshold}] = lb
	}
	return bounds, nil
}

// WriteLowerBounds writes one quality lower bound per instance.
func WriteLowerBounds(path string, bounds []portfolio.InstanceValue) error {
	rows := make([][]string, len(bounds))
	for i, b := range bounds {
		rows[i] = []string{
			b.Instance.Name,
			strconv.FormatUint(uint64(b.Instance.K), 10),
			formatFloat(b.Instance.FeasibilityThreshold),
			formatFloat(b.Value),
		}
	}
	return writeTable(path, LowerBoundHeader, rows)
}
