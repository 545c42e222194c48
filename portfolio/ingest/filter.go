package ingest

import (
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/portfolio-solver/portfolio"
)

// InstanceFilter restricts records to the instances graphs x ks x thresholds.
// The graph list is a CSV file with a "graph" column.
type InstanceFilter struct {
	GraphsPath string
	Ks         []uint32
	Thresholds []float64
}

// Instances returns the desired instance set. An unreadable graph list
// yields an error; Apply turns it into a warning.
func (f *InstanceFilter) Instances() (map[portfolio.Instance]bool, error) {
	t, err := readTable(f.GraphsPath)
	if err != nil {
		return nil, err
	}
	if err := t.require(colGraph); err != nil {
		return nil, err
	}
	desired := make(map[portfolio.Instance]bool, len(t.rows)*len(f.Ks)*len(f.Thresholds))
	for _, row := range t.rows {
		graph := t.str(row, colGraph)
		for _, k := range f.Ks {
			for _, eps := range f.Thresholds {
				desired[portfolio.Instance{Name: graph, K: k, FeasibilityThreshold: eps}] = true
			}
		}
	}
	return desired, nil
}

// Apply keeps records whose instance is desired, in input order. Without a
// graph list, or when it cannot be read, every record is kept.
func (f *InstanceFilter) Apply(records []portfolio.RunRecord) []portfolio.RunRecord {
	if f.GraphsPath == "" {
		return records
	}
	desired, err := f.Instances()
	if err != nil {
		logrus.Warnf("graph list %s not usable, using all graphs: %v", f.GraphsPath, err)
		return records
	}
	kept := make([]portfolio.RunRecord, 0, len(records))
	for _, r := range records {
		if desired[r.Instance] {
			kept = append(kept, r)
		}
	}
	logrus.Infof("instance filter kept %d of %d records", len(kept), len(records))
	return kept
}
