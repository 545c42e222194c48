package ingest

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/portfolio-solver/portfolio"
)

// Input formats accepted by Read.
const (
	FormatNormalized = "normalized"
	FormatHypergraph = "hypergraph"
)

// ValidFormats is the set of recognized input formats. Empty selects normalized.
var ValidFormats = map[string]bool{"": true, FormatNormalized: true, FormatHypergraph: true}

// Column names of the normalized run table.
const (
	colAlgorithm  = "algorithm"
	colNumThreads = "num_threads"
	colInstance   = "instance"
	colK          = "k"
	colThreshold  = "feasibility_threshold"
	colQuality    = "quality"
	colTime       = "time"
	colValid      = "valid"
)

// NormalizedHeader is the column order written by WriteRecords.
var NormalizedHeader = []string{colAlgorithm, colNumThreads, colInstance, colK, colThreshold, colQuality, colTime, colValid}

// Read loads run records from every path in the given format and applies
// filter when it is non-nil.
func Read(format string, paths []string, filter *InstanceFilter) ([]portfolio.RunRecord, error) {
	var read func(string) ([]portfolio.RunRecord, error)
	switch format {
	case "", FormatNormalized:
		read = ReadNormalized
	case FormatHypergraph:
		read = ReadHypergraph
	default:
		return nil, fmt.Errorf("%w: unknown input format %q; valid: normalized, hypergraph", portfolio.ErrConfig, format)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no input files", portfolio.ErrConfig)
	}

	var records []portfolio.RunRecord
	for _, path := range paths {
		rs, err := read(path)
		if err != nil {
			return nil, err
		}
		logrus.Debugf("read %d records from %s", len(rs), path)
		records = append(records, rs...)
	}
	if filter != nil {
		records = filter.Apply(records)
	}
	logrus.Infof("read %d records from %d files", len(records), len(paths))
	return records, nil
}

// ReadNormalized reads a run table with columns algorithm, instance, quality,
// time, valid and optional num_threads (default 1), k and
// feasibility_threshold (default 0).
func ReadNormalized(path string) ([]portfolio.RunRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := t.require(colAlgorithm, colInstance, colQuality, colTime, colValid); err != nil {
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
		threshold, err := t.optFloatCol(row, line, colThreshold, 0)
		if err != nil {
			return nil, err
		}
		quality, err := t.floatCol(row, line, colQuality)
		if err != nil {
			return nil, err
		}
		time, err := t.floatCol(row, line, colTime)
		if err != nil {
			return nil, err
		}
		valid, err := t.boolCol(row, line, colValid)
		if err != nil {
			return nil, err
		}
		if threads == 0 {
			return nil, fmt.Errorf("%s row %d: num_threads must be positive", path, line)
		}
		records = append(records, portfolio.NewRunRecord(
			portfolio.Algorithm{Name: t.str(row, colAlgorithm), NumThreads: threads},
			portfolio.Instance{Name: t.str(row, colInstance), K: k, FeasibilityThreshold: threshold},
			quality, time, valid,
		))
	}
	return records, nil
}

// WriteRecords writes records as a normalized run table.
func WriteRecords(path string, records []portfolio.RunRecord) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.Algorithm.Name,
			strconv.FormatUint(uint64(r.Algorithm.NumThreads), 10),
			r.Instance.Name,
			strconv.FormatUint(uint64(r.Instance.K), 10),
			formatFloat(r.Instance.FeasibilityThreshold),
			formatFloat(r.Quality),
			formatFloat(r.Time),
			strconv.FormatBool(r.Valid),
		}
	}
	return writeTable(path, NormalizedHeader, rows)
}
