// Package ingest reads and writes the CSV tables around the portfolio
// pipeline: run records in normalized or hypergraph-partitioner layout,
// instance filters, quality lower bounds.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// table is a CSV file read into memory with a column index.
type table struct {
	path   string
	header map[string]int
	rows   [][]string
}

// readTable reads a headered CSV file. Lines starting with '#' are skipped.
func readTable(path string) (*table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: empty file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header of %s: %w", path, err)
	}
	t := &table{path: path, header: make(map[string]int, len(header))}
	for i, name := range header {
		t.header[strings.TrimSpace(name)] = i
	}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row of %s: %w", path, err)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func (t *table) has(column string) bool {
	_, ok := t.header[column]
	return ok
}

// require returns an error naming the first missing column.
func (t *table) require(columns ...string) error {
	for _, c := range columns {
		if !t.has(c) {
			return fmt.Errorf("%s: missing column %q", t.path, c)
		}
	}
	return nil
}

func (t *table) str(row []string, column string) string {
	return strings.TrimSpace(row[t.header[column]])
}

func (t *table) floatCol(row []string, line int, column string) (float64, error) {
	v, err := strconv.ParseFloat(t.str(row, column), 64)
	if err != nil {
		return 0, fmt.Errorf("%s row %d: column %q: %w", t.path, line, column, err)
	}
	return v, nil
}

// uintCol returns the column value, or def when the column is absent.
func (t *table) uintCol(row []string, line int, column string, def uint32) (uint32, error) {
	if !t.has(column) {
		return def, nil
	}
	v, err := strconv.ParseUint(t.str(row, column), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s row %d: column %q: %w", t.path, line, column, err)
	}
	return uint32(v), nil
}

// optFloatCol returns the column value, or def when the column is absent.
func (t *table) optFloatCol(row []string, line int, column string, def float64) (float64, error) {
	if !t.has(column) {
		return def, nil
	}
	return t.floatCol(row, line, column)
}

func (t *table) boolCol(row []string, line int, column string) (bool, error) {
	v, err := strconv.ParseBool(t.str(row, column))
	if err != nil {
		return false, fmt.Errorf("%s row %d: column %q: %w", t.path, line, column, err)
	}
	return v, nil
}

// writeTable writes header and rows to path.
func writeTable(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("writing CSV rows to %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
