package simulate

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

var simulationHeader = []string{"algorithm", "num_threads", "instance", "k", "feasibility_threshold", "quality", "time", "valid", "seed"}

// WriteCSV writes simulated runs as a normalized run table with a seed column.
func WriteCSV(path string, runs []SimulatedRun) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating simulation output: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(simulationHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range runs {
		row := []string{
			r.Algorithm.Name,
			strconv.FormatUint(uint64(r.Algorithm.NumThreads), 10),
			r.Instance.Name,
			strconv.FormatUint(uint64(r.Instance.K), 10),
			strconv.FormatFloat(r.Instance.FeasibilityThreshold, 'g', -1, 64),
			strconv.FormatFloat(r.Quality, 'g', -1, 64),
			strconv.FormatFloat(r.Time, 'g', -1, 64),
			strconv.FormatBool(r.Valid),
			strconv.Itoa(r.Seed),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
