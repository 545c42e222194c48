package portfolio

import (
	"fmt"
	"math"
	"slices"

	"github.com/sirupsen/logrus"
)

// Data is the assembled estimation pipeline output. It is immutable after
// NewData returns and safe to share between goroutines.
type Data struct {
	Records              []RunRecord // preprocessed input, all rows
	Valid                []RunRecord // valid rows within the core budget that survived the slowdown filter
	Instances            []Instance
	Algorithms           []Algorithm
	BestPerInstance      []float64 // aligned with Instances
	BestPerInstanceTime  []float64 // aligned with Instances
	BestPerInstanceCount []float64 // aligned with Algorithms
	EMin                 *Tensor
	NumCores             uint32
}

// NewData runs the estimation pipeline over raw records:
// quality remap, validity and thread filter, slowdown filter, aggregation,
// lower-bound join and tensor build. lowerBounds may be nil; instances
// without an entry fall back to their best observed quality.
func NewData(records []RunRecord, cfg Config, lowerBounds map[Instance]float64) (*Data, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	all := make([]RunRecord, len(records))
	for i, r := range records {
		all[i] = r
		all[i].Quality = NormalizeQuality(r.Quality)
	}

	valid := make([]RunRecord, 0, len(all))
	for _, r := range all {
		if r.Valid && r.Algorithm.NumThreads <= cfg.NumCores {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: %d records, none valid with at most %d threads", ErrNoValidRuns, len(all), cfg.NumCores)
	}
	logrus.Infof("%d of %d runs are valid within %d cores", len(valid), len(all), cfg.NumCores)

	// ties in the best-per-instance aggregates go to the first algorithm in this order
	slices.SortStableFunc(valid, compareRecords)

	valid, err := FilterBySlowdown(valid, cfg.SlowdownRatio)
	if err != nil {
		return nil, err
	}

	instances := DistinctInstances(valid)
	algorithms := DistinctAlgorithms(valid)
	best := BestPerInstance(valid)
	for _, b := range best {
		invariant(math.Abs(b.Value) >= machineEpsilon, "best quality %g for %s is not positive", b.Value, b.Instance)
	}

	bounds := make(map[Instance]float64, len(best))
	missing := 0
	for _, b := range best {
		lb, ok := lowerBounds[b.Instance]
		if !ok {
			lb = b.Value
			missing++
		}
		bounds[b.Instance] = lb
	}
	if lowerBounds != nil && missing > 0 {
		logrus.Warnf("no quality lower bound for %d of %d instances; using best observed quality", missing, len(best))
	}

	d := &Data{
		Records:              all,
		Valid:                valid,
		Instances:            instances,
		Algorithms:           algorithms,
		BestPerInstance:      instanceValues(best),
		BestPerInstanceTime:  instanceValues(BestPerInstanceTime(valid)),
		BestPerInstanceCount: BestPerInstanceCount(valid, algorithms),
		NumCores:             cfg.NumCores,
	}
	d.EMin = BuildTensor(GroupStatistics(valid), instances, algorithms, int(cfg.NumCores), bounds, cfg.NewEstimator())
	logrus.Infof("e_min tensor: %d instances x %d algorithms x %d cores", len(instances), len(algorithms), cfg.NumCores)
	return d, nil
}

// InitialPortfolio returns the warm-start portfolio for this data.
func (d *Data) InitialPortfolio() Portfolio {
	return InitialPortfolio(d.BestPerInstanceCount, d.Algorithms, len(d.Instances), d.NumCores)
}

// AlgorithmIndex returns the position of algo in d.Algorithms, or -1.
func (d *Data) AlgorithmIndex(algo Algorithm) int {
	for j, a := range d.Algorithms {
		if a == algo {
			return j
		}
	}
	return -1
}
