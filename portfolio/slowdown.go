package portfolio

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// GeometricMean returns exp(mean(ln v)).
func GeometricMean(values []float64) float64 {
	return stat.GeometricMean(values, nil)
}

// FilterBySlowdown drops every algorithm whose geometric-mean running time is
// not below ratio times the geometric mean of the best-per-instance times.
// All rows of surviving algorithms are kept in input order.
// Returns ErrSlowdownRatio if no algorithm survives.
func FilterBySlowdown(records []RunRecord, ratio float64) ([]RunRecord, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: slowdown ratio %g applied to empty input", ErrSlowdownRatio, ratio)
	}

	reference := GeometricMean(instanceValues(BestPerInstanceTime(records)))
	if math.Abs(reference) <= machineEpsilon {
		logrus.Warnf("geometric mean of best-per-instance times is %g; using 1.0 as slowdown reference", reference)
		reference = 1.0
	}
	limit := ratio * reference

	times := make(map[Algorithm][]float64)
	for _, r := range records {
		times[r.Algorithm] = append(times[r.Algorithm], r.Time)
	}
	keep := make(map[Algorithm]bool, len(times))
	for algo, ts := range times {
		gmean := GeometricMean(ts)
		if gmean < limit {
			keep[algo] = true
		} else {
			logrus.Debugf("dropping %s: gmean time %g exceeds %g x %g", algo, gmean, ratio, reference)
		}
	}

	filtered := make([]RunRecord, 0, len(records))
	for _, r := range records {
		if keep[r.Algorithm] {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: no algorithm has gmean time below %g x gmean(best) = %g; try a larger slowdown ratio",
			ErrSlowdownRatio, ratio, limit)
	}
	return filtered, nil
}
