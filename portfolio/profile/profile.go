// Package profile computes performance profiles over run tables: for every
// algorithm, the fraction of instances it solves within a factor tau of the
// best algorithm on that instance.
package profile

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/portfolio-solver/portfolio"
)

// Objective extracts the compared value from a record.
type Objective func(portfolio.RunRecord) float64

// Objective names accepted by ParseObjective.
const (
	ObjectiveQuality = "quality"
	ObjectiveTime    = "time"
)

// ParseObjective returns the Objective for a name.
func ParseObjective(name string) (Objective, error) {
	switch name {
	case "", ObjectiveQuality:
		return func(r portfolio.RunRecord) float64 { return r.Quality }, nil
	case ObjectiveTime:
		return func(r portfolio.RunRecord) float64 { return r.Time }, nil
	default:
		return nil, fmt.Errorf("%w: unknown objective %q; valid: quality, time", portfolio.ErrConfig, name)
	}
}

// Point is one step of a profile: Fraction of all instances have a ratio <= Ratio.
type Point struct {
	Fraction float64
	Ratio    float64
}

// Series is the profile of one algorithm.
type Series struct {
	Algorithm  string
	Points     []Point // ascending in both coordinates
	Ratios     []float64
	GMeanRatio float64
	NumBest    int // instances with ratio exactly 1
}

// Profile holds one series per algorithm, sorted by algorithm name.
type Profile struct {
	NumInstances int
	Series       []Series
}

// Ratio compares obj against best. A zero best yields 1 for a zero obj and
// obj+1 otherwise.
func Ratio(obj, best float64) float64 {
	if best != 0 {
		return obj / best
	}
	if obj == 0 {
		return 1
	}
	return obj + 1
}

// Compute averages the objective per (instance, algorithm name), takes the
// minimum average per instance as best, and builds every algorithm's step
// function over its sorted ratios.
func Compute(records []portfolio.RunRecord, objective Objective) *Profile {
	type key struct {
		instance  portfolio.Instance
		algorithm string
	}
	values := make(map[key][]float64)
	instanceSet := make(map[portfolio.Instance]bool)
	algoSet := make(map[string]bool)
	for _, r := range records {
		k := key{r.Instance, r.Algorithm.Name}
		values[k] = append(values[k], objective(r))
		instanceSet[r.Instance] = true
		algoSet[r.Algorithm.Name] = true
	}

	instances := make([]portfolio.Instance, 0, len(instanceSet))
	for inst := range instanceSet {
		instances = append(instances, inst)
	}
	slices.SortFunc(instances, portfolio.Instance.Compare)
	algorithms := make([]string, 0, len(algoSet))
	for a := range algoSet {
		algorithms = append(algorithms, a)
	}
	slices.Sort(algorithms)

	means := make(map[key]float64, len(values))
	best := make(map[portfolio.Instance]float64, len(instances))
	for k, vs := range values {
		m := stat.Mean(vs, nil)
		means[k] = m
		if b, ok := best[k.instance]; !ok || m < b {
			best[k.instance] = m
		}
	}

	n := len(instances)
	prof := &Profile{NumInstances: n, Series: make([]Series, 0, len(algorithms))}
	for _, algo := range algorithms {
		s := Series{Algorithm: algo}
		for _, inst := range instances {
			m, ok := means[key{inst, algo}]
			if !ok {
				continue
			}
			s.Ratios = append(s.Ratios, Ratio(m, best[inst]))
		}
		if len(s.Ratios) < n {
			logrus.Warnf("%s has results on %d of %d instances", algo, len(s.Ratios), n)
		}
		slices.Sort(s.Ratios)
		for i, r := range s.Ratios {
			if r == 1 {
				s.NumBest++
			}
			if i == len(s.Ratios)-1 || s.Ratios[i+1] != r {
				s.Points = append(s.Points, Point{Fraction: float64(i+1) / float64(n), Ratio: r})
			}
		}
		if len(s.Ratios) > 0 {
			s.GMeanRatio = stat.GeometricMean(s.Ratios, nil)
		}
		logrus.Infof("%s: %d instances, %d best, gmean ratio %g", algo, len(s.Ratios), s.NumBest, s.GMeanRatio)
		prof.Series = append(prof.Series, s)
	}
	return prof
}
