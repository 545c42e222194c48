package portfolio

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// InstanceValue pairs an instance with one aggregated value.
type InstanceValue struct {
	Instance Instance
	Value    float64
}

// GroupStats summarizes the qualities of one (instance, algorithm) group.
// StdDev uses Bessel's correction and is NaN for groups with a single run.
type GroupStats struct {
	Instance  Instance
	Algorithm Algorithm
	Mean      float64
	StdDev    float64
	Count     int
	Qualities []float64 // observed qualities in input order
}

// DistinctInstances returns the sorted, deduplicated instances of records.
func DistinctInstances(records []RunRecord) []Instance {
	instances := make([]Instance, 0)
	seen := make(map[Instance]bool)
	for _, r := range records {
		if !seen[r.Instance] {
			seen[r.Instance] = true
			instances = append(instances, r.Instance)
		}
	}
	slices.SortFunc(instances, Instance.Compare)
	return instances
}

// DistinctAlgorithms returns the sorted, deduplicated algorithms of records.
func DistinctAlgorithms(records []RunRecord) []Algorithm {
	algorithms := make([]Algorithm, 0)
	seen := make(map[Algorithm]bool)
	for _, r := range records {
		if !seen[r.Algorithm] {
			seen[r.Algorithm] = true
			algorithms = append(algorithms, r.Algorithm)
		}
	}
	slices.SortFunc(algorithms, Algorithm.Compare)
	return algorithms
}

// bestRowPerInstance returns, per instance in ascending order, the first
// record in input order with the minimum quality.
func bestRowPerInstance(records []RunRecord) []RunRecord {
	best := make(map[Instance]int)
	for idx, r := range records {
		cur, ok := best[r.Instance]
		if !ok || NormalizeQuality(r.Quality) < NormalizeQuality(records[cur].Quality) {
			best[r.Instance] = idx
		}
	}
	rows := make([]RunRecord, 0, len(best))
	for _, idx := range best {
		rows = append(rows, records[idx])
	}
	slices.SortFunc(rows, func(a, b RunRecord) int { return a.Instance.Compare(b.Instance) })
	return rows
}

// BestPerInstance returns the minimum quality per instance, sorted by instance.
func BestPerInstance(records []RunRecord) []InstanceValue {
	rows := bestRowPerInstance(records)
	out := make([]InstanceValue, len(rows))
	for i, r := range rows {
		out[i] = InstanceValue{Instance: r.Instance, Value: NormalizeQuality(r.Quality)}
	}
	return out
}

// BestPerInstanceTime returns, per instance, the time of the run with the
// minimum quality. Ties go to the first run in input order.
func BestPerInstanceTime(records []RunRecord) []InstanceValue {
	rows := bestRowPerInstance(records)
	out := make([]InstanceValue, len(rows))
	for i, r := range rows {
		out[i] = InstanceValue{Instance: r.Instance, Value: r.Time}
	}
	return out
}

// BestPerInstanceCount counts, for every algorithm, the instances on which it
// achieves the minimum quality (first run in input order wins ties).
// The result is aligned with algorithms; algorithms that never win get 0.
func BestPerInstanceCount(records []RunRecord, algorithms []Algorithm) []float64 {
	index := make(map[Algorithm]int, len(algorithms))
	for i, a := range algorithms {
		index[a] = i
	}
	counts := make([]float64, len(algorithms))
	for _, r := range bestRowPerInstance(records) {
		if i, ok := index[r.Algorithm]; ok {
			counts[i]++
		}
	}
	return counts
}

// GroupStatistics groups records by (instance, algorithm) and computes mean
// and sample standard deviation of the quality. Groups are sorted by
// (instance, algorithm).
func GroupStatistics(records []RunRecord) []GroupStats {
	type key struct {
		instance  Instance
		algorithm Algorithm
	}
	order := make([]key, 0)
	values := make(map[key][]float64)
	for _, r := range records {
		k := key{r.Instance, r.Algorithm}
		if _, ok := values[k]; !ok {
			order = append(order, k)
		}
		values[k] = append(values[k], NormalizeQuality(r.Quality))
	}

	groups := make([]GroupStats, 0, len(order))
	for _, k := range order {
		qs := values[k]
		g := GroupStats{
			Instance:  k.instance,
			Algorithm: k.algorithm,
			Count:     len(qs),
			Qualities: qs,
			StdDev:    math.NaN(),
		}
		if len(qs) > 1 {
			g.Mean, g.StdDev = stat.MeanStdDev(qs, nil)
		} else {
			g.Mean = qs[0]
		}
		groups = append(groups, g)
	}
	slices.SortFunc(groups, func(a, b GroupStats) int {
		if c := a.Instance.Compare(b.Instance); c != 0 {
			return c
		}
		return a.Algorithm.Compare(b.Algorithm)
	})
	return groups
}

// instanceValues extracts the value column of an InstanceValue table.
func instanceValues(table []InstanceValue) []float64 {
	out := make([]float64, len(table))
	for i, v := range table {
		out[i] = v.Value
	}
	return out
}
