package portfolio

import (
	"cmp"
	"slices"

	"github.com/sirupsen/logrus"
)

// EMinRow is one (instance, algorithm, replica count) estimate.
type EMinRow struct {
	Instance  Instance
	Algorithm Algorithm
	Replicas  int // 1..NumCores
	EMin      float64
}

func compareEMinRows(a, b EMinRow) int {
	if c := a.Instance.Compare(b.Instance); c != 0 {
		return c
	}
	if c := a.Algorithm.Compare(b.Algorithm); c != 0 {
		return c
	}
	return cmp.Compare(a.Replicas, b.Replicas)
}

// Tensor is the dense e_min[instance][algorithm][replicas-1] array.
type Tensor struct {
	NumInstances  int
	NumAlgorithms int
	NumCores      int
	Values        []float64 // row-major
}

// NewTensor creates a tensor filled with SentinelWorst.
func NewTensor(numInstances, numAlgorithms, numCores int) *Tensor {
	values := make([]float64, numInstances*numAlgorithms*numCores)
	for i := range values {
		values[i] = SentinelWorst
	}
	return &Tensor{
		NumInstances:  numInstances,
		NumAlgorithms: numAlgorithms,
		NumCores:      numCores,
		Values:        values,
	}
}

func (t *Tensor) offset(i, j, r int) int {
	return (i*t.NumAlgorithms+j)*t.NumCores + r
}

// At returns e_min for instance i, algorithm j and replica index r (replicas-1).
func (t *Tensor) At(i, j, r int) float64 {
	return t.Values[t.offset(i, j, r)]
}

// Set stores e_min for instance i, algorithm j and replica index r.
func (t *Tensor) Set(i, j, r int, v float64) {
	t.Values[t.offset(i, j, r)] = v
}

// EstimateRows crosses every group with replica counts 1..numCores and applies
// the estimator. lowerBounds must hold a value for every group's instance.
func EstimateRows(groups []GroupStats, numCores int, lowerBounds map[Instance]float64, estimator Estimator) []EMinRow {
	rows := make([]EMinRow, 0, len(groups)*numCores)
	singles := 0
	for _, g := range groups {
		lb, ok := lowerBounds[g.Instance]
		invariant(ok, "no lower bound for instance %s", g.Instance)
		if g.Count < 2 {
			singles++
			logrus.Debugf("single run for %s on %s; e_min falls back to the mean", g.Algorithm, g.Instance)
		}
		for s := 1; s <= numCores; s++ {
			rows = append(rows, EMinRow{
				Instance:  g.Instance,
				Algorithm: g.Algorithm,
				Replicas:  s,
				EMin:      estimator.Estimate(g, s, lb),
			})
		}
	}
	if singles > 0 {
		logrus.Warnf("%d of %d (instance, algorithm) groups have a single run; no variance information for them", singles, len(groups))
	}
	return rows
}

// CompleteRows outer-joins rows onto the cartesian product
// instances x algorithms x 1..numCores. Missing triples get SentinelWorst.
// The result is sorted by (instance, algorithm, replicas). Applying it to an
// already complete row set changes nothing but the order.
func CompleteRows(rows []EMinRow, instances []Instance, algorithms []Algorithm, numCores int) []EMinRow {
	type key struct {
		instance  Instance
		algorithm Algorithm
		replicas  int
	}
	known := make(map[key]float64, len(rows))
	for _, r := range rows {
		known[key{r.Instance, r.Algorithm, r.Replicas}] = r.EMin
	}

	out := make([]EMinRow, 0, len(instances)*len(algorithms)*numCores)
	filled := 0
	for _, inst := range instances {
		for _, algo := range algorithms {
			for s := 1; s <= numCores; s++ {
				v, ok := known[key{inst, algo, s}]
				if !ok {
					v = SentinelWorst
					filled++
				}
				out = append(out, EMinRow{Instance: inst, Algorithm: algo, Replicas: s, EMin: v})
			}
		}
	}
	if filled > 0 {
		logrus.Debugf("filled %d unobserved (instance, algorithm, replicas) triples with the sentinel", filled)
	}
	slices.SortStableFunc(out, compareEMinRows)
	return out
}

// Reshape converts complete, sorted rows into a dense tensor.
// Panics if the row count differs from the tensor size or rows are out of order.
func Reshape(rows []EMinRow, numInstances, numAlgorithms, numCores int) *Tensor {
	invariant(len(rows) == numInstances*numAlgorithms*numCores,
		"e_min has %d rows, expected %d x %d x %d", len(rows), numInstances, numAlgorithms, numCores)
	invariant(slices.IsSortedFunc(rows, compareEMinRows), "e_min rows are not sorted")
	t := NewTensor(numInstances, numAlgorithms, numCores)
	for idx, r := range rows {
		t.Values[idx] = r.EMin
	}
	return t
}

// BuildTensor runs the tensor pipeline: estimate, complete, sort, reshape.
func BuildTensor(groups []GroupStats, instances []Instance, algorithms []Algorithm, numCores int,
	lowerBounds map[Instance]float64, estimator Estimator) *Tensor {
	rows := EstimateRows(groups, numCores, lowerBounds, estimator)
	complete := CompleteRows(rows, instances, algorithms, numCores)
	return Reshape(complete, len(instances), len(algorithms), numCores)
}
