package portfolio

import (
	"math"

	"github.com/sirupsen/logrus"
)

// InitialPortfolioName names the warm-start portfolio.
const InitialPortfolioName = "initial_portfolio"

// RoundToSum rounds non-negative values down and then distributes the
// remaining budget sum - Σ floor(v_i)*steps[i] one unit at a time: each round
// the entry with the largest fractional loss whose step still fits gets +1
// and its loss is reset to 0. Ties go to the lowest index. Stops when the
// remainder is 0 or no step fits.
//
// Panics if values and steps differ in length or the floors already exceed sum.
func RoundToSum(values []float64, steps []uint32, sum uint32) []float64 {
	invariant(len(values) == len(steps), "RoundToSum: %d values, %d steps", len(values), len(steps))

	rounded := make([]float64, len(values))
	losses := make([]float64, len(values))
	used := 0.0
	for i, v := range values {
		rounded[i] = math.Floor(v)
		losses[i] = v - rounded[i]
		used += rounded[i] * float64(steps[i])
	}
	invariant(used <= float64(sum), "RoundToSum: floors use %g, more than %d", used, sum)
	remainder := int64(sum) - int64(used)

	for remainder > 0 {
		pick := -1
		for i, loss := range losses {
			if int64(steps[i]) > remainder {
				continue
			}
			if pick < 0 || loss > losses[pick] {
				pick = i
			}
		}
		if pick < 0 {
			break
		}
		rounded[pick]++
		losses[pick] = 0
		remainder -= int64(steps[pick])
	}
	return rounded
}

// InitialAssignment turns best-per-instance counts into replica counts:
// share_j = (count_j / numInstances) * (numCores / threads_j), rounded with
// RoundToSum using the thread counts as steps.
func InitialAssignment(counts []float64, algorithms []Algorithm, numInstances int, numCores uint32) []float64 {
	invariant(len(counts) == len(algorithms), "InitialAssignment: %d counts, %d algorithms", len(counts), len(algorithms))
	invariant(numInstances > 0, "InitialAssignment: no instances")

	shares := make([]float64, len(counts))
	steps := make([]uint32, len(counts))
	for j, algo := range algorithms {
		steps[j] = algo.NumThreads
		shares[j] = (counts[j] / float64(numInstances)) * (float64(numCores) / float64(algo.NumThreads))
	}
	return RoundToSum(shares, steps, numCores)
}

// InitialPortfolio builds the warm-start portfolio from best-per-instance
// counts. A result that does not use the whole budget is logged and kept.
func InitialPortfolio(counts []float64, algorithms []Algorithm, numInstances int, numCores uint32) Portfolio {
	replicas := InitialAssignment(counts, algorithms, numInstances, numCores)
	p := newPortfolio(InitialPortfolioName, algorithms, replicas)
	if cores := p.Cores(); cores != float64(numCores) {
		logrus.Warnf("initial assignment uses %g of %d cores", cores, numCores)
	}
	return p
}

// newPortfolio pairs algorithms with replica counts, one assignment each.
func newPortfolio(name string, algorithms []Algorithm, replicas []float64) Portfolio {
	assignments := make([]Assignment, len(algorithms))
	for j, algo := range algorithms {
		assignments[j] = Assignment{Algorithm: algo, Replicas: replicas[j]}
	}
	return Portfolio{Name: name, ResourceAssignments: assignments}
}
