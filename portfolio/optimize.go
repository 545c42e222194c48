package portfolio

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// FinalPortfolioName names the portfolio returned by Optimize.
const FinalPortfolioName = "final_portfolio_opt"

// Problem is the allocation input handed to a Solver.
type Problem struct {
	EMin            *Tensor
	BestPerInstance []float64   // aligned with the tensor's instance axis
	Algorithms      []Algorithm // aligned with the tensor's algorithm axis
	NumCores        int
	Initial         []float64     // warm start replica counts, may be nil
	Timeout         time.Duration // 0 means no limit

	penaltyOnce sync.Once
	penalty     float64
}

// NewProblem builds the allocation problem for d with the heuristic warm start.
func NewProblem(d *Data, timeout time.Duration) *Problem {
	return &Problem{
		EMin:            d.EMin,
		BestPerInstance: d.BestPerInstance,
		Algorithms:      d.Algorithms,
		NumCores:        int(d.NumCores),
		Initial:         InitialAssignment(d.BestPerInstanceCount, d.Algorithms, len(d.Instances), d.NumCores),
		Timeout:         timeout,
	}
}

// Cores returns Σ replicas[j] * threads_j.
func (p *Problem) Cores(replicas []int) int {
	total := 0
	for j, r := range replicas {
		total += r * int(p.Algorithms[j].NumThreads)
	}
	return total
}

// Solution is a Solver result: one replica count per algorithm.
type Solution struct {
	Replicas  []int
	Objective float64
	Gap       float64 // relative optimality gap, 0 when proven optimal
}

// Solver chooses replica counts for every algorithm of a Problem.
// Implementations must honor ctx cancellation and Problem.Timeout.
type Solver interface {
	Name() string
	Solve(ctx context.Context, p *Problem) (*Solution, error)
}

// UncoveredPenalty is the objective term of an instance on which no selected
// algorithm was observed. It exceeds the largest objective any assignment
// covering every instance can reach, so fewer uncovered instances always
// rank first and the covered terms break ties.
func (p *Problem) UncoveredPenalty() float64 {
	p.penaltyOnce.Do(func() {
		worst := 0.0
		for i := 0; i < p.EMin.NumInstances; i++ {
			m := 0.0
			for j := 0; j < p.EMin.NumAlgorithms; j++ {
				for r := 0; r < p.EMin.NumCores; r++ {
					if v := p.EMin.At(i, j, r); v < SentinelWorst {
						m = math.Max(m, math.Abs(v))
					}
				}
			}
			worst += m / math.Abs(p.BestPerInstance[i])
		}
		p.penalty = worst + 1
	})
	return p.penalty
}

// Term returns instance i's objective contribution when its best selected
// estimate is q.
func (p *Problem) Term(i int, q float64) float64 {
	if q >= SentinelWorst {
		return p.UncoveredPenalty()
	}
	return q / p.BestPerInstance[i]
}

// Objective evaluates Σ_i min_{j: r_j>0} e_min[i][j][r_j-1] / best_i, with
// UncoveredPenalty standing in for instances no selected algorithm covers.
// Returns +Inf when no algorithm gets a replica.
func Objective(p *Problem, replicas []int) float64 {
	invariant(len(replicas) == len(p.Algorithms), "Objective: %d replica counts, %d algorithms", len(replicas), len(p.Algorithms))
	selected := false
	for _, r := range replicas {
		if r > 0 {
			selected = true
			break
		}
	}
	if !selected {
		return math.Inf(1)
	}
	total := 0.0
	for i := 0; i < p.EMin.NumInstances; i++ {
		q := math.Inf(1)
		for j, r := range replicas {
			if r > 0 {
				q = math.Min(q, p.EMin.At(i, j, r-1))
			}
		}
		total += p.Term(i, q)
	}
	return total
}

// OptimizationResult holds the warm start, the solver's portfolio and its gap.
type OptimizationResult struct {
	InitialPortfolio Portfolio
	FinalPortfolio   Portfolio
	Objective        float64
	Gap              float64
}

// Optimize builds the allocation problem from d and solves it.
func Optimize(ctx context.Context, d *Data, solver Solver, timeout time.Duration) (*OptimizationResult, error) {
	problem := NewProblem(d, timeout)
	initial := newPortfolio(InitialPortfolioName, d.Algorithms, problem.Initial)
	if cores := initial.Cores(); cores != float64(d.NumCores) {
		logrus.Warnf("initial assignment uses %g of %d cores", cores, d.NumCores)
	}

	logrus.Infof("solving with %s: %d algorithms, %d instances, %d cores",
		solver.Name(), len(d.Algorithms), len(d.Instances), d.NumCores)
	sol, err := solver.Solve(ctx, problem)
	if err != nil {
		return nil, fmt.Errorf("solver %s: %w", solver.Name(), err)
	}
	invariant(len(sol.Replicas) == len(d.Algorithms), "solver %s returned %d replica counts for %d algorithms",
		solver.Name(), len(sol.Replicas), len(d.Algorithms))

	replicas := make([]float64, len(sol.Replicas))
	for j, r := range sol.Replicas {
		replicas[j] = float64(r)
	}
	final := newPortfolio(FinalPortfolioName, d.Algorithms, replicas)
	if err := final.Validate(d.NumCores); err != nil {
		return nil, fmt.Errorf("solver %s: %w", solver.Name(), err)
	}
	logrus.Infof("objective %g, gap %g", sol.Objective, sol.Gap)
	return &OptimizationResult{
		InitialPortfolio: initial,
		FinalPortfolio:   final,
		Objective:        sol.Objective,
		Gap:              sol.Gap,
	}, nil
}
