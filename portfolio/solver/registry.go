package solver

import (
	"context"
	"fmt"
	"math"

	"github.com/inference-sim/portfolio-solver/portfolio"
)

// Solver names accepted by New.
const (
	BranchAndBoundName = "branch-and-bound"
	HeuristicName      = "heuristic"
)

// ValidSolvers is the set of recognized solver names. Empty selects branch-and-bound.
var ValidSolvers = map[string]bool{"": true, BranchAndBoundName: true, HeuristicName: true}

// New creates a solver by name.
// Panics on unrecognized names; callers validate with ValidSolvers first.
func New(name string) portfolio.Solver {
	if !ValidSolvers[name] {
		panic(fmt.Sprintf("unknown solver %q", name))
	}
	switch name {
	case "", BranchAndBoundName:
		return BranchAndBound{}
	case HeuristicName:
		return Heuristic{}
	default:
		panic(fmt.Sprintf("unhandled solver %q", name))
	}
}

// Heuristic returns the warm start unchanged. Its gap is measured against the
// branch-and-bound root bound.
type Heuristic struct{}

func (Heuristic) Name() string { return HeuristicName }

// Solve implements portfolio.Solver.
func (Heuristic) Solve(ctx context.Context, p *portfolio.Problem) (*portfolio.Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(p.Initial) != len(p.Algorithms) {
		return nil, fmt.Errorf("%w: warm start has %d entries for %d algorithms", ErrNoSolution, len(p.Initial), len(p.Algorithms))
	}
	replicas := make([]int, len(p.Initial))
	for j, v := range p.Initial {
		replicas[j] = int(math.Round(v))
	}
	obj := portfolio.Objective(p, replicas)
	lb := newEngine(ctx, p).bound(0, p.NumCores)
	return &portfolio.Solution{Replicas: replicas, Objective: obj, Gap: relativeGap(lb, obj)}, nil
}
