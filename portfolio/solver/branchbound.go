// Package solver provides AllocationSolver implementations for portfolio.Problem.
//
// BranchAndBound enumerates one replica count per algorithm with a
// depth-first search:
//   - Algorithms are fixed in tensor order; replica counts are tried from the
//     largest count that fits down to 0.
//   - The bound adds, per instance, the best quality reachable from the fixed
//     prefix or from any unfixed algorithm at any count that still fits the
//     remaining cores. It never exceeds the objective of a completion.
//   - The incumbent is seeded with the warm start when it is feasible.
//   - The core constraint is Σ r_j·threads_j == cores. When no exact packing
//     exists it is relaxed to <= with a warning.
//   - Context and deadline are checked every 4096 nodes.
package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/portfolio-solver/portfolio"
)

// ErrNoSolution means the search stopped before finding any feasible assignment.
var ErrNoSolution = errors.New("no feasible assignment found")

const (
	pruneEps      = 1e-12
	deadlineEvery = 4096
)

// BranchAndBound is an exact solver with a soft time budget.
type BranchAndBound struct{}

func (BranchAndBound) Name() string { return BranchAndBoundName }

// bbEngine holds the search state of one Solve call.
type bbEngine struct {
	p       *portfolio.Problem
	nI, nA  int
	threads []int
	maxR    []int // largest replica count per algorithm

	// prefMin[(i*nA+j)*(cores+1)+r]: min e_min[i][j][0..r-1], +Inf for r == 0.
	prefMin []float64
	// reach[d][c]: cores c can be filled exactly by algorithms d..nA-1.
	reach [][]bool
	exact bool

	ctx         context.Context
	useDeadline bool
	deadline    time.Time
	steps       int
	stopped     bool

	cur      []int
	quality  [][]float64 // quality[d][i]: best e_min of the fixed prefix of length d
	best     []int
	bestCost float64
	foundAny bool
}

// Solve implements portfolio.Solver.
func (s BranchAndBound) Solve(ctx context.Context, p *portfolio.Problem) (*portfolio.Solution, error) {
	e := newEngine(ctx, p)
	rootBound := e.bound(0, p.NumCores)
	e.seed()

	e.search(0, p.NumCores)

	if !e.foundAny {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoSolution, err)
		}
		return nil, ErrNoSolution
	}
	gap := 0.0
	if e.stopped {
		gap = relativeGap(rootBound, e.bestCost)
		logrus.Warnf("branch-and-bound stopped early; best objective %g, gap %g", e.bestCost, gap)
	}
	return &portfolio.Solution{Replicas: e.best, Objective: e.bestCost, Gap: gap}, nil
}

func newEngine(ctx context.Context, p *portfolio.Problem) *bbEngine {
	nI, nA, cores := p.EMin.NumInstances, len(p.Algorithms), p.NumCores
	e := &bbEngine{
		p:        p,
		nI:       nI,
		nA:       nA,
		threads:  make([]int, nA),
		maxR:     make([]int, nA),
		ctx:      ctx,
		cur:      make([]int, nA),
		best:     make([]int, nA),
		bestCost: math.Inf(1),
	}
	for j, a := range p.Algorithms {
		e.threads[j] = int(a.NumThreads)
		e.maxR[j] = min(cores/e.threads[j], p.EMin.NumCores)
	}
	if p.Timeout > 0 {
		e.useDeadline = true
		e.deadline = time.Now().Add(p.Timeout)
	}

	e.prefMin = make([]float64, nI*nA*(cores+1))
	for i := range nI {
		for j := range nA {
			base := (i*nA + j) * (cores + 1)
			m := math.Inf(1)
			e.prefMin[base] = m
			for r := 1; r <= cores; r++ {
				if r <= p.EMin.NumCores {
					m = math.Min(m, p.EMin.At(i, j, r-1))
				}
				e.prefMin[base+r] = m
			}
		}
	}

	e.reach = reachable(e.threads, e.maxR, cores)
	e.exact = e.reach[0][cores]
	if !e.exact {
		logrus.Warnf("no assignment uses exactly %d cores; allowing fewer", cores)
	}

	e.quality = make([][]float64, nA+1)
	for d := range e.quality {
		e.quality[d] = make([]float64, nI)
	}
	for i := range nI {
		e.quality[0][i] = math.Inf(1)
	}
	return e
}

// reachable computes, for every suffix of algorithms, which core totals it
// can produce with bounded replica counts.
func reachable(threads, maxR []int, cores int) [][]bool {
	n := len(threads)
	reach := make([][]bool, n+1)
	for d := range reach {
		reach[d] = make([]bool, cores+1)
	}
	reach[n][0] = true
	for d := n - 1; d >= 0; d-- {
		for c := 0; c <= cores; c++ {
			for r := 0; r <= maxR[d] && r*threads[d] <= c; r++ {
				if reach[d+1][c-r*threads[d]] {
					reach[d][c] = true
					break
				}
			}
		}
	}
	return reach
}

func (e *bbEngine) fits(depth, rem int) bool {
	if e.exact {
		return e.reach[depth][rem]
	}
	return rem >= 0
}

func (e *bbEngine) prefixMin(i, j, r int) float64 {
	return e.prefMin[(i*e.nA+j)*(e.p.NumCores+1)+r]
}

// bound returns a lower bound on the objective of any completion of the
// prefix of length depth with rem cores left.
func (e *bbEngine) bound(depth, rem int) float64 {
	total := 0.0
	for i := range e.nI {
		q := e.quality[depth][i]
		for j := depth; j < e.nA; j++ {
			r := min(e.maxR[j], rem/e.threads[j])
			q = math.Min(q, e.prefixMin(i, j, r))
		}
		total += e.p.Term(i, q)
	}
	return total
}

// seed installs the warm start as incumbent when it satisfies the core constraint.
func (e *bbEngine) seed() {
	if len(e.p.Initial) != e.nA {
		return
	}
	replicas := make([]int, e.nA)
	for j, v := range e.p.Initial {
		if v < 0 || int(v) > e.maxR[j] {
			return
		}
		replicas[j] = int(v)
	}
	cores := e.p.Cores(replicas)
	if cores > e.p.NumCores || (e.exact && cores != e.p.NumCores) {
		logrus.Debugf("warm start uses %d of %d cores; not used as incumbent", cores, e.p.NumCores)
		return
	}
	e.record(replicas, portfolio.Objective(e.p, replicas))
}

func (e *bbEngine) record(replicas []int, cost float64) {
	copy(e.best, replicas)
	e.bestCost = cost
	e.foundAny = true
}

// checkStop performs a rare deadline and cancellation test.
func (e *bbEngine) checkStop() bool {
	e.steps++
	if e.steps%deadlineEvery != 0 {
		return false
	}
	if e.ctx.Err() != nil || (e.useDeadline && time.Now().After(e.deadline)) {
		e.stopped = true
	}
	return e.stopped
}

func (e *bbEngine) prune(lb float64) bool {
	if math.IsInf(e.bestCost, 1) {
		return false
	}
	return lb >= e.bestCost-pruneEps*math.Max(1, math.Abs(e.bestCost))
}

func (e *bbEngine) search(depth, rem int) {
	if e.stopped || e.checkStop() {
		return
	}
	if depth == e.nA {
		cost := portfolio.Objective(e.p, e.cur)
		if !e.foundAny || cost < e.bestCost {
			e.record(e.cur, cost)
		}
		return
	}
	if e.prune(e.bound(depth, rem)) {
		return
	}

	next := e.quality[depth+1]
	for r := min(e.maxR[depth], rem/e.threads[depth]); r >= 0; r-- {
		left := rem - r*e.threads[depth]
		if !e.fits(depth+1, left) {
			continue
		}
		e.cur[depth] = r
		for i := range e.nI {
			q := e.quality[depth][i]
			if r > 0 {
				q = math.Min(q, e.p.EMin.At(i, depth, r-1))
			}
			next[i] = q
		}
		e.search(depth+1, left)
		if e.stopped {
			break
		}
	}
	e.cur[depth] = 0
}

// relativeGap returns 1 - lb/ub clamped to [0, 1].
func relativeGap(lb, ub float64) float64 {
	if math.IsInf(ub, 1) || ub <= 0 {
		return 1
	}
	return math.Min(1, math.Max(0, 1-lb/ub))
}
