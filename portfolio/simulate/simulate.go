// Package simulate validates portfolios by resampling historical runs.
//
// For every seed each assignment draws `replicas` runs per instance with
// replacement; the portfolio's result on an instance is the best quality
// among the draws, the longest time, and the validity of the best draw.
package simulate

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/portfolio-solver/portfolio"
)

// SimulatedRun is one simulated portfolio execution on one instance.
type SimulatedRun struct {
	portfolio.RunRecord
	Seed int
}

// index groups records by algorithm and instance, keeping input order.
type index map[portfolio.Algorithm]map[portfolio.Instance][]portfolio.RunRecord

func newIndex(records []portfolio.RunRecord) index {
	idx := make(index)
	for _, r := range records {
		byInstance, ok := idx[r.Algorithm]
		if !ok {
			byInstance = make(map[portfolio.Instance][]portfolio.RunRecord)
			idx[r.Algorithm] = byInstance
		}
		byInstance[r.Instance] = append(byInstance[r.Instance], r)
	}
	return idx
}

// Simulate draws, for every assignment with replicas > 0 and every instance the
// algorithm ran on, `replicas` records with replacement. Instances are visited
// in sorted order so a seed always reproduces the same draw.
func Simulate(records []portfolio.RunRecord, p portfolio.Portfolio, seed int) []portfolio.RunRecord {
	return newIndex(records).simulate(p, seed)
}

func (idx index) simulate(p portfolio.Portfolio, seed int) []portfolio.RunRecord {
	rng := portfolio.NewPartitionedRNG(portfolio.SeedKey(seed)).ForSubsystem(portfolio.SubsystemSimulation)
	var samples []portfolio.RunRecord
	for _, a := range p.ResourceAssignments {
		n := int(a.Replicas)
		if n <= 0 {
			continue
		}
		byInstance := idx[a.Algorithm]
		instances := make([]portfolio.Instance, 0, len(byInstance))
		for inst := range byInstance {
			instances = append(instances, inst)
		}
		slices.SortFunc(instances, portfolio.Instance.Compare)
		for _, inst := range instances {
			runs := byInstance[inst]
			for range n {
				samples = append(samples, runs[rng.Intn(len(runs))])
			}
		}
	}
	return samples
}

// PortfolioRun combines samples into one record per instance, sorted by
// instance: minimum quality, maximum time, validity of the first sample with
// the minimum quality. The algorithm is (name, numCores).
func PortfolioRun(samples []portfolio.RunRecord, name string, numCores uint32) []portfolio.RunRecord {
	type agg struct {
		best portfolio.RunRecord
		time float64
	}
	order := make([]portfolio.Instance, 0)
	byInstance := make(map[portfolio.Instance]*agg)
	for _, s := range samples {
		a, ok := byInstance[s.Instance]
		if !ok {
			byInstance[s.Instance] = &agg{best: s, time: s.Time}
			order = append(order, s.Instance)
			continue
		}
		if s.Quality < a.best.Quality {
			a.best = s
		}
		a.time = math.Max(a.time, s.Time)
	}
	slices.SortFunc(order, portfolio.Instance.Compare)

	algo := portfolio.Algorithm{Name: name, NumThreads: numCores}
	out := make([]portfolio.RunRecord, len(order))
	for i, inst := range order {
		a := byInstance[inst]
		out[i] = portfolio.RunRecord{
			Algorithm: algo,
			Instance:  inst,
			Quality:   a.best.Quality,
			Time:      a.time,
			Valid:     a.best.Valid,
		}
	}
	return out
}

// AlgorithmPortfolios turns every algorithm with threads <= numCores into a
// single-algorithm portfolio with numCores/threads replicas. A fractional
// replica count is rounded up with probability equal to its fractional part.
func AlgorithmPortfolios(algorithms []portfolio.Algorithm, numCores uint32, rng *rand.Rand) []portfolio.Portfolio {
	out := make([]portfolio.Portfolio, 0, len(algorithms))
	for _, a := range algorithms {
		if a.NumThreads > numCores {
			continue
		}
		share := float64(numCores) / float64(a.NumThreads)
		replicas := math.Floor(share)
		if rng.Float64() < share-replicas {
			replicas++
		}
		out = append(out, portfolio.Portfolio{
			Name:                a.String(),
			ResourceAssignments: []portfolio.Assignment{{Algorithm: a, Replicas: replicas}},
		})
	}
	return out
}

// Config parameterizes Run.
type Config struct {
	NumSeeds int
	NumCores uint32
	Seed     int64 // seeds stochastic rounding of single-algorithm portfolios
}

// Run simulates every non-empty portfolio and every algorithm as its own
// portfolio for seeds 0..NumSeeds-1. Portfolios are simulated concurrently;
// results are ordered by portfolio, then seed, then instance.
func Run(ctx context.Context, records []portfolio.RunRecord, algorithms []portfolio.Algorithm,
	portfolios []portfolio.Portfolio, cfg Config) ([]SimulatedRun, error) {
	if cfg.NumSeeds <= 0 {
		return nil, fmt.Errorf("%w: num_seeds must be positive, got %d", portfolio.ErrConfig, cfg.NumSeeds)
	}

	tasks := make([]portfolio.Portfolio, 0, len(portfolios)+len(algorithms))
	for _, p := range portfolios {
		if p.IsEmpty() {
			logrus.Infof("skipping empty portfolio %q", p.Name)
			continue
		}
		tasks = append(tasks, p)
	}
	rounding := portfolio.NewPartitionedRNG(portfolio.SeedKey(cfg.Seed)).ForSubsystem(portfolio.SubsystemRounding)
	tasks = append(tasks, AlgorithmPortfolios(algorithms, cfg.NumCores, rounding)...)

	idx := newIndex(records)
	results := make([][]SimulatedRun, len(tasks))
	g, ctx := errgroup.WithContext(ctx)
	for t, p := range tasks {
		g.Go(func() error {
			var runs []SimulatedRun
			for s := range cfg.NumSeeds {
				if err := ctx.Err(); err != nil {
					return err
				}
				for _, r := range PortfolioRun(idx.simulate(p, s), p.Name, cfg.NumCores) {
					runs = append(runs, SimulatedRun{RunRecord: r, Seed: s})
				}
			}
			results[t] = runs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulating portfolios: %w", err)
	}

	var out []SimulatedRun
	for _, runs := range results {
		out = append(out, runs...)
	}
	logrus.Infof("simulated %d portfolios x %d seeds: %d runs", len(tasks), cfg.NumSeeds, len(out))
	return out, nil
}
