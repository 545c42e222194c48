package portfolio

import (
	"math/rand"
	"slices"
)

// RandomPortfolioName names portfolios built by RandomPortfolio.
const RandomPortfolioName = "random_portfolio"

// RandomPortfolio builds a baseline portfolio from single-threaded algorithms:
// n in [1, min(#single-threaded, numCores)] algorithms are picked by a partial
// shuffle and the cores are split at n-1 sorted random cut points. The
// replicas always sum to numCores. Returns an empty portfolio when no
// single-threaded algorithm exists.
func RandomPortfolio(algorithms []Algorithm, numCores uint32, seed int64) Portfolio {
	single := make([]Algorithm, 0, len(algorithms))
	for _, a := range algorithms {
		if a.NumThreads == 1 {
			single = append(single, a)
		}
	}
	if len(single) == 0 || numCores == 0 {
		return Portfolio{Name: RandomPortfolioName, ResourceAssignments: []Assignment{}}
	}

	rng := NewPartitionedRNG(SeedKey(seed)).ForSubsystem(SubsystemRandomPortfolio)
	n := 1 + rng.Intn(min(len(single), int(numCores)))

	cuts := make([]uint32, n-1)
	for i := range cuts {
		cuts[i] = 1 + uint32(rng.Intn(int(numCores)))
	}
	slices.Sort(cuts)

	partialShuffle(rng, single, n)
	assignments := make([]Assignment, n)
	prev := uint32(0)
	for i := range n {
		next := numCores
		if i < len(cuts) {
			next = cuts[i]
		}
		assignments[i] = Assignment{Algorithm: single[i], Replicas: float64(next - prev)}
		prev = next
	}
	return Portfolio{Name: RandomPortfolioName, ResourceAssignments: assignments}
}

// partialShuffle moves a uniform random choice of n elements to the front of s.
func partialShuffle(rng *rand.Rand, s []Algorithm, n int) {
	for i := range n {
		j := i + rng.Intn(len(s)-i)
		s[i], s[j] = s[j], s[i]
	}
}
