package portfolio

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ApproxMax approximates the expected maximum of s standard normal draws
// with sqrt(2 ln s). ApproxMax(1) == 0.
func ApproxMax(s int) float64 {
	if s <= 1 {
		return 0
	}
	return math.Sqrt(2 * math.Log(float64(s)))
}

// ExpectedMin estimates E[min] of s i.i.d. draws from N(mean, std^2) as
// mean - std*ApproxMax(s), clamped from below by lowerBound.
// An undefined std (NaN, single-sample group) yields max(mean, lowerBound).
// Panics if the result is negative: valid qualities and bounds are never negative.
func ExpectedMin(mean, std float64, s int, lowerBound float64) float64 {
	estimate := mean
	if !math.IsNaN(std) {
		estimate = mean - std*ApproxMax(s)
	}
	result := math.Max(estimate, lowerBound)
	invariant(result >= 0, "negative e_min %g (mean=%g std=%g s=%d lower bound=%g)", result, mean, std, s, lowerBound)
	return result
}

// Estimator computes the expected best quality of one (instance, algorithm)
// group when running it with the given number of replicas.
type Estimator interface {
	Estimate(group GroupStats, replicas int, lowerBound float64) float64
}

// NormalEstimator uses the closed-form Gaussian order statistic (ExpectedMin).
type NormalEstimator struct{}

func (NormalEstimator) Estimate(group GroupStats, replicas int, lowerBound float64) float64 {
	return ExpectedMin(group.Mean, group.StdDev, replicas, lowerBound)
}

// SamplingEstimator draws one sample of size replicas without replacement
// from the observed qualities and returns its minimum. The generator is seeded
// with the replica count, so the same input always yields the same draw.
// Samples larger than the group use every observation.
//
// TODO: average several draws per replica count once results no longer need
// to match single-draw outputs.
type SamplingEstimator struct{}

func (SamplingEstimator) Estimate(group GroupStats, replicas int, lowerBound float64) float64 {
	if len(group.Qualities) == 0 {
		return SentinelWorst
	}
	rng := NewReplicaRNG(replicas)
	n := min(replicas, len(group.Qualities))
	perm := rng.Perm(len(group.Qualities))
	sample := make([]float64, n)
	for i := range n {
		sample[i] = group.Qualities[perm[i]]
	}
	return math.Max(floats.Min(sample), lowerBound)
}
