package portfolio

import (
	"cmp"
	"fmt"
	"math"
	"strings"
)

// machineEpsilon is the double precision machine epsilon (2^-52).
const machineEpsilon = 0x1p-52

// SentinelWorst fills (instance, algorithm, replica) triples that were never
// observed. Any solver treats it as the worst possible quality.
const SentinelWorst = math.MaxFloat64

// Instance identifies one benchmark problem.
type Instance struct {
	Name                 string  `json:"instance" yaml:"instance"`
	K                    uint32  `json:"k" yaml:"k"`
	FeasibilityThreshold float64 `json:"feasibility_threshold" yaml:"feasibility_threshold"`
}

// Compare orders instances by (name, k, feasibility threshold).
func (i Instance) Compare(o Instance) int {
	if c := strings.Compare(i.Name, o.Name); c != 0 {
		return c
	}
	if c := cmp.Compare(i.K, o.K); c != 0 {
		return c
	}
	return cmp.Compare(i.FeasibilityThreshold, o.FeasibilityThreshold)
}

func (i Instance) String() string {
	return fmt.Sprintf("%s k=%d eps=%g", i.Name, i.K, i.FeasibilityThreshold)
}

// Algorithm identifies one algorithm configuration.
type Algorithm struct {
	Name       string `json:"algorithm" yaml:"algorithm"`
	NumThreads uint32 `json:"num_threads" yaml:"num_threads"`
}

// Compare orders algorithms by (name, thread count).
func (a Algorithm) Compare(o Algorithm) int {
	if c := strings.Compare(a.Name, o.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.NumThreads, o.NumThreads)
}

func (a Algorithm) String() string {
	return fmt.Sprintf("%s %d", a.Name, a.NumThreads)
}

// RunRecord is one observed execution of an algorithm on an instance.
// Valid means feasible, not failed and not timed out.
type RunRecord struct {
	Algorithm Algorithm
	Instance  Instance
	Quality   float64
	Time      float64
	Valid     bool
}

// NewRunRecord creates a RunRecord with the quality remapped by NormalizeQuality.
func NewRunRecord(algorithm Algorithm, instance Instance, quality, time float64, valid bool) RunRecord {
	return RunRecord{
		Algorithm: algorithm,
		Instance:  instance,
		Quality:   NormalizeQuality(quality),
		Time:      time,
		Valid:     valid,
	}
}

// NormalizeQuality maps degenerate zero qualities (|q| <= machine epsilon) to 1.0.
// Best-per-instance values are used as divisors, so zero must never reach them.
func NormalizeQuality(q float64) float64 {
	if math.Abs(q) <= machineEpsilon {
		return 1.0
	}
	return q
}

// compareRecords orders records by instance, then algorithm.
func compareRecords(a, b RunRecord) int {
	if c := a.Instance.Compare(b.Instance); c != 0 {
		return c
	}
	return a.Algorithm.Compare(b.Algorithm)
}

// Assignment gives an algorithm a number of replicas.
type Assignment struct {
	Algorithm Algorithm `json:"algorithm" yaml:"algorithm"`
	Replicas  float64   `json:"replicas" yaml:"replicas"`
}

// Portfolio is a named list of replica assignments.
type Portfolio struct {
	Name                string       `json:"name" yaml:"name"`
	ResourceAssignments []Assignment `json:"resource_assignments" yaml:"resource_assignments"`
}

// Cores returns the number of cores the portfolio occupies.
func (p Portfolio) Cores() float64 {
	total := 0.0
	for _, a := range p.ResourceAssignments {
		total += a.Replicas * float64(a.Algorithm.NumThreads)
	}
	return total
}

// IsEmpty reports whether no algorithm gets at least one replica.
func (p Portfolio) IsEmpty() bool {
	for _, a := range p.ResourceAssignments {
		if a.Replicas > 0 {
			return false
		}
	}
	return true
}

// Validate checks that replica counts are non-negative integers and that the
// portfolio fits into numCores.
func (p Portfolio) Validate(numCores uint32) error {
	for _, a := range p.ResourceAssignments {
		if a.Algorithm.NumThreads == 0 {
			return fmt.Errorf("portfolio %q: algorithm %q has zero threads", p.Name, a.Algorithm.Name)
		}
		if a.Replicas < 0 || a.Replicas != math.Trunc(a.Replicas) {
			return fmt.Errorf("portfolio %q: replicas for %s must be a non-negative integer, got %g", p.Name, a.Algorithm, a.Replicas)
		}
	}
	if cores := p.Cores(); cores > float64(numCores) {
		return fmt.Errorf("portfolio %q uses %g cores, budget is %d", p.Name, cores, numCores)
	}
	return nil
}

func (p Portfolio) String() string {
	var b strings.Builder
	for _, a := range p.ResourceAssignments {
		fmt.Fprintf(&b, "%s: %g\n", a.Algorithm, a.Replicas)
	}
	return b.String()
}
