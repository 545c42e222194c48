package portfolio

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// SeedKey uniquely identifies a reproducible random stream family.
// Two runs with the same SeedKey and identical inputs MUST produce
// bit-for-bit identical results.
type SeedKey int64

// Subsystem names for PartitionedRNG.
const (
	// SubsystemSimulation seeds the resampling simulator.
	// Uses the master seed directly so a seed maps to the same draw everywhere.
	SubsystemSimulation = "simulation"

	// SubsystemRounding seeds stochastic rounding of single-algorithm replica counts.
	SubsystemRounding = "rounding"

	// SubsystemRandomPortfolio seeds random portfolio construction.
	SubsystemRandomPortfolio = "random_portfolio"
)

// SubsystemGenerator returns the subsystem name for one generated
// (algorithm, instance range) block.
func SubsystemGenerator(algorithm, block int) string {
	return fmt.Sprintf("generator_%d_%d", algorithm, block)
}

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemSimulation: uses the master seed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type PartitionedRNG struct {
	key        SeedKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SeedKey.
func NewPartitionedRNG(key SeedKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	derivedSeed := int64(p.key)
	if name != SubsystemSimulation {
		derivedSeed ^= fnv1a64(name)
	}
	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SeedKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SeedKey {
	return p.key
}

// NewReplicaRNG returns a fresh generator seeded with the replica count.
// The sampling estimator draws every group's best-of-s sample from it, so
// the same replica count always reproduces the same draw.
func NewReplicaRNG(replicas int) *rand.Rand {
	return rand.New(rand.NewSource(int64(replicas)))
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
