// Package portfolio estimates expected best-of-s solution quality from
// historical run data and allocates a fixed pool of cores to algorithm
// replicas.
//
// # Reading Guide
//
// The estimation pipeline runs leaf to root:
//   - types.go: Instance, Algorithm, RunRecord and Portfolio value types
//   - orderstat.go: expected minimum of s draws (closed form and sampling)
//   - aggregate.go: best quality/time/count per instance, per-group statistics
//   - slowdown.go: geometric-mean slowdown filter over algorithms
//   - tensor.go: e_min rows, completeness pass and the dense tensor
//   - heuristic.go: fractional shares rounded to an exact core budget
//   - data.go: NewData, which wires all of the above together
//
// # Allocation
//
// optimize.go defines the Problem handed to a Solver and turns a Solution
// back into portfolios. Solver implementations live in portfolio/solver.
//
// # Sub-packages
//   - portfolio/ingest/: CSV readers and writers for run records
//   - portfolio/simulate/: resampling simulation of portfolios
//   - portfolio/profile/: performance profiles and plots
//   - portfolio/generate/: synthetic run data
//
// All computation in this package is single-threaded and deterministic given
// its inputs and seeds.
package portfolio
