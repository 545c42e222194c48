package portfolio

import (
	"fmt"
	"math"
)

// Estimator names accepted by Config.Estimator.
const (
	EstimatorNormal   = "normal"
	EstimatorSampling = "sampling"
)

// ValidEstimators is the set of recognized estimator names. Empty selects normal.
var ValidEstimators = map[string]bool{"": true, EstimatorNormal: true, EstimatorSampling: true}

// Config groups the parameters of the estimation pipeline.
// Constructed once at program start and passed to NewData.
type Config struct {
	NumCores      uint32  // core budget, also the largest replica count
	SlowdownRatio float64 // max gmean slowdown vs. best-per-instance times; 0 disables
	Estimator     string  // "normal" (closed form) or "sampling" (single draw)
}

// NewConfig creates a Config. A zero slowdown ratio disables the filter.
func NewConfig(numCores uint32, slowdownRatio float64, estimator string) Config {
	if slowdownRatio == 0 {
		slowdownRatio = math.MaxFloat64
	}
	return Config{
		NumCores:      numCores,
		SlowdownRatio: slowdownRatio,
		Estimator:     estimator,
	}
}

// Validate checks the configuration and wraps failures in ErrConfig.
func (c Config) Validate() error {
	if c.NumCores == 0 {
		return fmt.Errorf("%w: num_cores must be positive", ErrConfig)
	}
	if math.IsNaN(c.SlowdownRatio) || c.SlowdownRatio <= 0 {
		return fmt.Errorf("%w: slowdown_ratio must be positive, got %f", ErrConfig, c.SlowdownRatio)
	}
	if !ValidEstimators[c.Estimator] {
		return fmt.Errorf("%w: unknown estimator %q; valid: normal, sampling", ErrConfig, c.Estimator)
	}
	return nil
}

// NewEstimator returns the Estimator selected by the configuration.
func (c Config) NewEstimator() Estimator {
	switch c.Estimator {
	case "", EstimatorNormal:
		return NormalEstimator{}
	case EstimatorSampling:
		return SamplingEstimator{}
	default:
		panic(fmt.Sprintf("unhandled estimator %q", c.Estimator))
	}
}
