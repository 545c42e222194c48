package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/portfolio-solver/portfolio"
	"github.com/inference-sim/portfolio-solver/portfolio/ingest"
	"github.com/inference-sim/portfolio-solver/portfolio/solver"
)

// RunConfig is the solve command's configuration file. JSON files are
// accepted as well since JSON is a subset of YAML.
// All fields must be listed to satisfy KnownFields(true) strict parsing.
type RunConfig struct {
	Files                 []string  `yaml:"files"`
	Format                string    `yaml:"format"`
	Graphs                string    `yaml:"graphs"`
	Ks                    []uint32  `yaml:"ks"`
	FeasibilityThresholds []float64 `yaml:"feasibility_thresholds"`
	QualityLB             string    `yaml:"quality_lb"`
	NumCores              uint32    `yaml:"num_cores"`
	SlowdownRatio         float64   `yaml:"slowdown_ratio"` // 0 disables the filter
	Estimator             string    `yaml:"estimator"`
	Solver                string    `yaml:"solver"`
	Timeout               float64   `yaml:"timeout"` // seconds, 0 = no limit
	NumSeeds              int       `yaml:"num_seeds"`
	Seed                  int64     `yaml:"seed"`
	OutDir                string    `yaml:"out_dir"`
	InitialPortfolio      bool      `yaml:"initial_portfolio"`
	RandomPortfolio       bool      `yaml:"random_portfolio"`
}

// defaultRunConfig returns the values used for fields a config file omits.
func defaultRunConfig() RunConfig {
	return RunConfig{
		Format:                ingest.FormatNormalized,
		Ks:                    []uint32{2, 4, 8, 16, 32, 64, 128},
		FeasibilityThresholds: []float64{0.03},
		Estimator:             portfolio.EstimatorNormal,
		Solver:                solver.BranchAndBoundName,
		Timeout:               900,
		NumSeeds:              10,
		Seed:                  42,
		OutDir:                "out",
	}
}

// configError wraps a message in portfolio.ErrConfig.
func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", portfolio.ErrConfig, fmt.Sprintf(format, args...))
}

// decodeStrict decodes YAML into out, rejecting unknown fields.
func decodeStrict(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return configError("reading %s: %v", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil {
		return configError("parsing %s: %v", path, err)
	}
	return nil
}

// loadRunConfig reads path over the defaults. An empty path yields the defaults.
func loadRunConfig(path string) (*RunConfig, error) {
	cfg := defaultRunConfig()
	if path == "" {
		return &cfg, nil
	}
	if err := decodeStrict(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields that portfolio.Config does not cover.
func (c *RunConfig) Validate() error {
	if len(c.Files) == 0 {
		return configError("no input files")
	}
	if !ingest.ValidFormats[c.Format] {
		return configError("unknown input format %q", c.Format)
	}
	if !solver.ValidSolvers[c.Solver] {
		return configError("unknown solver %q", c.Solver)
	}
	if c.Timeout < 0 {
		return configError("timeout must be non-negative, got %g", c.Timeout)
	}
	if c.NumSeeds <= 0 {
		return configError("num_seeds must be positive, got %d", c.NumSeeds)
	}
	if c.OutDir == "" {
		return configError("out_dir is empty")
	}
	return c.PortfolioConfig().Validate()
}

// PortfolioConfig returns the estimation pipeline configuration.
func (c *RunConfig) PortfolioConfig() portfolio.Config {
	return portfolio.NewConfig(c.NumCores, c.SlowdownRatio, c.Estimator)
}

// InstanceFilter returns the instance filter, or nil without a graph list.
func (c *RunConfig) InstanceFilter() *ingest.InstanceFilter {
	if c.Graphs == "" {
		return nil
	}
	return &ingest.InstanceFilter{GraphsPath: c.Graphs, Ks: c.Ks, Thresholds: c.FeasibilityThresholds}
}

// TimeoutDuration converts the timeout in seconds.
func (c *RunConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout * float64(time.Second))
}

// applyFlags overrides config values with flags the user set explicitly.
func (c *RunConfig) applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("files") {
		c.Files = runFiles
	}
	if flags.Changed("format") {
		c.Format = runFormat
	}
	if flags.Changed("graphs") {
		c.Graphs = runGraphs
	}
	if flags.Changed("ks") {
		c.Ks = make([]uint32, len(runKs))
		for i, k := range runKs {
			c.Ks[i] = uint32(k)
		}
	}
	if flags.Changed("feasibility-thresholds") {
		c.FeasibilityThresholds = runThresholds
	}
	if flags.Changed("quality-lb") {
		c.QualityLB = runQualityLB
	}
	if flags.Changed("num-cores") {
		c.NumCores = runNumCores
	}
	if flags.Changed("slowdown-ratio") {
		c.SlowdownRatio = runSlowdownRatio
	}
	if flags.Changed("estimator") {
		c.Estimator = runEstimator
	}
	if flags.Changed("solver") {
		c.Solver = runSolver
	}
	if flags.Changed("timeout") {
		c.Timeout = runTimeout
	}
	if flags.Changed("num-seeds") {
		c.NumSeeds = runNumSeeds
	}
	if flags.Changed("seed") {
		c.Seed = runSeed
	}
	if flags.Changed("out-dir") {
		c.OutDir = runOutDir
	}
	if flags.Changed("initial-portfolio") {
		c.InitialPortfolio = runInitialPortfolio
	}
	if flags.Changed("random-portfolio") {
		c.RandomPortfolio = runRandomPortfolio
	}
}
