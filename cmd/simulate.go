package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/portfolio-solver/portfolio"
	"github.com/inference-sim/portfolio-solver/portfolio/ingest"
	"github.com/inference-sim/portfolio-solver/portfolio/simulate"
)

// ExecutorConfig replays portfolios against run data. solve writes one to
// <out_dir>/executor.yaml.
type ExecutorConfig struct {
	Files      []string              `yaml:"files"`
	Format     string                `yaml:"format"`
	Portfolios []portfolio.Portfolio `yaml:"portfolios"`
	NumSeeds   int                   `yaml:"num_seeds"`
	NumCores   uint32                `yaml:"num_cores"`
	Seed       int64                 `yaml:"seed"`
	Out        string                `yaml:"out"`
}

// Validate checks the executor config.
func (c *ExecutorConfig) Validate() error {
	if len(c.Files) == 0 {
		return configError("no input files")
	}
	if !ingest.ValidFormats[c.Format] {
		return configError("unknown input format %q", c.Format)
	}
	if c.NumCores == 0 {
		return configError("num_cores must be positive")
	}
	if c.NumSeeds <= 0 {
		return configError("num_seeds must be positive, got %d", c.NumSeeds)
	}
	if c.Out == "" {
		return configError("out is empty")
	}
	for _, p := range c.Portfolios {
		if err := p.Validate(c.NumCores); err != nil {
			return configError("%v", err)
		}
	}
	return nil
}

var executorConfigPath string // Path to the executor config

// simulateCmd replays portfolios from an executor config.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate portfolios by resampling historical runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := ExecutorConfig{Format: ingest.FormatNormalized, NumSeeds: 10, Seed: 42}
		if err := decodeStrict(executorConfigPath, &cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		records, err := ingest.Read(cfg.Format, cfg.Files, nil)
		if err != nil {
			return err
		}
		records = withinBudget(records, cfg.NumCores)

		ctx, cancel := signalContext()
		defer cancel()
		runs, err := simulate.Run(ctx, records, portfolio.DistinctAlgorithms(records), cfg.Portfolios, simulate.Config{
			NumSeeds: cfg.NumSeeds,
			NumCores: cfg.NumCores,
			Seed:     cfg.Seed,
		})
		if err != nil {
			return err
		}
		if err := simulate.WriteCSV(cfg.Out, runs); err != nil {
			return err
		}
		logrus.Infof("wrote %d simulated runs to %s", len(runs), cfg.Out)
		return nil
	},
}

// withinBudget keeps records whose algorithm fits into numCores.
func withinBudget(records []portfolio.RunRecord, numCores uint32) []portfolio.RunRecord {
	kept := make([]portfolio.RunRecord, 0, len(records))
	for _, r := range records {
		if r.Algorithm.NumThreads <= numCores {
			kept = append(kept, r)
		}
	}
	return kept
}

func init() {
	simulateCmd.Flags().StringVarP(&executorConfigPath, "config", "c", "", "Path to the executor config (YAML or JSON)")
	_ = simulateCmd.MarkFlagRequired("config")
}
