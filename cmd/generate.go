package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/portfolio-solver/portfolio/generate"
	"github.com/inference-sim/portfolio-solver/portfolio/ingest"
)

var (
	generateConfigPath string // Path to the generator config
	generateOut        string // Output CSV, overrides the config
	generateSeed       int64  // Seed, overrides the config
)

// generateCmd writes a synthetic normalized run table.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate synthetic run data with normally distributed qualities",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := generate.LoadConfig(generateConfigPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("out") {
			cfg.Out = generateOut
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = generateSeed
		}
		if cfg.Out == "" {
			return configError("no output file")
		}

		records, err := generate.Generate(cfg)
		if err != nil {
			return err
		}
		if err := ingest.WriteRecords(cfg.Out, records); err != nil {
			return err
		}
		logrus.Infof("wrote %d runs to %s", len(records), cfg.Out)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateConfigPath, "config", "c", "", "Path to the generator config (YAML or JSON)")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Output CSV file")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 0, "Random seed")
	_ = generateCmd.MarkFlagRequired("config")
}
