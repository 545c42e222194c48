package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/portfolio-solver/portfolio"
	"github.com/inference-sim/portfolio-solver/portfolio/ingest"
)

// QualityLBConfig lists the run tables whose best valid qualities become
// per-instance lower bounds.
type QualityLBConfig struct {
	Files  []string `yaml:"files"`
	Format string   `yaml:"format"`
	Out    string   `yaml:"out"`
}

var (
	qualityLBConfigPath string   // Path to the quality-lb config
	qualityLBFiles      []string // Input CSV files
	qualityLBFormat     string   // Input format
	qualityLBOut        string   // Output CSV
)

// qualityLBCmd writes the best valid quality per instance as a lower bound table.
var qualityLBCmd = &cobra.Command{
	Use:   "quality-lb",
	Short: "Compute per-instance quality lower bounds from run data",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := QualityLBConfig{Format: ingest.FormatNormalized}
		if qualityLBConfigPath != "" {
			if err := decodeStrict(qualityLBConfigPath, &cfg); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("files") {
			cfg.Files = qualityLBFiles
		}
		if cmd.Flags().Changed("format") {
			cfg.Format = qualityLBFormat
		}
		if cmd.Flags().Changed("out") {
			cfg.Out = qualityLBOut
		}
		if cfg.Out == "" {
			return configError("no output file")
		}

		records, err := ingest.Read(cfg.Format, cfg.Files, nil)
		if err != nil {
			return err
		}
		bounds, err := QualityLowerBounds(records)
		if err != nil {
			return err
		}
		if err := ingest.WriteLowerBounds(cfg.Out, bounds); err != nil {
			return err
		}
		logrus.Infof("wrote %d lower bounds to %s", len(bounds), cfg.Out)
		return nil
	},
}

// QualityLowerBounds returns the best valid quality per instance.
func QualityLowerBounds(records []portfolio.RunRecord) ([]portfolio.InstanceValue, error) {
	valid := make([]portfolio.RunRecord, 0, len(records))
	for _, r := range records {
		if r.Valid {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: %d records, none valid", portfolio.ErrNoValidRuns, len(records))
	}
	return portfolio.BestPerInstance(valid), nil
}

func init() {
	qualityLBCmd.Flags().StringVarP(&qualityLBConfigPath, "config", "c", "", "Path to the quality-lb config (YAML or JSON)")
	qualityLBCmd.Flags().StringSliceVarP(&qualityLBFiles, "files", "f", nil, "Input CSV files")
	qualityLBCmd.Flags().StringVar(&qualityLBFormat, "format", ingest.FormatNormalized, "Input format (normalized, hypergraph)")
	qualityLBCmd.Flags().StringVarP(&qualityLBOut, "out", "o", "", "Output CSV file")
}
