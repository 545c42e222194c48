package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inference-sim/portfolio-solver/portfolio/ingest"
	"github.com/inference-sim/portfolio-solver/portfolio/profile"
)

var (
	profileFiles     []string // Simulation or run CSV files
	profileObjective string   // quality or time
	profileOut       string   // Plot file
	profileTitle     string   // Plot title
	profileValidOnly bool     // Drop invalid runs first
)

// profileCmd computes performance profiles and plots them.
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Compute and plot performance profiles of simulated portfolios",
	RunE: func(cmd *cobra.Command, args []string) error {
		objective, err := profile.ParseObjective(profileObjective)
		if err != nil {
			return err
		}
		records, err := ingest.Read(ingest.FormatNormalized, profileFiles, nil)
		if err != nil {
			return err
		}
		if profileValidOnly {
			kept := records[:0]
			for _, r := range records {
				if r.Valid {
					kept = append(kept, r)
				}
			}
			records = kept
		}

		prof := profile.Compute(records, objective)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "algorithm\tinstances\tbest\tgmean ratio")
		for _, s := range prof.Series {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.4f\n", s.Algorithm, len(s.Ratios), s.NumBest, s.GMeanRatio)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if profileOut == "" {
			return nil
		}
		return profile.Plot(prof, profileTitle, profileOut)
	},
}

func init() {
	profileCmd.Flags().StringSliceVarP(&profileFiles, "files", "f", nil, "Run or simulation CSV files")
	profileCmd.Flags().StringVar(&profileObjective, "objective", profile.ObjectiveQuality, "Compared value (quality, time)")
	profileCmd.Flags().StringVarP(&profileOut, "out", "o", "", "Plot file (png, svg, pdf); empty prints the table only")
	profileCmd.Flags().StringVar(&profileTitle, "title", "Performance profile", "Plot title")
	profileCmd.Flags().BoolVar(&profileValidOnly, "valid-only", false, "Ignore invalid runs")
	_ = profileCmd.MarkFlagRequired("files")
}
