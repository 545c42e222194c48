package cmd

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/portfolio-solver/portfolio"
	"github.com/inference-sim/portfolio-solver/portfolio/ingest"
	"github.com/inference-sim/portfolio-solver/portfolio/simulate"
	"github.com/inference-sim/portfolio-solver/portfolio/solver"
)

var (
	// CLI flags for the solve command; they override the config file when set.
	runConfigPath       string    // Path to the YAML/JSON run config
	runFiles            []string  // Input CSV files
	runFormat           string    // Input format (normalized, hypergraph)
	runGraphs           string    // CSV list of graphs to keep
	runKs               []uint    // Block counts of the instance filter
	runThresholds       []float64 // Feasibility thresholds of the instance filter
	runQualityLB        string    // Quality lower bound CSV
	runNumCores         uint32    // Core budget
	runSlowdownRatio    float64   // Max gmean slowdown, 0 disables
	runEstimator        string    // e_min estimator (normal, sampling)
	runSolver           string    // Allocation solver
	runTimeout          float64   // Solver timeout in seconds
	runNumSeeds         int       // Simulation seeds per portfolio
	runSeed             int64     // Seed for random portfolio and stochastic rounding
	runOutDir           string    // Output directory
	runInitialPortfolio bool      // Also write the warm-start portfolio
	runRandomPortfolio  bool      // Also write a random baseline portfolio
)

// solveCmd builds the e_min tensor, optimizes a portfolio and simulates it.
var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Optimize a portfolio for a core budget and simulate it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig(runConfigPath)
		if err != nil {
			return err
		}
		cfg.applyFlags(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}

		records, err := ingest.Read(cfg.Format, cfg.Files, cfg.InstanceFilter())
		if err != nil {
			return err
		}
		data, err := portfolio.NewData(records, cfg.PortfolioConfig(), loadLowerBounds(cfg.QualityLB))
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()
		result, err := portfolio.Optimize(ctx, data, solver.New(cfg.Solver), cfg.TimeoutDuration())
		if err != nil {
			return err
		}
		logrus.Infof("final portfolio:\n%s", result.FinalPortfolio)

		portfolios := []portfolio.Portfolio{result.FinalPortfolio}
		if cfg.RandomPortfolio {
			portfolios = append(portfolios, portfolio.RandomPortfolio(data.Algorithms, cfg.NumCores, cfg.Seed))
		}
		if cfg.InitialPortfolio && !sameReplicas(result.InitialPortfolio, result.FinalPortfolio) {
			portfolios = append(portfolios, result.InitialPortfolio)
		}

		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			return err
		}
		runs, err := simulate.Run(ctx, data.Records, data.Algorithms, portfolios, simulate.Config{
			NumSeeds: cfg.NumSeeds,
			NumCores: cfg.NumCores,
			Seed:     cfg.Seed,
		})
		if err != nil {
			return err
		}
		if err := simulate.WriteCSV(filepath.Join(cfg.OutDir, "simulation.csv"), runs); err != nil {
			return err
		}
		executor := ExecutorConfig{
			Files:      cfg.Files,
			Format:     cfg.Format,
			Portfolios: portfolios,
			NumSeeds:   cfg.NumSeeds,
			NumCores:   cfg.NumCores,
			Seed:       cfg.Seed,
			Out:        filepath.Join(cfg.OutDir, "execution.csv"),
		}
		if err := writeExecutorConfig(filepath.Join(cfg.OutDir, "executor.yaml"), &executor); err != nil {
			return err
		}
		for _, p := range portfolios {
			if err := writePortfolio(cfg.OutDir, p); err != nil {
				return err
			}
		}
		logrus.Infof("objective %g, gap %g; results in %s", result.Objective, result.Gap, cfg.OutDir)
		return nil
	},
}

// loadLowerBounds reads the quality lower bound table. A missing or
// unreadable table falls back to best observed qualities.
func loadLowerBounds(path string) map[portfolio.Instance]float64 {
	if path == "" {
		return nil
	}
	bounds, err := ingest.ReadLowerBounds(path)
	if err != nil {
		logrus.Warnf("quality lower bounds unavailable, using best observed qualities: %v", err)
		return nil
	}
	return bounds
}

// sameReplicas reports whether two portfolios assign the same replica counts.
func sameReplicas(a, b portfolio.Portfolio) bool {
	return slices.EqualFunc(a.ResourceAssignments, b.ResourceAssignments, func(x, y portfolio.Assignment) bool {
		return x == y
	})
}

func init() {
	solveCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "Path to the run config (YAML or JSON)")
	solveCmd.Flags().StringSliceVarP(&runFiles, "files", "f", nil, "Input CSV files")
	solveCmd.Flags().StringVar(&runFormat, "format", ingest.FormatNormalized, "Input format (normalized, hypergraph)")
	solveCmd.Flags().StringVarP(&runGraphs, "graphs", "g", "", "CSV file with a graph column; restricts the instances")
	solveCmd.Flags().UintSliceVar(&runKs, "ks", nil, "Instance filter: numbers of blocks")
	solveCmd.Flags().Float64SliceVar(&runThresholds, "feasibility-thresholds", nil, "Instance filter: feasibility thresholds")
	solveCmd.Flags().StringVar(&runQualityLB, "quality-lb", "", "CSV file with per-instance quality lower bounds")
	solveCmd.Flags().Uint32VarP(&runNumCores, "num-cores", "k", 0, "Number of cores available to the portfolio")
	solveCmd.Flags().Float64VarP(&runSlowdownRatio, "slowdown-ratio", "s", 0, "Max gmean slowdown vs. best per instance (0 disables)")
	solveCmd.Flags().StringVar(&runEstimator, "estimator", portfolio.EstimatorNormal, "e_min estimator (normal, sampling)")
	solveCmd.Flags().StringVar(&runSolver, "solver", solver.BranchAndBoundName, "Allocation solver (branch-and-bound, heuristic)")
	solveCmd.Flags().Float64VarP(&runTimeout, "timeout", "t", 900, "Solver timeout in seconds (0 = no limit)")
	solveCmd.Flags().IntVarP(&runNumSeeds, "num-seeds", "n", 10, "How often each portfolio run is sampled per instance")
	solveCmd.Flags().Int64Var(&runSeed, "seed", 42, "Seed for the random portfolio and stochastic rounding")
	solveCmd.Flags().StringVarP(&runOutDir, "out-dir", "o", "out", "Output directory")
	solveCmd.Flags().BoolVarP(&runInitialPortfolio, "initial-portfolio", "i", false, "Also write the initial portfolio if it differs from the final one")
	solveCmd.Flags().BoolVarP(&runRandomPortfolio, "random-portfolio", "r", false, "Also write a random portfolio of single-threaded algorithms")
}
