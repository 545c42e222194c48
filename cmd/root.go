package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/portfolio-solver/portfolio"
)

// Exit codes (sysexits.h).
const (
	exitFailure = 1
	exitDataErr = 65 // EX_DATAERR: input data cannot satisfy the request
	exitConfig  = 78 // EX_CONFIG: invalid configuration
)

var logLevel string // Log verbosity level

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "portfolio-solver",
	Short: "Select parallel algorithm portfolios from historical run data",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return configError("invalid log level %q", logLevel)
		}
		logrus.SetLevel(level)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, portfolio.ErrConfig):
		return exitConfig
	case errors.Is(err, portfolio.ErrSlowdownRatio), errors.Is(err, portfolio.ErrNoValidRuns):
		return exitDataErr
	default:
		return exitFailure
	}
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(exitCode(err))
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(qualityLBCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(profileCmd)
}
