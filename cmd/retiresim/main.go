package main

import (
	"fmt"
	"os"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "retiresim",
		Short: "Monte Carlo retirement simulator",
		Long: `retiresim runs many independent market paths through a pipeline of
spending, income, withdrawal, tax and allocation strategies and reports how
often the portfolio lasts the full horizon.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON where supported")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newValidateCmd(),
		newExampleCmd(),
		newHistoryCmd(),
	)
	return rootCmd
}

// newLogger builds the stderr logger selected by --log-level.
func newLogger(cmd *cobra.Command) *calculation.SlogLogger {
	level, _ := cmd.Flags().GetString("log-level")
	return calculation.NewSlogLogger(level, cmd.ErrOrStderr())
}
