package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

// defaultConfigFile is looked up in the working directory when --config is
// not given.
const defaultConfigFile = ".dbtbench.yaml"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dbtbench",
		Short: "dbtbench - benchmark and compare dbt SQL pipeline runs",
		Long: `dbtbench compares execution reports from dbt pipeline runs.

It computes per-model KPI deltas between a baseline and a candidate run,
classifies performance bottlenecks, and generates prioritized optimization
recommendations.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("config", defaultConfigFile, "Path to the configuration file")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newCompareCommand())
	cmd.AddCommand(newRecommendCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newExtractCommand())
	cmd.AddCommand(newAggregateCommand())
	cmd.AddCommand(newInitCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
