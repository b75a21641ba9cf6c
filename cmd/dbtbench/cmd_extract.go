package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbtbench/dbtbench/internal/artifact"
	"github.com/dbtbench/dbtbench/internal/config"
	"github.com/dbtbench/dbtbench/internal/pricing"
)

func newExtractCommand() *cobra.Command {
	var (
		manifestPath   string
		runResultsPath string
		outputPath     string
		warehouseSize  string
		edition        string
		pipeline       string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract an execution report from dbt artifacts",
		Long: `Extract per-model KPIs from dbt's manifest.json and run_results.json.

The report captures execution time, row and byte counters, derived credit
and cost estimates, and static SQL complexity metrics per model. Feed two
such reports to 'compare' or 'recommend'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			size, err := pricing.ParseWarehouseSize(warehouseSize)
			if err != nil {
				return err
			}

			var calc *pricing.Calculator
			switch edition {
			case string(pricing.EditionStandard):
				calc = pricing.NewCalculatorWithRate(cfg.Pricing.Standard.CostPerCredit)
			case string(pricing.EditionEnterprise):
				calc = pricing.NewCalculatorWithRate(cfg.Pricing.Enterprise.CostPerCredit)
			default:
				return fmt.Errorf("unsupported edition %q: must be standard or enterprise", edition)
			}

			manifest, err := artifact.LoadManifest(manifestPath)
			if err != nil {
				return err
			}
			results, err := artifact.LoadRunResults(runResultsPath)
			if err != nil {
				return err
			}

			report, err := artifact.ExtractReport(manifest, results, artifact.ExtractOptions{
				Pipeline:      pipeline,
				WarehouseSize: size,
				Calculator:    calc,
			})
			if err != nil {
				return err
			}

			if err := artifact.WriteReport(outputPath, report); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d models to %s\n", len(report.Models), outputPath) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "target/manifest.json", "Path to dbt manifest.json")
	cmd.Flags().StringVar(&runResultsPath, "run-results", "target/run_results.json", "Path to dbt run_results.json")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "dbtbench-report.json", "Output report path")
	cmd.Flags().StringVar(&warehouseSize, "warehouse-size", "XS", "Snowflake warehouse size (XS, S, M, L, XL, 2XL)")
	cmd.Flags().StringVar(&edition, "edition", "standard", "Snowflake edition: standard or enterprise")
	cmd.Flags().StringVar(&pipeline, "pipeline", "", "Pipeline identifier to stamp into the report")

	return cmd
}
