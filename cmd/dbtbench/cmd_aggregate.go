package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbtbench/dbtbench/internal/artifact"
	"github.com/dbtbench/dbtbench/internal/models"
)

func newAggregateCommand() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "aggregate <report.json> [report.json ...]",
		Short: "Merge reports from repeated runs into one averaged report",
		Long: `Merge execution reports from repeated runs of the same pipeline.

Each metric becomes the mean across runs; with four or more runs, IQR
outliers (cold caches, noisy neighbors) are trimmed before averaging. The
result is a steadier baseline or candidate for 'compare'.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports := make([]*models.Report, 0, len(args))
			for _, path := range args {
				r, err := loadValidatedReport(path)
				if err != nil {
					return err
				}
				reports = append(reports, r)
			}

			merged, err := artifact.AggregateReports(reports)
			if err != nil {
				return err
			}

			if err := artifact.WriteReport(outputPath, merged); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Aggregated %d runs (%d models) to %s\n", //nolint:errcheck
				len(reports), len(merged.Models), outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "dbtbench-aggregate.json", "Output report path")
	return cmd
}
