package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbtbench/dbtbench/internal/config"
	"github.com/dbtbench/dbtbench/internal/reporting"
)

func newCompareCommand() *cobra.Command {
	var (
		format           string
		outputPath       string
		failOnRegression bool
		explain          bool
	)

	cmd := &cobra.Command{
		Use:   "compare <baseline.json> <candidate.json>",
		Short: "Compare two execution reports",
		Long: `Compare a baseline and a candidate execution report.

Computes per-model KPI deltas, detects regressions against the configured
thresholds, and classifies bottlenecks by weighted impact score.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			baseline, candidate, err := loadReportPair(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			report := buildAnalysis(cfg, args[0], args[1], baseline, candidate, false)

			if err := renderAnalysis(cmd, report, format, outputPath); err != nil {
				return err
			}
			if explain {
				fmt.Fprint(cmd.OutOrStdout(), reporting.FormatInterpretation(report)) //nolint:errcheck
			}

			if failOnRegression && report.HasRegressions() {
				return &RegressionError{Message: "regressions detected"}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json, markdown, html, or junit")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write output to a file instead of stdout")
	cmd.Flags().BoolVar(&failOnRegression, "fail-on-regression", false, "Exit with code 1 when regressions are detected")
	cmd.Flags().BoolVar(&explain, "explain", false, "Print a plain-language interpretation after the results")

	return cmd
}

// renderAnalysis writes an analysis report in the requested format.
func renderAnalysis(cmd *cobra.Command, report *reporting.AnalysisReport, format, outputPath string) error {
	var data []byte
	switch format {
	case "table":
		out := cmd.OutOrStdout()
		reporting.PrintComparisonTable(out, report.Deltas)
		reporting.PrintDeltaSummary(out, report.DeltaSummary)
		reporting.PrintBottleneckTable(out, report.RankedModels)
		if report.Summary != nil {
			reporting.PrintRecommendationTable(out, report.Summary.TopRecommendations)
		}
		return nil
	case "json":
		var err error
		data, err = report.JSON()
		if err != nil {
			return err
		}
	case "markdown":
		data = []byte(report.Markdown())
	case "html":
		var err error
		data, err = report.HTML()
		if err != nil {
			return err
		}
	case "junit":
		var err error
		data, err = reporting.MarshalJUnitXML(report)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: must be table, json, markdown, html, or junit", format)
	}

	if outputPath != "" {
		return os.WriteFile(outputPath, data, 0644)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data)) //nolint:errcheck
	return nil
}
