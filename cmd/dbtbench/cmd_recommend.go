package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dbtbench/dbtbench/internal/archive"
	"github.com/dbtbench/dbtbench/internal/config"
)

func newRecommendCommand() *cobra.Command {
	var (
		format           string
		outputPath       string
		topN             int
		archiveDir       string
		failOnRegression bool
	)

	cmd := &cobra.Command{
		Use:   "recommend <baseline.json> <candidate.json>",
		Short: "Generate optimization recommendations",
		Long: `Run the full comparison pipeline and generate prioritized optimization
recommendations for bottleneck models.

Recommendations are produced by matching each bottleneck model against the
optimization rules (JOIN count, CTE count, window function count, execution
time regression, cost regression) and ranked by priority score.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if topN > 0 {
				cfg.TopN = topN
			}

			baseline, candidate, err := loadReportPair(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			report := buildAnalysis(cfg, args[0], args[1], baseline, candidate, true)

			if archiveDir != "" {
				key, err := archive.Key(args[0], args[1])
				if err != nil {
					return err
				}
				if err := archive.New(archiveDir).Put(key, report); err != nil {
					return err
				}
				slog.Info("analysis archived", "dir", archiveDir, "key", key[:12])
			}

			if err := renderAnalysis(cmd, report, format, outputPath); err != nil {
				return err
			}

			if failOnRegression && report.HasRegressions() {
				return &RegressionError{Message: "regressions detected"}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json, markdown, html, or junit")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write output to a file instead of stdout")
	cmd.Flags().IntVar(&topN, "top", 0, "Number of top recommendations to keep (default from config)")
	cmd.Flags().StringVar(&archiveDir, "archive", "", "Archive the analysis under this directory")
	cmd.Flags().BoolVar(&failOnRegression, "fail-on-regression", false, "Exit with code 1 when regressions are detected")

	return cmd
}
