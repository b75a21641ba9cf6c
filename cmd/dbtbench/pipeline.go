package main

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dbtbench/dbtbench/internal/artifact"
	"github.com/dbtbench/dbtbench/internal/bottleneck"
	"github.com/dbtbench/dbtbench/internal/config"
	"github.com/dbtbench/dbtbench/internal/delta"
	"github.com/dbtbench/dbtbench/internal/models"
	"github.com/dbtbench/dbtbench/internal/recommend"
	"github.com/dbtbench/dbtbench/internal/reporting"
	"github.com/dbtbench/dbtbench/internal/validation"
)

// loadReportPair validates and loads the baseline and candidate reports
// concurrently. Validation failures list every schema error, not just the
// first.
func loadReportPair(ctx context.Context, baselinePath, candidatePath string) (baseline, candidate *models.Report, err error) {
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := loadValidatedReport(baselinePath)
		if err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
		baseline = r
		return nil
	})
	g.Go(func() error {
		r, err := loadValidatedReport(candidatePath)
		if err != nil {
			return fmt.Errorf("candidate: %w", err)
		}
		candidate = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return baseline, candidate, nil
}

func loadValidatedReport(path string) (*models.Report, error) {
	errs, err := validation.ValidateReportFile(path)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s failed schema validation:\n  %s", path, strings.Join(errs, "\n  "))
	}
	return artifact.LoadReport(path)
}

// buildAnalysis runs the comparison pipeline: deltas, bottleneck
// classification, and (optionally) recommendations.
func buildAnalysis(cfg *config.Config, baselinePath, candidatePath string, baseline, candidate *models.Report, withRecommendations bool) *reporting.AnalysisReport {
	pipeline := candidate.Pipeline
	if pipeline == "" {
		pipeline = baseline.Pipeline
	}

	report := reporting.NewAnalysisReport(pipeline)
	report.BaselinePath = baselinePath
	report.CandidatePath = candidatePath

	engine := delta.NewEngine(cfg)
	report.Deltas = engine.CalculateModelDeltas(baseline.Models, candidate.Models)
	report.DeltaSummary = delta.SummarizeDeltas(report.Deltas)

	classifier := bottleneck.NewClassifier(cfg)
	report.Bottlenecks = classifier.DetectBottlenecks(report.Deltas)
	report.RankedModels = bottleneck.RankByImpact(report.Bottlenecks)

	if withRecommendations {
		recEngine := recommend.NewEngine(cfg)
		complexity := complexityFromReport(candidate)
		report.Recommendations = recEngine.GenerateRecommendations(report.Bottlenecks, complexity)
		summary := recommend.Summarize(report.Recommendations, cfg.TopN)
		report.Summary = &summary
	}

	return report
}

// complexityFromReport pulls the static SQL complexity counters out of the
// candidate report, where `dbtbench extract` records them alongside the
// runtime KPIs.
func complexityFromReport(report *models.Report) map[string]map[string]float64 {
	complexityMetrics := []string{
		models.MetricJoinCount,
		models.MetricCTECount,
		models.MetricWindowFunctionCount,
	}

	out := make(map[string]map[string]float64)
	for name, kpis := range report.Models {
		for _, metric := range complexityMetrics {
			if v, ok := kpis.Numeric(metric); ok {
				if out[name] == nil {
					out[name] = make(map[string]float64)
				}
				out[name][metric] = v
			}
		}
	}
	return out
}
