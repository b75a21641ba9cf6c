// Package bottleneck classifies compared models into severity buckets by
// applying regression thresholds to their deltas and computing a weighted
// impact score used for ranking.
package bottleneck

import (
	"log/slog"
	"math"
	"sort"

	"github.com/dbtbench/dbtbench/internal/config"
	"github.com/dbtbench/dbtbench/internal/models"
)

// Classifier applies the configured thresholds and impact weights.
// Classifiers are stateless and safe for concurrent use.
type Classifier struct {
	cfg *config.Config
}

// NewClassifier creates a classifier bound to the given configuration.
func NewClassifier(cfg *config.Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// CheckExecutionTimeRegression reports whether an execution-time delta
// crosses the regression threshold. The boundary is exclusive: a delta equal
// to the threshold is not a regression.
func CheckExecutionTimeRegression(delta *float64, threshold float64) bool {
	return delta != nil && *delta > threshold
}

// CheckCostRegression reports whether a cost delta crosses the regression
// threshold, with the same exclusive boundary.
func CheckCostRegression(delta *float64, threshold float64) bool {
	return delta != nil && *delta > threshold
}

// CheckDataDrift reports whether a delta result carries the data-drift
// annotation. A nil result is not drift.
func CheckDataDrift(r *models.DeltaResult) bool {
	return r.HasDataDrift()
}

// CategorizeKPI derives the improved/regressed/neutral verdict for one KPI.
// Non-success results and changes inside the dead zone (|delta| < 0.5%) are
// neutral. is_regression is set only when the metric has a configured
// threshold and the delta crosses it, not merely on sign.
func (c *Classifier) CategorizeKPI(metric string, r *models.DeltaResult) models.KPICategorization {
	cat := models.KPICategorization{Metric: metric, Category: models.CategoryNeutral}
	if r == nil || r.Status != models.DeltaSuccess || r.Delta == nil {
		return cat
	}
	cat.Delta = r.Delta
	if math.Abs(*r.Delta) < config.NeutralDeadZone {
		return cat
	}
	switch r.Direction {
	case models.DirectionImproved:
		cat.Category = models.CategoryImproved
	case models.DirectionRegressed:
		cat.Category = models.CategoryRegressed
	}

	if threshold, ok := c.cfg.RegressionThreshold(metric); ok && *r.Delta > threshold {
		cat.IsRegression = true
		amount := math.Abs(*r.Delta)
		cat.RegressionAmount = &amount
	}
	return cat
}

// CalculateImpactScore computes the weighted 0-100 impact score. Only
// regressions (positive deltas on these lower-is-better metrics) contribute;
// each delta term saturates at 100% so a pathological metric cannot exceed
// its allotted weight. Data drift contributes its full weight as a binary
// term.
func (c *Classifier) CalculateImpactScore(execDelta, costDelta *float64, dataDrift bool) float64 {
	w := c.cfg.Weights
	score := 0.0
	if execDelta != nil && *execDelta > 0 {
		score += math.Min(*execDelta/100, 1.0) * w.ExecutionTime
	}
	if costDelta != nil && *costDelta > 0 {
		score += math.Min(*costDelta/100, 1.0) * w.Cost
	}
	if dataDrift {
		score += w.DataDrift
	}
	return round2(score * 100)
}

// DetectBottlenecks analyzes all compared models and classifies each one.
// New and removed models are skipped; bottleneck analysis only applies to
// models present in both runs.
func (c *Classifier) DetectBottlenecks(sets map[string]models.ModelDeltaSet) map[string]models.BottleneckResult {
	execThreshold := c.cfg.Thresholds[models.MetricExecutionTime]
	costThreshold := c.cfg.Thresholds[models.MetricCost]

	slog.Info("detecting bottlenecks",
		"models", len(sets),
		"execution_time_threshold", execThreshold,
		"cost_threshold", costThreshold)

	results := make(map[string]models.BottleneckResult)
	for _, name := range sortedModelNames(sets) {
		set := sets[name]
		if !set.Compared() {
			slog.Debug("skipping model", "model", name, "status", set.Status)
			continue
		}

		categorizations := make(map[string]models.KPICategorization, len(set.Deltas))
		for metric, r := range set.Deltas {
			categorizations[metric] = c.CategorizeKPI(metric, &r)
		}

		execDelta := metricDelta(set.Deltas, models.MetricExecutionTime)
		costDelta := metricDelta(set.Deltas, models.MetricCost)
		if costDelta == nil {
			costDelta = metricDelta(set.Deltas, models.MetricEstimatedCostUSD)
		}

		execRegression := CheckExecutionTimeRegression(execDelta, execThreshold)
		costRegression := CheckCostRegression(costDelta, costThreshold)

		dataDrift := false
		for _, r := range set.Deltas {
			if r.HasDataDrift() {
				dataDrift = true
				break
			}
		}

		flags := []string{}
		amounts := map[string]float64{}
		if execRegression {
			flags = append(flags, models.FlagExecutionTimeRegression)
			amounts[models.MetricExecutionTime] = math.Abs(*execDelta)
		}
		if costRegression {
			flags = append(flags, models.FlagCostRegression)
			amounts[models.MetricCost] = math.Abs(*costDelta)
		}
		if dataDrift {
			flags = append(flags, models.FlagDataDrift)
		}

		severity := models.SeverityLow
		switch {
		case dataDrift:
			severity = models.SeverityCritical
		case execRegression:
			severity = models.SeverityHigh
		case costRegression:
			severity = models.SeverityMedium
		}

		result := models.BottleneckResult{
			ModelName:          name,
			ImpactScore:        c.CalculateImpactScore(execDelta, costDelta, dataDrift),
			KPICategorizations: categorizations,
			RegressionFlags:    flags,
			DataDriftDetected:  dataDrift,
			RegressionAmounts:  amounts,
			Severity:           severity,
		}
		results[name] = result

		if len(flags) > 0 {
			slog.Warn("bottleneck detected",
				"model", name,
				"impact_score", result.ImpactScore,
				"severity", result.Severity,
				"flags", flags)
		} else {
			slog.Info("model analyzed", "model", name, "impact_score", result.ImpactScore)
		}
	}
	return results
}

// RankByImpact orders bottlenecks by impact score, highest first. The sort
// is stable over name-ordered input, so ties keep a deterministic order.
func RankByImpact(bottlenecks map[string]models.BottleneckResult) []models.BottleneckResult {
	names := make([]string, 0, len(bottlenecks))
	for name := range bottlenecks {
		names = append(names, name)
	}
	sort.Strings(names)

	ranked := make([]models.BottleneckResult, 0, len(names))
	for _, name := range names {
		ranked = append(ranked, bottlenecks[name])
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].ImpactScore > ranked[b].ImpactScore
	})
	return ranked
}

// TopN returns the first n entries of the impact ranking.
func TopN(bottlenecks map[string]models.BottleneckResult, n int) []models.BottleneckResult {
	ranked := RankByImpact(bottlenecks)
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

func metricDelta(deltas map[string]models.DeltaResult, metric string) *float64 {
	if r, ok := deltas[metric]; ok {
		return r.Delta
	}
	return nil
}

func sortedModelNames(sets map[string]models.ModelDeltaSet) []string {
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
