// Package recommend generates rule-based optimization recommendations for
// bottleneck models, ranked by a deterministic priority score that combines
// the bottleneck's impact with how far a metric exceeds its rule threshold.
package recommend

import (
	"log/slog"
	"math"
	"sort"

	"github.com/dbtbench/dbtbench/internal/config"
	"github.com/dbtbench/dbtbench/internal/models"
)

// Engine matches models against the configured optimization rules.
// Engines are stateless and safe for concurrent use.
type Engine struct {
	cfg *config.Config
}

// NewEngine creates a recommendation engine bound to the given configuration.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// RuleMatch pairs a triggered rule with the model's current value for the
// rule's metric.
type RuleMatch struct {
	Rule  config.Rule
	Value float64
}

// CalculatePriorityScore computes the 0-100 priority score for one matched
// rule: (impact/100) * (value/threshold) * 100, plus a flat +25 bonus when
// the model's cost regression exceeds 20%, applied before the final cap at
// 100. The base is not bounded by construction, only by the cap. A
// non-positive threshold is a caller contract violation and scores 0 rather
// than corrupting the ranking.
func CalculatePriorityScore(impactScore, value, threshold float64, costRegressionPct *float64) float64 {
	if threshold <= 0 {
		return 0
	}
	score := (impactScore / 100) * (value / threshold) * 100
	if costRegressionPct != nil && *costRegressionPct > 20 {
		score += 25
	}
	return round2(math.Min(score, 100))
}

// PriorityLevel maps a priority score to HIGH/MEDIUM/LOW. A cost regression
// above 20% forces HIGH regardless of the score.
func PriorityLevel(score float64, costRegressionPct *float64) models.Priority {
	if costRegressionPct != nil && *costRegressionPct > 20 {
		return models.PriorityHigh
	}
	switch {
	case score > 66:
		return models.PriorityHigh
	case score >= 33:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// FindMatchingRules returns every rule whose current value strictly exceeds
// its threshold. Complexity rules read from the complexity metrics, delta
// rules from the regression delta percentages; a missing value simply means
// the rule cannot match. Rules are not exclusive: a model may trigger
// several at once.
func (e *Engine) FindMatchingRules(complexity, deltaPct map[string]float64) []RuleMatch {
	var matches []RuleMatch
	for _, rule := range e.cfg.Rules {
		source := complexity
		if rule.Source == config.SourceDeltaPercent {
			source = deltaPct
		}
		value, ok := source[rule.Metric]
		if !ok {
			continue
		}
		if value > rule.Threshold {
			slog.Debug("rule triggered",
				"rule", rule.ID, "metric", rule.Metric, "value", value, "threshold", rule.Threshold)
			matches = append(matches, RuleMatch{Rule: rule, Value: value})
		}
	}
	return matches
}

// RecommendationsForModel builds one recommendation per triggered rule for a
// single bottleneck model, sorted by priority score descending. A model that
// triggers no rules yields an empty list; that is a healthy outcome, not an
// error.
func (e *Engine) RecommendationsForModel(modelName string, b models.BottleneckResult, complexity map[string]float64) []models.Recommendation {
	deltaPct := regressionDeltas(b)
	costReg := b.CostRegressionPct()

	matches := e.FindMatchingRules(complexity, deltaPct)
	if len(matches) == 0 {
		slog.Debug("no optimization rules triggered", "model", modelName)
		return nil
	}

	recs := make([]models.Recommendation, 0, len(matches))
	for _, m := range matches {
		score := CalculatePriorityScore(b.ImpactScore, m.Value, m.Rule.Threshold, costReg)
		recs = append(recs, models.Recommendation{
			ModelName:             modelName,
			RuleID:                m.Rule.ID,
			RuleName:              m.Rule.Name,
			Priority:              PriorityLevel(score, costReg),
			PriorityScore:         score,
			OptimizationTechnique: m.Rule.Technique,
			SQLPatternSuggestion:  m.Rule.SQLPatterns,
			Rationale:             m.Rule.Rationale,
			ImpactScore:           b.ImpactScore,
			ComplexityMetric:      m.Rule.Metric,
			ComplexityValue:       m.Value,
			ThresholdValue:        m.Rule.Threshold,
		})
	}

	sort.SliceStable(recs, func(a, b int) bool {
		return recs[a].PriorityScore > recs[b].PriorityScore
	})
	return recs
}

// GenerateRecommendations runs the per-model generation across all
// bottleneck models. Models without complexity metrics are still evaluated
// against the delta rules; models with zero recommendations are omitted
// from the output map.
func (e *Engine) GenerateRecommendations(bottlenecks map[string]models.BottleneckResult, complexityByModel map[string]map[string]float64) map[string][]models.Recommendation {
	slog.Info("generating recommendations",
		"bottleneck_models", len(bottlenecks),
		"models_with_complexity", len(complexityByModel))

	all := make(map[string][]models.Recommendation)
	for _, name := range sortedModelNames(bottlenecks) {
		recs := e.RecommendationsForModel(name, bottlenecks[name], complexityByModel[name])
		if len(recs) == 0 {
			continue
		}
		all[name] = recs
		slog.Info("recommendations generated",
			"model", name, "count", len(recs), "impact_score", bottlenecks[name].ImpactScore)
	}
	return all
}

// RankByPriority flattens all models' recommendations into one list sorted
// globally by priority score, highest first. Models are flattened in name
// order and the sort is stable, so ties keep a deterministic order.
func RankByPriority(recommendations map[string][]models.Recommendation) []models.Recommendation {
	var all []models.Recommendation
	for _, name := range sortedRecModelNames(recommendations) {
		all = append(all, recommendations[name]...)
	}
	sort.SliceStable(all, func(a, b int) bool {
		return all[a].PriorityScore > all[b].PriorityScore
	})
	return all
}

// Summarize builds the aggregate view over all recommendations, keeping the
// first topN entries of the global ranking. topN <= 0 keeps everything.
func Summarize(recommendations map[string][]models.Recommendation, topN int) models.RecommendationSummary {
	ranked := RankByPriority(recommendations)

	counts := map[models.Priority]int{
		models.PriorityHigh:   0,
		models.PriorityMedium: 0,
		models.PriorityLow:    0,
	}
	for _, r := range ranked {
		counts[r.Priority]++
	}

	top := ranked
	if topN > 0 && topN < len(ranked) {
		top = ranked[:topN]
	}

	return models.RecommendationSummary{
		TotalRecommendations:      len(ranked),
		ModelsWithRecommendations: len(recommendations),
		HighPriorityCount:         counts[models.PriorityHigh],
		MediumPriorityCount:       counts[models.PriorityMedium],
		LowPriorityCount:          counts[models.PriorityLow],
		PriorityBreakdown:         counts,
		TopRecommendations:        top,
	}
}

// regressionDeltas exposes a model's positive KPI deltas for delta-sourced
// rule matching. Cost falls back to the USD estimate when the cost KPI is
// absent, mirroring bottleneck detection.
func regressionDeltas(b models.BottleneckResult) map[string]float64 {
	out := make(map[string]float64, 2)
	for _, metric := range []string{models.MetricExecutionTime, models.MetricCost, models.MetricEstimatedCostUSD} {
		cat, ok := b.KPICategorizations[metric]
		if !ok || cat.Delta == nil {
			continue
		}
		key := metric
		if metric == models.MetricEstimatedCostUSD {
			if _, exists := out[models.MetricCost]; exists {
				continue
			}
			key = models.MetricCost
		}
		out[key] = *cat.Delta
	}
	return out
}

func sortedModelNames(m map[string]models.BottleneckResult) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedRecModelNames(m map[string][]models.Recommendation) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
