// Package delta computes percentage changes between baseline and candidate
// KPI values, with directional classification and data-drift annotation.
// Per-metric failures never abort a batch; they are captured as status
// variants on the individual results.
package delta

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/dbtbench/dbtbench/internal/config"
	"github.com/dbtbench/dbtbench/internal/models"
)

// Engine calculates deltas using the metric policy table from the run
// configuration. Engines are stateless and safe for concurrent use.
type Engine struct {
	cfg *config.Config
}

// NewEngine creates a delta engine bound to the given configuration.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// CalculateDelta computes the percentage change from baseline to candidate:
// ((candidate - baseline) / baseline) * 100, rounded to 2 decimals.
//
// Edge cases are reported as status variants rather than errors: nil or
// non-numeric inputs yield null_value, a zero baseline yields baseline_zero,
// and non-finite values yield the error variant with a message.
func CalculateDelta(baseline, candidate any) (*float64, models.DeltaStatus, string) {
	b, ok := toFloat(baseline)
	if !ok {
		return nil, models.DeltaNullValue, ""
	}
	c, ok := toFloat(candidate)
	if !ok {
		return nil, models.DeltaNullValue, ""
	}
	if b == 0 {
		return nil, models.DeltaBaselineZero, ""
	}
	if math.IsNaN(b) || math.IsInf(b, 0) || math.IsNaN(c) || math.IsInf(c, 0) {
		return nil, models.DeltaError, fmt.Sprintf("non-finite input: baseline=%v candidate=%v", b, c)
	}
	d := round2((c - b) / b * 100)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return nil, models.DeltaError, fmt.Sprintf("non-finite delta for baseline=%v candidate=%v", b, c)
	}
	return &d, models.DeltaSuccess, ""
}

// DetermineDirection maps a delta to an improvement/regression indicator for
// the given metric. For lower-is-better metrics only a strictly negative
// delta counts as an improvement; zero is classified as a regression, which
// reserves "+" for measurable improvement. Higher-is-better metrics invert
// the rule.
func (e *Engine) DetermineDirection(delta *float64, metric string) models.Direction {
	if delta == nil {
		return models.DirectionNA
	}
	if e.cfg.Policy(metric).LowerIsBetter {
		if *delta < 0 {
			return models.DirectionImproved
		}
		return models.DirectionRegressed
	}
	if *delta > 0 {
		return models.DirectionImproved
	}
	return models.DirectionRegressed
}

// NewDeltaResult assembles a DeltaResult from a computed delta and status,
// attaching the data-drift annotation when the caller detected a hash
// mismatch. The annotation is additive: it never suppresses the computed
// delta or changes the status.
func (e *Engine) NewDeltaResult(delta *float64, status models.DeltaStatus, errMsg, metric string, dataDrift bool) models.DeltaResult {
	direction := models.DirectionNA
	if delta != nil && status == models.DeltaSuccess {
		direction = e.DetermineDirection(delta, metric)
	}

	annotation := ""
	switch {
	case dataDrift:
		annotation = models.DataDriftAnnotation
	case status != models.DeltaSuccess:
		annotation = "Status: " + string(status)
	}

	return models.DeltaResult{
		Delta:      delta,
		Direction:  direction,
		Status:     status,
		Err:        errMsg,
		Annotation: annotation,
	}
}

// CalculateAllDeltas compares every configured KPI metric present in both
// KPI maps. Metrics missing or non-numeric on either side are skipped
// rather than failing the model. Data drift is detected when both sides
// carry a content hash and the hashes differ.
func (e *Engine) CalculateAllDeltas(baseline, candidate models.ModelKPIs) map[string]models.DeltaResult {
	dataDrift := baseline.DataHash != "" && candidate.DataHash != "" && baseline.DataHash != candidate.DataHash
	if dataDrift {
		slog.Warn("data drift detected: output hash mismatch",
			"baseline_hash", truncateHash(baseline.DataHash),
			"candidate_hash", truncateHash(candidate.DataHash))
	}

	deltas := make(map[string]models.DeltaResult)
	for _, metric := range e.metricNames() {
		bv, bok := baseline.Numeric(metric)
		cv, cok := candidate.Numeric(metric)
		if !bok || !cok {
			slog.Debug("skipping metric with missing or non-numeric value", "metric", metric)
			continue
		}
		d, status, errMsg := CalculateDelta(bv, cv)
		if status == models.DeltaError {
			slog.Error("delta calculation failed", "metric", metric, "error", errMsg)
		} else if status == models.DeltaBaselineZero {
			slog.Warn("delta skipped due to zero baseline", "metric", metric)
		}
		deltas[metric] = e.NewDeltaResult(d, status, errMsg, metric, dataDrift)
	}
	return deltas
}

// CalculateModelDeltas compares two full reports. Models present in only one
// report are marked new_model/removed_model and carry no deltas; models in
// both get the full per-KPI delta map. Models are processed in name order so
// results downstream are deterministic.
func (e *Engine) CalculateModelDeltas(baselineModels, candidateModels map[string]models.ModelKPIs) map[string]models.ModelDeltaSet {
	names := make(map[string]bool, len(baselineModels)+len(candidateModels))
	for name := range baselineModels {
		names[name] = true
	}
	for name := range candidateModels {
		names[name] = true
	}

	slog.Info("calculating model deltas",
		"total", len(names),
		"baseline", len(baselineModels),
		"candidate", len(candidateModels))

	result := make(map[string]models.ModelDeltaSet, len(names))
	for _, name := range sortedKeys(names) {
		_, inBaseline := baselineModels[name]
		_, inCandidate := candidateModels[name]
		switch {
		case !inBaseline:
			slog.Info("new model detected", "model", name)
			result[name] = models.ModelDeltaSet{Status: models.ModelNew}
		case !inCandidate:
			slog.Info("removed model detected", "model", name)
			result[name] = models.ModelDeltaSet{Status: models.ModelRemoved}
		default:
			result[name] = models.ModelDeltaSet{
				Status: models.ModelCompared,
				Deltas: e.CalculateAllDeltas(baselineModels[name], candidateModels[name]),
			}
		}
	}
	return result
}

// SummarizeDeltas aggregates improvement/regression counts and extremes
// across all compared models.
func SummarizeDeltas(sets map[string]models.ModelDeltaSet) models.DeltaSummary {
	var improvements, regressions []float64
	errCount := 0

	for _, set := range sets {
		if !set.Compared() {
			continue
		}
		for _, r := range set.Deltas {
			switch {
			case r.Status == models.DeltaSuccess && r.Delta != nil:
				if r.Direction == models.DirectionImproved {
					improvements = append(improvements, *r.Delta)
				} else {
					regressions = append(regressions, *r.Delta)
				}
			case r.Status != models.DeltaSuccess:
				errCount++
			}
		}
	}

	summary := models.DeltaSummary{
		TotalModels:           len(sets),
		Improvements:          len(improvements),
		Regressions:           len(regressions),
		Errors:                errCount,
		TotalMetricsProcessed: len(improvements) + len(regressions) + errCount,
	}
	if len(improvements) > 0 {
		summary.ImprovementAvgDelta = roundPtr(mean(improvements))
		summary.ImprovementBest = roundPtr(minOf(improvements))
	}
	if len(regressions) > 0 {
		summary.RegressionAvgDelta = roundPtr(mean(regressions))
		summary.RegressionWorst = roundPtr(maxOf(regressions))
	}
	return summary
}

// metricNames returns the configured metric names in stable order.
func (e *Engine) metricNames() []string {
	names := e.cfg.MetricNames()
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case *float64:
		if n == nil {
			return 0, false
		}
		return *n, true
	case nil:
		return 0, false
	default:
		return 0, false
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func roundPtr(f float64) *float64 {
	r := round2(f)
	return &r
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func truncateHash(h string) string {
	if len(h) > 8 {
		return h[:8] + "..."
	}
	return h
}
