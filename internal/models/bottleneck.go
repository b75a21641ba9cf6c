package models

// Category classifies how a KPI moved between baseline and candidate.
type Category string

const (
	CategoryImproved  Category = "improved"
	CategoryRegressed Category = "regressed"
	CategoryNeutral   Category = "neutral"
)

// Severity grades a bottleneck. CRITICAL is reserved for data drift, which
// is a correctness problem rather than a performance one.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Regression flags attached to a BottleneckResult.
const (
	FlagExecutionTimeRegression = "EXECUTION_TIME_REGRESSION"
	FlagCostRegression          = "COST_REGRESSION"
	FlagDataDrift               = "DATA_DRIFT"
)

// KPICategorization is the per-KPI verdict derived from a DeltaResult.
type KPICategorization struct {
	Metric           string   `json:"metric_name"`
	Category         Category `json:"category"`
	Delta            *float64 `json:"delta"`
	IsRegression     bool     `json:"is_regression"`
	RegressionAmount *float64 `json:"regression_amount,omitempty"`
}

// BottleneckResult is the full classification for one model that was
// present in both reports.
type BottleneckResult struct {
	ModelName          string                       `json:"model_name"`
	ImpactScore        float64                      `json:"impact_score"`
	KPICategorizations map[string]KPICategorization `json:"kpi_categorizations"`
	RegressionFlags    []string                     `json:"regression_flags"`
	DataDriftDetected  bool                         `json:"data_drift_detected"`
	RegressionAmounts  map[string]float64           `json:"regression_amounts"`
	Severity           Severity                     `json:"severity"`
}

// CostRegressionPct returns the recorded cost regression percentage, or nil
// when the cost threshold was not crossed.
func (b *BottleneckResult) CostRegressionPct() *float64 {
	if v, ok := b.RegressionAmounts[MetricCost]; ok {
		return &v
	}
	return nil
}
