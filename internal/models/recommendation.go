package models

// Priority buckets recommendations for triage.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Recommendation is a single rule-driven optimization suggestion for a model.
type Recommendation struct {
	ModelName             string   `json:"model_name"`
	RuleID                string   `json:"rule_id"`
	RuleName              string   `json:"rule_name"`
	Priority              Priority `json:"priority"`
	PriorityScore         float64  `json:"priority_score"`
	OptimizationTechnique string   `json:"optimization_technique"`
	SQLPatternSuggestion  []string `json:"sql_pattern_suggestion"`
	Rationale             string   `json:"rationale"`
	ImpactScore           float64  `json:"impact_score"`
	ComplexityMetric      string   `json:"complexity_metric,omitempty"`
	ComplexityValue       float64  `json:"complexity_value"`
	ThresholdValue        float64  `json:"threshold_value"`
}

// RecommendationSummary aggregates the global ranked recommendation list.
type RecommendationSummary struct {
	TotalRecommendations      int              `json:"total_recommendations"`
	ModelsWithRecommendations int              `json:"models_with_recommendations"`
	HighPriorityCount         int              `json:"high_priority_count"`
	MediumPriorityCount       int              `json:"medium_priority_count"`
	LowPriorityCount          int              `json:"low_priority_count"`
	PriorityBreakdown         map[Priority]int `json:"priority_breakdown"`
	TopRecommendations        []Recommendation `json:"top_recommendations"`
}
