package config

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/dbtbench/dbtbench/internal/models"
)

// RuleSource says where a rule reads its current value from: a static SQL
// complexity metric, or a baseline-vs-candidate delta percentage.
type RuleSource string

const (
	SourceComplexity   RuleSource = "complexity"
	SourceDeltaPercent RuleSource = "delta_percent"
)

// Built-in rule identifiers.
const (
	RuleHighJoinCount       = "HIGH_JOIN_COUNT"
	RuleHighCTECount        = "HIGH_CTE_COUNT"
	RuleHighWindowFuncCount = "HIGH_WINDOW_FUNCTION_COUNT"
	RuleHighExecutionTime   = "HIGH_EXECUTION_TIME"
	RuleHighCostRegression  = "HIGH_COST_REGRESSION"
)

// Rule maps a complexity or regression condition to an optimization
// technique and suggested SQL patterns. A rule fires when the model's
// current value for Metric strictly exceeds Threshold.
type Rule struct {
	ID          string     `mapstructure:"rule_id"`
	Name        string     `mapstructure:"name"`
	Description string     `mapstructure:"description"`
	Metric      string     `mapstructure:"metric"`
	Threshold   float64    `mapstructure:"threshold"`
	Source      RuleSource `mapstructure:"source"`
	Severity    string     `mapstructure:"severity"`
	Technique   string     `mapstructure:"optimization_technique"`
	SQLPatterns []string   `mapstructure:"sql_pattern_suggestion"`
	Rationale   string     `mapstructure:"rationale"`
	ActionItems []string   `mapstructure:"action_items"`
}

// applyRuleOverrides merges loosely-typed per-rule override maps from the
// YAML file into the built-in rules, keyed by rule ID.
func (c *Config) applyRuleOverrides(overrides map[string]map[string]any) error {
	for ruleID, raw := range overrides {
		idx := -1
		for i := range c.Rules {
			if c.Rules[i].ID == ruleID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("unknown rule %q in overrides", ruleID)
		}
		if err := mapstructure.Decode(raw, &c.Rules[idx]); err != nil {
			return fmt.Errorf("decoding overrides for rule %s: %w", ruleID, err)
		}
		if c.Rules[idx].Threshold <= 0 {
			return fmt.Errorf("rule %s: threshold must be positive", ruleID)
		}
	}
	return nil
}

func defaultRules() []Rule {
	return []Rule{
		{
			ID:          RuleHighJoinCount,
			Name:        "High JOIN Count Detection",
			Description: "Detects when a query has too many JOINs which may impact performance",
			Metric:      models.MetricJoinCount,
			Threshold:   5,
			Source:      SourceComplexity,
			Severity:    "MEDIUM",
			Technique:   "JOIN Consolidation & Materialization",
			SQLPatterns: []string{
				"Create materialized view for JOIN result",
				"Use temporary table to pre-compute JOIN result",
				"Consider denormalization for frequently-joined tables",
			},
			Rationale: "Multiple JOINs increase query complexity and prevent the optimizer from finding optimal execution paths. Materializing JOIN results can reduce repeated computation.",
			ActionItems: []string{
				"Identify redundant JOINs",
				"Consider temporary tables or materialized views",
				"Review JOIN order and conditions",
				"Profile query execution plan",
			},
		},
		{
			ID:          RuleHighCTECount,
			Name:        "High CTE Count Detection",
			Description: "Detects when a query has too many CTEs which may benefit from materialization",
			Metric:      models.MetricCTECount,
			Threshold:   3,
			Source:      SourceComplexity,
			Severity:    "LOW",
			Technique:   "CTE Materialization",
			SQLPatterns: []string{
				"Convert expensive CTEs to temporary tables: CREATE TEMP TABLE cte_name AS SELECT ... (from CTE definition)",
				"Use materialized views for reusable CTEs",
				"Consider inlining CTEs if used only once",
			},
			Rationale: "Multiple CTEs can be re-evaluated multiple times. Materializing them prevents recomputation and can improve performance significantly.",
			ActionItems: []string{
				"Identify frequently-used CTEs",
				"Create materialized views for expensive CTEs",
				"Consider dynamic materialization during pipeline",
				"Monitor CTE computation time",
			},
		},
		{
			ID:          RuleHighWindowFuncCount,
			Name:        "High Window Function Count Detection",
			Description: "Detects when a query uses many window functions which may benefit from pre-aggregation",
			Metric:      models.MetricWindowFunctionCount,
			Threshold:   2,
			Source:      SourceComplexity,
			Severity:    "LOW",
			Technique:   "Window Function Pre-aggregation",
			SQLPatterns: []string{
				"Create staging table with pre-computed window function results",
				"Use PARTITION BY optimization to reduce data scanned",
				"Consider row_number() + filtering instead of complex window logic",
			},
			Rationale: "Multiple window functions can cause full table scans. Pre-computing results in staging tables reduces computation overhead.",
			ActionItems: []string{
				"Identify overlapping window function partitions",
				"Create pre-aggregated tables for common calculations",
				"Use staging tables for intermediate window results",
				"Consider consolidating window functions",
			},
		},
		{
			ID:          RuleHighExecutionTime,
			Name:        "High Execution Time Regression",
			Description: "Detects when execution time increases significantly compared to baseline",
			Metric:      models.MetricExecutionTime,
			Threshold:   DefaultExecutionTimeThreshold,
			Source:      SourceDeltaPercent,
			Severity:    "HIGH",
			Technique:   "Query Rewrite & Indexing Strategy",
			SQLPatterns: []string{
				"Add clustering keys to improve JOIN performance",
				"Use search optimization on frequently filtered columns",
				"Consider materialized views for expensive subqueries",
			},
			Rationale: "Execution time regressions indicate potential query inefficiencies. Rewriting with better access patterns and indexing can recover performance.",
			ActionItems: []string{
				"Compare query plans (baseline vs current)",
				"Check for data volume changes",
				"Review recent model/SQL changes",
				"Monitor warehouse performance metrics",
				"Consider query result caching",
			},
		},
		{
			ID:          RuleHighCostRegression,
			Name:        "High Cost Regression",
			Description: "Detects when cost increases significantly compared to baseline",
			Metric:      models.MetricCost,
			Threshold:   DefaultCostThreshold,
			Source:      SourceDeltaPercent,
			Severity:    "MEDIUM",
			Technique:   "Materialization & Partitioning Strategy",
			SQLPatterns: []string{
				"Apply partitioning strategy: ALTER TABLE ... CLUSTER BY (partition_column)",
				"Create materialized view for filtered dataset to reduce bytes scanned",
				"Add WHERE clause filters earlier in query logic",
			},
			Rationale: "High cost indicates excessive bytes scanned. Materialization and partitioning strategies reduce the data scope and lower overall query cost.",
			ActionItems: []string{
				"Identify increase in bytes scanned",
				"Review join conditions and filters",
				"Consider clustering and sort keys",
				"Evaluate partition pruning efficiency",
			},
		},
	}
}
