// Package config holds the static thresholds, weights, pricing, and
// optimization rules for a comparison run. A Config is built once at process
// start (defaults + optional .dbtbench.yaml + environment overrides) and is
// read-only afterwards; the engines never consult the environment themselves.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/dbtbench/dbtbench/internal/models"
)

// Default regression thresholds, in percent.
const (
	DefaultExecutionTimeThreshold = 10.0
	DefaultCostThreshold          = 20.0
)

// NeutralDeadZone is the |delta| band, in percent, below which a KPI change
// is categorized as neutral regardless of direction.
const NeutralDeadZone = 0.5

// MetricPolicy describes how a metric is interpreted: whether a reduction is
// an improvement, and the regression threshold if one is configured.
type MetricPolicy struct {
	LowerIsBetter       bool
	RegressionThreshold *float64 // nil: no threshold configured
}

// ImpactWeights weights the three impact-score components. They must sum to
// 1.0 so the score stays within [0, 100].
type ImpactWeights struct {
	ExecutionTime float64 `yaml:"execution_time"`
	Cost          float64 `yaml:"cost"`
	DataDrift     float64 `yaml:"data_drift"`
}

// PricingEdition holds the per-credit cost for one Snowflake edition.
type PricingEdition struct {
	Edition       string  `yaml:"edition"`
	CostPerCredit float64 `yaml:"cost_per_credit"`
}

// Pricing holds the cost model used for credit/USD estimation.
type Pricing struct {
	Standard   PricingEdition `yaml:"standard"`
	Enterprise PricingEdition `yaml:"enterprise"`
}

// Config is the full, immutable configuration for a comparison run.
type Config struct {
	Thresholds map[string]float64
	Weights    ImpactWeights
	Pricing    Pricing
	Rules      []Rule
	TopN       int

	policies map[string]MetricPolicy
}

// Policy returns the interpretation policy for a metric. Unknown metrics
// default to higher-is-better with no regression threshold.
func (c *Config) Policy(metric string) MetricPolicy {
	if p, ok := c.policies[metric]; ok {
		return p
	}
	return MetricPolicy{}
}

// MetricNames returns the names of all metrics the engines know about.
func (c *Config) MetricNames() []string {
	names := make([]string, 0, len(c.policies))
	for name := range c.policies {
		names = append(names, name)
	}
	return names
}

// RegressionThreshold returns the configured threshold for a metric, or
// (0, false) if the metric has no threshold.
func (c *Config) RegressionThreshold(metric string) (float64, bool) {
	t, ok := c.Thresholds[metric]
	return t, ok
}

func ptr(f float64) *float64 { return &f }

// Default returns the built-in configuration: the five optimization rules,
// regression thresholds of 10% execution time and 20% cost, and the
// 40/40/20 impact weighting.
func Default() *Config {
	cfg := &Config{
		Thresholds: map[string]float64{
			models.MetricExecutionTime: DefaultExecutionTimeThreshold,
			models.MetricCost:          DefaultCostThreshold,
		},
		Weights: ImpactWeights{
			ExecutionTime: 0.40,
			Cost:          0.40,
			DataDrift:     0.20,
		},
		Pricing: Pricing{
			Standard:   PricingEdition{Edition: "Standard Edition", CostPerCredit: 2.0},
			Enterprise: PricingEdition{Edition: "Enterprise Edition", CostPerCredit: 3.0},
		},
		Rules: defaultRules(),
		TopN:  10,
	}
	cfg.rebuildPolicies()
	return cfg
}

// rebuildPolicies derives the metric policy table from the thresholds, so a
// threshold override automatically flows into KPI categorization.
func (c *Config) rebuildPolicies() {
	lowerIsBetter := []string{
		models.MetricExecutionTime,
		models.MetricCost,
		models.MetricBytesScanned,
		models.MetricCreditsConsumed,
		models.MetricEstimatedCostUSD,
		models.MetricJoinCount,
		models.MetricCTECount,
		models.MetricWindowFunctionCount,
	}
	c.policies = map[string]MetricPolicy{
		models.MetricRowsProduced: {LowerIsBetter: false},
	}
	for _, name := range lowerIsBetter {
		p := MetricPolicy{LowerIsBetter: true}
		if t, ok := c.Thresholds[name]; ok {
			p.RegressionThreshold = ptr(t)
		}
		c.policies[name] = p
	}
	// estimated_cost_usd stands in for cost when reports carry only the
	// USD estimate, so it shares the cost threshold.
	if t, ok := c.Thresholds[models.MetricCost]; ok {
		p := c.policies[models.MetricEstimatedCostUSD]
		p.RegressionThreshold = ptr(t)
		c.policies[models.MetricEstimatedCostUSD] = p
	}
}

// FileConfig is the YAML shape of .dbtbench.yaml. Rule overrides are kept
// loosely typed and decoded per rule ID.
type FileConfig struct {
	Pipeline   string                    `yaml:"pipeline,omitempty"`
	Thresholds map[string]float64        `yaml:"thresholds,omitempty"`
	Weights    *ImpactWeights            `yaml:"weights,omitempty"`
	Pricing    *Pricing                  `yaml:"pricing,omitempty"`
	TopN       int                       `yaml:"top_n,omitempty"`
	Rules      map[string]map[string]any `yaml:"rules,omitempty"`
}

// Load builds a Config from defaults, an optional YAML file, and environment
// overrides, in that precedence order. A missing file is not an error; a
// malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else {
			var fc FileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
			if err := cfg.applyFile(&fc); err != nil {
				return nil, fmt.Errorf("applying config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.rebuildPolicies()
	return cfg, nil
}

func (c *Config) applyFile(fc *FileConfig) error {
	for metric, t := range fc.Thresholds {
		c.Thresholds[metric] = t
	}
	if fc.Weights != nil {
		c.Weights = *fc.Weights
	}
	if fc.Pricing != nil {
		if fc.Pricing.Standard.CostPerCredit > 0 {
			c.Pricing.Standard = fc.Pricing.Standard
		}
		if fc.Pricing.Enterprise.CostPerCredit > 0 {
			c.Pricing.Enterprise = fc.Pricing.Enterprise
		}
	}
	if fc.TopN > 0 {
		c.TopN = fc.TopN
	}
	return c.applyRuleOverrides(fc.Rules)
}

// Environment override names. Malformed values are ignored, matching the
// fail-open behavior expected of ambient tuning knobs.
const (
	EnvTimeThreshold           = "DBTBENCH_TIME_REGRESSION_THRESHOLD"
	EnvCostThreshold           = "DBTBENCH_COST_REGRESSION_THRESHOLD"
	EnvJoinThreshold           = "DBTBENCH_JOIN_THRESHOLD"
	EnvCTEThreshold            = "DBTBENCH_CTE_THRESHOLD"
	EnvWindowFuncThreshold     = "DBTBENCH_WINDOW_FUNCTION_THRESHOLD"
	EnvStandardCostPerCredit   = "DBTBENCH_STANDARD_COST_PER_CREDIT"
	EnvEnterpriseCostPerCredit = "DBTBENCH_ENTERPRISE_COST_PER_CREDIT"
)

func (c *Config) applyEnv() {
	if v, ok := envFloat(EnvTimeThreshold); ok {
		c.Thresholds[models.MetricExecutionTime] = v
	}
	if v, ok := envFloat(EnvCostThreshold); ok {
		c.Thresholds[models.MetricCost] = v
	}
	if v, ok := envFloat(EnvStandardCostPerCredit); ok {
		c.Pricing.Standard.CostPerCredit = v
	}
	if v, ok := envFloat(EnvEnterpriseCostPerCredit); ok {
		c.Pricing.Enterprise.CostPerCredit = v
	}
	ruleEnvs := map[string]string{
		RuleHighJoinCount:       EnvJoinThreshold,
		RuleHighCTECount:        EnvCTEThreshold,
		RuleHighWindowFuncCount: EnvWindowFuncThreshold,
	}
	for ruleID, env := range ruleEnvs {
		v, ok := envFloat(env)
		if !ok {
			continue
		}
		for i := range c.Rules {
			if c.Rules[i].ID == ruleID {
				c.Rules[i].Threshold = v
			}
		}
	}
	// Regression-rule thresholds track the bottleneck thresholds.
	for i := range c.Rules {
		switch c.Rules[i].ID {
		case RuleHighExecutionTime:
			c.Rules[i].Threshold = c.Thresholds[models.MetricExecutionTime]
		case RuleHighCostRegression:
			c.Rules[i].Threshold = c.Thresholds[models.MetricCost]
		}
	}
}

func envFloat(name string) (float64, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
