package models

import "encoding/json"

// Metric names shared across the comparison pipeline. Reports may carry
// additional metrics; these are the ones the engines know how to interpret.
const (
	MetricExecutionTime       = "execution_time"
	MetricRowsProduced        = "rows_produced"
	MetricBytesScanned        = "bytes_scanned"
	MetricCost                = "cost"
	MetricCreditsConsumed     = "credits_consumed"
	MetricEstimatedCostUSD    = "estimated_cost_usd"
	MetricJoinCount           = "join_count"
	MetricCTECount            = "cte_count"
	MetricWindowFunctionCount = "window_function_count"
)

// reserved per-model fields that are not KPI metrics.
var nonMetricFields = map[string]bool{
	"data_hash":  true,
	"model_name": true,
	"query_hash": true,
	"timestamp":  true,
}

// ModelKPIs holds the raw per-model metric values from one benchmark run,
// plus the optional output content hash used for data-drift detection.
// Values are kept loosely typed; non-numeric entries are skipped during
// delta calculation rather than failing the run.
type ModelKPIs struct {
	Metrics  map[string]any
	DataHash string
}

// Numeric returns the named metric as a float64. The second return is false
// when the metric is absent or not a number.
func (k ModelKPIs) Numeric(name string) (float64, bool) {
	v, ok := k.Metrics[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// UnmarshalJSON reads the flat per-model object used by report files:
// metric values keyed by name, with the reserved data_hash field split out.
func (k *ModelKPIs) UnmarshalJSON(data []byte) error {
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	k.Metrics = make(map[string]any, len(raw))
	for name, v := range raw {
		if name == "data_hash" {
			if s, ok := v.(string); ok {
				k.DataHash = s
			}
			continue
		}
		if nonMetricFields[name] {
			continue
		}
		k.Metrics[name] = v
	}
	return nil
}

// MarshalJSON writes the same flat shape UnmarshalJSON reads.
func (k ModelKPIs) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(k.Metrics)+1)
	for name, v := range k.Metrics {
		out[name] = v
	}
	if k.DataHash != "" {
		out["data_hash"] = k.DataHash
	}
	return json.Marshal(out)
}

// Report is one benchmark execution report: per-model KPI maps keyed by
// model name, produced either by `dbtbench extract` or an external exporter.
type Report struct {
	Pipeline    string               `json:"pipeline,omitempty"`
	GeneratedAt string               `json:"generated_at,omitempty"`
	Models      map[string]ModelKPIs `json:"models"`
}
