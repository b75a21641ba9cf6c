package models

import (
	"encoding/json"
	"strings"
)

// DeltaStatus classifies the outcome of a single delta calculation.
type DeltaStatus string

const (
	DeltaSuccess      DeltaStatus = "success"
	DeltaBaselineZero DeltaStatus = "baseline_zero"
	DeltaNullValue    DeltaStatus = "null_value"
	DeltaError        DeltaStatus = "error"
)

// Direction indicates whether a delta is an improvement or a regression
// for its metric. N/A is used whenever the delta could not be computed.
type Direction string

const (
	DirectionImproved  Direction = "+"
	DirectionRegressed Direction = "-"
	DirectionNA        Direction = "N/A"
)

// DataDriftAnnotation marks a baseline/candidate output hash mismatch.
const DataDriftAnnotation = "⚠ data drift detected"

// DeltaResult is the outcome of comparing one metric on one model.
// Immutable once created. Direction is N/A exactly when Status is not
// success; Err carries the message for the error variant only.
type DeltaResult struct {
	Delta      *float64    `json:"delta"`
	Direction  Direction   `json:"direction"`
	Status     DeltaStatus `json:"status"`
	Err        string      `json:"error,omitempty"`
	Annotation string      `json:"annotation,omitempty"`
}

// HasDataDrift reports whether this result carries the data-drift annotation.
func (r *DeltaResult) HasDataDrift() bool {
	return r != nil && strings.Contains(r.Annotation, "data drift")
}

// ModelStatus describes whether a model could be compared at all.
type ModelStatus string

const (
	ModelCompared ModelStatus = "compared"
	ModelNew      ModelStatus = "new_model"
	ModelRemoved  ModelStatus = "removed_model"
)

// ModelDeltaSet holds all per-KPI delta results for one model. Models that
// exist in only one of the two reports carry a new_model/removed_model
// status and no deltas.
type ModelDeltaSet struct {
	Status ModelStatus
	Deltas map[string]DeltaResult
}

// Compared reports whether the model existed in both reports.
func (s ModelDeltaSet) Compared() bool {
	return s.Status == ModelCompared
}

// MarshalJSON preserves the report wire shape: compared models serialize as
// a plain KPI→result map, new/removed models as {"_status": "..."}.
func (s ModelDeltaSet) MarshalJSON() ([]byte, error) {
	if !s.Compared() {
		return json.Marshal(map[string]ModelStatus{"_status": s.Status})
	}
	return json.Marshal(s.Deltas)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *ModelDeltaSet) UnmarshalJSON(data []byte) error {
	var probe struct {
		Status ModelStatus `json:"_status"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Status == ModelNew || probe.Status == ModelRemoved {
		s.Status = probe.Status
		s.Deltas = nil
		return nil
	}
	s.Status = ModelCompared
	return json.Unmarshal(data, &s.Deltas)
}

// DeltaSummary aggregates delta statistics across all models and KPIs.
type DeltaSummary struct {
	TotalModels           int      `json:"total_models"`
	Improvements          int      `json:"improvements"`
	Regressions           int      `json:"regressions"`
	Errors                int      `json:"errors"`
	TotalMetricsProcessed int      `json:"total_metrics_processed"`
	ImprovementAvgDelta   *float64 `json:"improvement_avg_delta,omitempty"`
	ImprovementBest       *float64 `json:"improvement_best,omitempty"`
	RegressionAvgDelta    *float64 `json:"regression_avg_delta,omitempty"`
	RegressionWorst       *float64 `json:"regression_worst,omitempty"`
}
