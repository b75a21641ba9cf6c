package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeltaResult_HasDataDrift(t *testing.T) {
	tests := []struct {
		name   string
		result *DeltaResult
		want   bool
	}{
		{"annotated", &DeltaResult{Annotation: DataDriftAnnotation}, true},
		{"other_annotation", &DeltaResult{Annotation: "Status: baseline_zero"}, false},
		{"empty", &DeltaResult{}, false},
		{"nil_receiver", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.result.HasDataDrift())
		})
	}
}

func TestModelDeltaSet_MarshalStatus(t *testing.T) {
	data, err := json.Marshal(ModelDeltaSet{Status: ModelNew})
	require.NoError(t, err)
	require.JSONEq(t, `{"_status": "new_model"}`, string(data))

	data, err = json.Marshal(ModelDeltaSet{Status: ModelRemoved})
	require.NoError(t, err)
	require.JSONEq(t, `{"_status": "removed_model"}`, string(data))
}

func TestModelDeltaSet_MarshalCompared(t *testing.T) {
	d := 50.0
	set := ModelDeltaSet{
		Status: ModelCompared,
		Deltas: map[string]DeltaResult{
			MetricExecutionTime: {Delta: &d, Direction: DirectionRegressed, Status: DeltaSuccess},
		},
	}

	data, err := json.Marshal(set)
	require.NoError(t, err)
	require.NotContains(t, string(data), "_status")
	require.Contains(t, string(data), MetricExecutionTime)
}

func TestModelDeltaSet_UnmarshalRoundTrip(t *testing.T) {
	d := -12.34
	orig := ModelDeltaSet{
		Status: ModelCompared,
		Deltas: map[string]DeltaResult{
			MetricCost: {Delta: &d, Direction: DirectionImproved, Status: DeltaSuccess},
		},
	}

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var back ModelDeltaSet
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, ModelCompared, back.Status)
	require.Equal(t, -12.34, *back.Deltas[MetricCost].Delta)

	data, err = json.Marshal(ModelDeltaSet{Status: ModelNew})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, ModelNew, back.Status)
	require.Nil(t, back.Deltas)
}
