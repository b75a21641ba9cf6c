package reporting

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbtbench/dbtbench/internal/models"
)

func TestPrintComparisonTable(t *testing.T) {
	var buf bytes.Buffer
	PrintComparisonTable(&buf, analysisFixture().Deltas)
	out := buf.String()

	assert.Contains(t, out, "COMPARISON SUMMARY")
	assert.Contains(t, out, "orders")
	assert.Contains(t, out, "+15.00%")
	assert.Contains(t, out, "-5.00%")
	assert.Contains(t, out, indicatorRegressed)
	assert.Contains(t, out, indicatorImproved)
	// New models get a status row instead of metric rows.
	assert.Contains(t, out, string(models.ModelNew))
}

func TestPrintComparisonTable_DriftAnnotation(t *testing.T) {
	sets := map[string]models.ModelDeltaSet{
		"orders": {
			Status: models.ModelCompared,
			Deltas: map[string]models.DeltaResult{
				models.MetricExecutionTime: {
					Delta:      floatPtr(15.0),
					Direction:  models.DirectionRegressed,
					Status:     models.DeltaSuccess,
					Annotation: models.DataDriftAnnotation,
				},
			},
		},
	}

	var buf bytes.Buffer
	PrintComparisonTable(&buf, sets)
	assert.Contains(t, buf.String(), models.DataDriftAnnotation)
}

func TestPrintComparisonTable_TruncatesLongNames(t *testing.T) {
	long := strings.Repeat("a", 40)
	sets := map[string]models.ModelDeltaSet{
		long: {
			Status: models.ModelCompared,
			Deltas: map[string]models.DeltaResult{
				models.MetricExecutionTime: {Delta: floatPtr(1.0), Direction: models.DirectionRegressed, Status: models.DeltaSuccess},
			},
		},
	}

	var buf bytes.Buffer
	PrintComparisonTable(&buf, sets)
	assert.NotContains(t, buf.String(), long)
	assert.Contains(t, buf.String(), strings.Repeat("a", 29)+"…")
}

func TestPrintDeltaSummary(t *testing.T) {
	s := models.DeltaSummary{
		TotalModels:         3,
		Improvements:        2,
		Regressions:         1,
		Errors:              1,
		ImprovementBest:     floatPtr(-20.0),
		ImprovementAvgDelta: floatPtr(-12.5),
		RegressionWorst:     floatPtr(33.33),
		RegressionAvgDelta:  floatPtr(33.33),
	}

	var buf bytes.Buffer
	PrintDeltaSummary(&buf, s)
	out := buf.String()

	assert.Contains(t, out, "Models compared: 3")
	assert.Contains(t, out, "2 improved, 1 regressed, 1 errors")
	assert.Contains(t, out, "Best improvement: -20.00% (avg -12.50%)")
	assert.Contains(t, out, "Worst regression: +33.33% (avg +33.33%)")
}

func TestPrintBottleneckTable(t *testing.T) {
	var buf bytes.Buffer
	PrintBottleneckTable(&buf, analysisFixture().RankedModels)
	out := buf.String()

	assert.Contains(t, out, "BOTTLENECKS (by impact)")
	assert.Contains(t, out, "orders")
	assert.Contains(t, out, "6.00")
	assert.Contains(t, out, "HIGH")
	assert.Contains(t, out, models.FlagExecutionTimeRegression)
}

func TestPrintBottleneckTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintBottleneckTable(&buf, nil)
	assert.Contains(t, buf.String(), "No bottlenecks detected.")
}

func TestPrintRecommendationTable(t *testing.T) {
	recs := []models.Recommendation{
		{
			ModelName:             "orders",
			RuleID:                "HIGH_JOIN_COUNT",
			Priority:              models.PriorityHigh,
			PriorityScore:         73.0,
			OptimizationTechnique: "Join reduction / pre-aggregation",
		},
	}

	var buf bytes.Buffer
	PrintRecommendationTable(&buf, recs)
	out := buf.String()

	assert.Contains(t, out, "RECOMMENDATIONS (by priority)")
	assert.Contains(t, out, "HIGH_JOIN_COUNT")
	assert.Contains(t, out, "73.00")
	assert.Contains(t, out, "Join reduction / pre-aggregation")
}

func TestPrintRecommendationTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintRecommendationTable(&buf, nil)
	assert.Contains(t, buf.String(), "No recommendations")
}

func TestFormatDelta(t *testing.T) {
	assert.Equal(t, "n/a", formatDelta(models.DeltaResult{}))
	assert.Equal(t, "=", formatDelta(models.DeltaResult{Delta: floatPtr(0.005)}))
	assert.Equal(t, "+12.50%", formatDelta(models.DeltaResult{Delta: floatPtr(12.5)}))
	assert.Equal(t, "-3.00%", formatDelta(models.DeltaResult{Delta: floatPtr(-3.0)}))
}

func TestStatusCell(t *testing.T) {
	drift := models.DeltaResult{
		Delta:      floatPtr(5.0),
		Direction:  models.DirectionRegressed,
		Status:     models.DeltaSuccess,
		Annotation: models.DataDriftAnnotation,
	}
	cell := statusCell(drift)
	assert.True(t, strings.HasPrefix(cell, indicatorDrift))
	assert.Contains(t, cell, models.DataDriftAnnotation)

	// Regression within the equality band stays neutral.
	tiny := models.DeltaResult{Delta: floatPtr(0.005), Direction: models.DirectionRegressed, Status: models.DeltaSuccess}
	assert.Equal(t, indicatorNeutral, statusCell(tiny))

	errored := models.DeltaResult{Status: models.DeltaNullValue, Direction: models.DirectionNA}
	assert.Equal(t, indicatorNeutral, statusCell(errored))
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "short", truncateName("short", 10))
	assert.Equal(t, "abcd…", truncateName("abcdefgh", 5))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", padRight("ab", 5))
	assert.Equal(t, "abcdef", padRight("abcdef", 5))
}
