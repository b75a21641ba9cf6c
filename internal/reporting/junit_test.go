package reporting

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbtbench/dbtbench/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func analysisFixture() *AnalysisReport {
	r := NewAnalysisReport("analytics")
	r.BaselinePath = "baseline.json"
	r.CandidatePath = "candidate.json"
	r.Deltas = map[string]models.ModelDeltaSet{
		"orders": {
			Status: models.ModelCompared,
			Deltas: map[string]models.DeltaResult{
				models.MetricExecutionTime: {Delta: floatPtr(15.0), Direction: models.DirectionRegressed, Status: models.DeltaSuccess},
			},
		},
		"customers": {
			Status: models.ModelCompared,
			Deltas: map[string]models.DeltaResult{
				models.MetricExecutionTime: {Delta: floatPtr(-5.0), Direction: models.DirectionImproved, Status: models.DeltaSuccess},
			},
		},
		"payments": {Status: models.ModelNew},
	}
	r.DeltaSummary = models.DeltaSummary{
		TotalModels:           2,
		Improvements:          1,
		Regressions:           1,
		TotalMetricsProcessed: 2,
		RegressionWorst:       floatPtr(15.0),
	}
	r.Bottlenecks = map[string]models.BottleneckResult{
		"orders": {
			ModelName:         "orders",
			ImpactScore:       6.0,
			Severity:          models.SeverityHigh,
			RegressionFlags:   []string{models.FlagExecutionTimeRegression},
			RegressionAmounts: map[string]float64{models.MetricExecutionTime: 15.0},
		},
		"customers": {
			ModelName: "customers",
			Severity:  models.SeverityLow,
		},
	}
	r.RankedModels = []models.BottleneckResult{r.Bottlenecks["orders"], r.Bottlenecks["customers"]}
	return r
}

func TestConvertToJUnit(t *testing.T) {
	suites := ConvertToJUnit(analysisFixture())

	require.Len(t, suites.TestSuites, 1)
	suite := suites.TestSuites[0]
	assert.Equal(t, "analytics", suite.Name)
	assert.Equal(t, 3, suite.Tests)
	assert.Equal(t, 1, suite.Failures)
	assert.Equal(t, 0, suite.Errors)
	assert.Equal(t, 1, suite.Skipped)

	// Test cases are in sorted model order.
	require.Len(t, suite.TestCases, 3)
	assert.Equal(t, "customers", suite.TestCases[0].Name)
	assert.Nil(t, suite.TestCases[0].Failure)

	orders := suite.TestCases[1]
	assert.Equal(t, "orders", orders.Name)
	require.NotNil(t, orders.Failure)
	assert.Equal(t, "PerformanceRegression", orders.Failure.Type)
	assert.Contains(t, orders.Failure.Body, models.FlagExecutionTimeRegression)
	assert.Contains(t, orders.Failure.Body, "execution_time: +15.00%")

	payments := suite.TestCases[2]
	require.NotNil(t, payments.Skipped)
	assert.Equal(t, string(models.ModelNew), payments.Skipped.Message)
}

func TestConvertToJUnit_DataDriftIsError(t *testing.T) {
	r := analysisFixture()
	b := r.Bottlenecks["orders"]
	b.DataDriftDetected = true
	b.RegressionFlags = append(b.RegressionFlags, models.FlagDataDrift)
	r.Bottlenecks["orders"] = b

	suites := ConvertToJUnit(r)
	suite := suites.TestSuites[0]
	assert.Equal(t, 1, suite.Errors)
	assert.Equal(t, 0, suite.Failures)

	var found bool
	for _, tc := range suite.TestCases {
		if tc.Name == "orders" {
			found = true
			require.NotNil(t, tc.Error)
			assert.Equal(t, "DataDrift", tc.Error.Type)
			assert.Nil(t, tc.Failure)
		}
	}
	require.True(t, found)
}

func TestMarshalJUnitXML(t *testing.T) {
	data, err := MarshalJUnitXML(analysisFixture())
	require.NoError(t, err)

	assert.Contains(t, string(data), xml.Header[:len(xml.Header)-1])

	var back JUnitTestSuites
	require.NoError(t, xml.Unmarshal(data, &back))
	assert.Equal(t, 3, back.Tests)
	assert.Equal(t, 1, back.Failures)
}

func TestConvertToJUnit_DefaultSuiteName(t *testing.T) {
	r := NewAnalysisReport("")
	suites := ConvertToJUnit(r)
	assert.Equal(t, "dbtbench", suites.TestSuites[0].Name)
}
